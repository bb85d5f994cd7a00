package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"invoicehub/internal/kvstore"
	"invoicehub/internal/vault"
)

// SealPaymentCredentials encrypts the bank details under the passphrase and
// stores the ciphertext as its own document. Only the ciphertext is persisted.
func (s *Store) SealPaymentCredentials(details PaymentDetails, passphrase string) error {
	if passphrase == "" {
		return fmt.Errorf("passphrase must not be empty")
	}
	plaintext, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to serialize payment details: %w", err)
	}
	blob, err := vault.Seal(plaintext, passphrase)
	if err != nil {
		return err
	}
	data, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("failed to serialize sealed blob: %w", err)
	}
	if err := s.backend.Put(context.Background(), keyVault, data); err != nil {
		return fmt.Errorf("failed to store sealed credentials: %w", err)
	}
	return nil
}

// OpenPaymentCredentials decrypts the stored bank details. The two failure
// modes stay distinct: ErrNoCredentials when nothing is stored,
// vault.ErrWrongPassphrase when the passphrase does not match.
func (s *Store) OpenPaymentCredentials(passphrase string) (PaymentDetails, error) {
	data, err := s.backend.Get(context.Background(), keyVault)
	if errors.Is(err, kvstore.ErrNotFound) {
		return PaymentDetails{}, ErrNoCredentials
	}
	if err != nil {
		return PaymentDetails{}, fmt.Errorf("failed to read sealed credentials: %w", err)
	}
	var blob vault.Blob
	if err := json.Unmarshal(data, &blob); err != nil {
		return PaymentDetails{}, fmt.Errorf("sealed credentials are corrupt: %w", err)
	}
	plaintext, err := vault.Open(blob, passphrase)
	if err != nil {
		return PaymentDetails{}, err
	}
	var details PaymentDetails
	if err := json.Unmarshal(plaintext, &details); err != nil {
		return PaymentDetails{}, fmt.Errorf("decrypted credentials are corrupt: %w", err)
	}
	return details, nil
}

// DeletePaymentCredentials removes the sealed document.
func (s *Store) DeletePaymentCredentials() error {
	return s.backend.Delete(context.Background(), keyVault)
}
