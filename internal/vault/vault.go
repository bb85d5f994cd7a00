// Package vault seals small secrets under a user-chosen passphrase using
// scrypt key derivation and AES-256-GCM. This protects against casual
// inspection of the stored data only; the passphrase is held nowhere, and a
// forgotten one loses the data permanently.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

// ErrWrongPassphrase is returned when the ciphertext fails authentication,
// which for GCM means the derived key (and so the passphrase) was wrong.
var ErrWrongPassphrase = errors.New("wrong passphrase")

// scrypt parameters, interactive-login strength.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
	keyLen  = 32
	saltLen = 16
)

// Blob is the stored form of a sealed secret.
type Blob struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

func deriveKey(passphrase string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

// Seal encrypts plaintext under the passphrase with a fresh salt and nonce.
func Seal(plaintext []byte, passphrase string) (Blob, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return Blob{}, fmt.Errorf("failed to generate salt: %w", err)
	}
	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return Blob{}, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return Blob{}, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return Blob{}, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return Blob{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return Blob{
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: gcm.Seal(nil, nonce, plaintext, nil),
	}, nil
}

// Open decrypts a sealed blob. A failed authentication maps to
// ErrWrongPassphrase so callers can tell it apart from storage problems.
func Open(blob Blob, passphrase string) ([]byte, error) {
	key, err := deriveKey(passphrase, blob.Salt)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	if len(blob.Nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("malformed blob: bad nonce size")
	}

	plaintext, err := gcm.Open(nil, blob.Nonce, blob.Ciphertext, nil)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return plaintext, nil
}
