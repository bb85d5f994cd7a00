package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicehub/internal/store"
	"invoicehub/internal/vault"
)

type VaultRoutes struct {
	server ServerInterface
}

func NewVaultRoutes(server ServerInterface) *VaultRoutes {
	return &VaultRoutes{server: server}
}

func (vr *VaultRoutes) RegisterRoutes(r *gin.Engine) {
	r.PUT("/payment-credentials", vr.sealHandler)
	r.POST("/payment-credentials/open", vr.openHandler)
	r.DELETE("/payment-credentials", vr.deleteHandler)
}

func (vr *VaultRoutes) sealHandler(c *gin.Context) {
	var req struct {
		BankName   string `json:"bankName"`
		IBAN       string `json:"iban"`
		SwiftBIC   string `json:"swiftBic"`
		Passphrase string `json:"passphrase" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	details := store.PaymentDetails{BankName: req.BankName, IBAN: req.IBAN, SwiftBIC: req.SwiftBIC}
	if err := vr.server.GetStore().SealPaymentCredentials(details, req.Passphrase); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment credentials sealed"})
}

// openHandler decrypts the stored credentials. "Nothing stored" and "wrong
// passphrase" are distinct outcomes.
func (vr *VaultRoutes) openHandler(c *gin.Context) {
	var req struct {
		Passphrase string `json:"passphrase" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	details, err := vr.server.GetStore().OpenPaymentCredentials(req.Passphrase)
	switch {
	case errors.Is(err, store.ErrNoCredentials):
		c.JSON(http.StatusNotFound, gin.H{"error": "No payment credentials stored"})
	case errors.Is(err, vault.ErrWrongPassphrase):
		c.JSON(http.StatusForbidden, gin.H{"error": "Wrong passphrase"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read credentials"})
	default:
		c.JSON(http.StatusOK, gin.H{"paymentDetails": details})
	}
}

func (vr *VaultRoutes) deleteHandler(c *gin.Context) {
	if err := vr.server.GetStore().DeletePaymentCredentials(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment credentials deleted"})
}
