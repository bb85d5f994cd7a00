package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"invoicehub/internal/store"
)

type InvoiceRoutes struct {
	server ServerInterface
}

func NewInvoiceRoutes(server ServerInterface) *InvoiceRoutes {
	return &InvoiceRoutes{server: server}
}

func (ir *InvoiceRoutes) RegisterRoutes(r *gin.Engine) {
	r.GET("/invoices", ir.listInvoicesHandler)
	r.POST("/invoices", ir.createInvoiceHandler)
	r.GET("/invoices/:invoiceID", ir.getInvoiceHandler)
	r.PUT("/invoices/:invoiceID", ir.updateInvoiceHandler)
	r.PUT("/invoices/:invoiceID/status", ir.setStatusHandler)
	r.DELETE("/invoices/:invoiceID", ir.deleteInvoiceHandler)
}

func (ir *InvoiceRoutes) listInvoicesHandler(c *gin.Context) {
	workspaceID := c.Query("workspaceId")
	c.JSON(http.StatusOK, gin.H{"invoices": ir.server.GetStore().Invoices(workspaceID)})
}

func (ir *InvoiceRoutes) createInvoiceHandler(c *gin.Context) {
	var req struct {
		WorkspaceID        string  `json:"workspaceId"`
		ClientName         string  `json:"clientName" binding:"required"`
		ProjectDescription string  `json:"projectDescription"`
		Total              float64 `json:"total"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.ClientName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Client name is required"})
		return
	}

	invoice := ir.server.GetStore().CreateInvoice(req.WorkspaceID, req.ClientName, req.ProjectDescription, req.Total)
	c.JSON(http.StatusCreated, gin.H{"invoice": invoice})
}

func (ir *InvoiceRoutes) getInvoiceHandler(c *gin.Context) {
	invoice, ok := ir.server.GetStore().GetInvoice(c.Param("invoiceID"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

func (ir *InvoiceRoutes) updateInvoiceHandler(c *gin.Context) {
	var req struct {
		ClientName         string  `json:"clientName"`
		ProjectDescription string  `json:"projectDescription"`
		Total              float64 `json:"total"`
	}
	req.Total = -1 // distinguish "absent" from an explicit zero
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !ir.server.GetStore().UpdateInvoice(c.Param("invoiceID"), req.ClientName, req.ProjectDescription, req.Total) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}
	invoice, _ := ir.server.GetStore().GetInvoice(c.Param("invoiceID"))
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

func (ir *InvoiceRoutes) setStatusHandler(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !store.ValidInvoiceStatus(store.InvoiceStatus(req.Status)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status. Must be draft, pending, or paid"})
		return
	}
	if !ir.server.GetStore().SetInvoiceStatus(c.Param("invoiceID"), store.InvoiceStatus(req.Status)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invoice status updated"})
}

func (ir *InvoiceRoutes) deleteInvoiceHandler(c *gin.Context) {
	if !ir.server.GetStore().DeleteInvoice(c.Param("invoiceID")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted"})
}
