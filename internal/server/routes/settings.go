package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicehub/internal/store"
)

type SettingsRoutes struct {
	server ServerInterface
}

func NewSettingsRoutes(server ServerInterface) *SettingsRoutes {
	return &SettingsRoutes{server: server}
}

func (sr *SettingsRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(sr.server)

	r.GET("/currencies", sr.getCurrenciesHandler)

	r.GET("/workspaces/:id/settings", middleware.WorkspaceMiddleware(), sr.getSettingsHandler)
	r.PUT("/workspaces/:id/settings/business", middleware.WorkspaceMiddleware(), sr.updateBusinessHandler)
	r.PUT("/workspaces/:id/settings/payment", middleware.WorkspaceMiddleware(), sr.updatePaymentHandler)
	r.PUT("/workspaces/:id/settings/currency", middleware.WorkspaceMiddleware(), sr.setCurrencyHandler)
	r.PUT("/workspaces/:id/settings/automation", middleware.WorkspaceMiddleware(), sr.updateAutomationHandler)
	r.PUT("/workspaces/:id/settings/language", middleware.WorkspaceMiddleware(), sr.setLanguageHandler)
	r.POST("/workspaces/:id/settings/service-types", middleware.WorkspaceMiddleware(), sr.addServiceTypeHandler)
	r.DELETE("/workspaces/:id/settings/service-types/:typeID", middleware.WorkspaceMiddleware(), sr.removeServiceTypeHandler)
}

func (sr *SettingsRoutes) getCurrenciesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"currencies": sr.server.GetStore().AvailableCurrencies()})
}

func (sr *SettingsRoutes) getSettingsHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)
	c.JSON(http.StatusOK, gin.H{"settings": sr.server.GetStore().WorkspaceSettings(workspace.ID)})
}

func (sr *SettingsRoutes) updateBusinessHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	var req store.BusinessInfo
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sr.server.GetStore().UpdateBusinessInfo(workspace.ID, req)
	c.JSON(http.StatusOK, gin.H{"message": "Business info updated"})
}

func (sr *SettingsRoutes) updatePaymentHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	var req store.PaymentDetails
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sr.server.GetStore().UpdatePaymentDetails(workspace.ID, req)
	c.JSON(http.StatusOK, gin.H{"message": "Payment details updated"})
}

func (sr *SettingsRoutes) setCurrencyHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !sr.server.GetStore().SetCurrency(workspace.ID, req.Code) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown currency code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Currency updated"})
}

func (sr *SettingsRoutes) updateAutomationHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	var req store.Automation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sr.server.GetStore().UpdateAutomation(workspace.ID, req)
	c.JSON(http.StatusOK, gin.H{"message": "Automation settings updated"})
}

func (sr *SettingsRoutes) setLanguageHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	var req struct {
		Language string `json:"language" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sr.server.GetStore().SetLanguage(workspace.ID, req.Language)
	c.JSON(http.StatusOK, gin.H{"message": "Language updated"})
}

func (sr *SettingsRoutes) addServiceTypeHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	var req struct {
		ID   string `json:"id" binding:"required"`
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !sr.server.GetStore().AddServiceType(workspace.ID, req.ID, req.Name) {
		c.JSON(http.StatusConflict, gin.H{"error": "Service type id already exists"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Service type added"})
}

func (sr *SettingsRoutes) removeServiceTypeHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	removed, err := sr.server.GetStore().RemoveServiceType(workspace.ID, c.Param("typeID"))
	if errors.Is(err, store.ErrDefaultServiceType) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Default service types cannot be removed"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service type not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service type removed"})
}
