package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicehub/internal/store"
)

type SubscriptionRoutes struct {
	server ServerInterface
}

func NewSubscriptionRoutes(server ServerInterface) *SubscriptionRoutes {
	return &SubscriptionRoutes{server: server}
}

func (sr *SubscriptionRoutes) RegisterRoutes(r *gin.Engine) {
	r.GET("/subscription", sr.getSubscriptionHandler)
	r.GET("/plans", sr.getPlansHandler)
	r.POST("/subscription/upgrade", sr.upgradeHandler)
	r.POST("/subscription/trial", sr.startTrialHandler)
}

func (sr *SubscriptionRoutes) getSubscriptionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"subscription": sr.server.GetStore().Subscription()})
}

func (sr *SubscriptionRoutes) getPlansHandler(c *gin.Context) {
	plans := map[store.Plan]store.PlanDetails{}
	for _, plan := range []store.Plan{store.PlanFree, store.PlanPro, store.PlanBusiness} {
		details, _ := store.DetailsForPlan(plan)
		plans[plan] = details
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// upgradeHandler switches the plan immediately. There is no payment gateway;
// this simulates the upgrade and retries any held role change.
func (sr *SubscriptionRoutes) upgradeHandler(c *gin.Context) {
	var req struct {
		Plan string `json:"plan" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, ok := sr.server.GetStore().ChangePlan(store.Plan(req.Plan), sessionActor(c))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan. Must be FREE, PRO, or BUSINESS"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}

func (sr *SubscriptionRoutes) startTrialHandler(c *gin.Context) {
	var req struct {
		Plan string `json:"plan" binding:"required"`
		Days int    `json:"days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Days <= 0 {
		req.Days = 14
	}

	sub, ok := sr.server.GetStore().StartTrial(store.Plan(req.Plan), req.Days, sessionActor(c))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan. Must be FREE, PRO, or BUSINESS"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}
