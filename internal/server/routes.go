package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"invoicehub/internal/server/routes"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := gin.Default()

	// Set up sessions
	store := cookie.NewStore([]byte(os.Getenv("SESSION_SECRET")))
	r.Use(sessions.Sessions("invoicehub-session", store))

	allowedOrigins := []string{"http://localhost:3000"}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		allowedOrigins = strings.Split(origins, ",")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.GET("/health", s.healthHandler)
	r.POST("/session", s.sessionHandler)

	routes.NewWorkspaceRoutes(s).RegisterRoutes(r)
	routes.NewSettingsRoutes(s).RegisterRoutes(r)
	routes.NewProjectRoutes(s).RegisterRoutes(r)
	routes.NewInvoiceRoutes(s).RegisterRoutes(r)
	routes.NewSubscriptionRoutes(s).RegisterRoutes(r)
	routes.NewVaultRoutes(s).RegisterRoutes(r)
	routes.NewEmailRoutes(s).RegisterRoutes(r)

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "up"})
}

// sessionHandler stores a self-declared actor identity in the session. There
// is no authentication; the identity only attributes plan changes and logs.
func (s *Server) sessionHandler(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := sessions.Default(c)
	session.Set("name", req.Name)
	session.Set("email", req.Email)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session saved"})
}
