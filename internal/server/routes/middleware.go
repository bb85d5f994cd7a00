package routes

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"invoicehub/internal/mailer"
	"invoicehub/internal/store"
)

// ServerInterface is what route groups need from the server.
type ServerInterface interface {
	GetStore() *store.Store
	GetMailer() mailer.Mailer
	GetLogger() *zap.Logger
}

type Middleware struct {
	server ServerInterface
}

func NewMiddleware(server ServerInterface) *Middleware {
	return &Middleware{server: server}
}

// WorkspaceMiddleware resolves the :id path parameter to a workspace and
// stores it in the request context.
func (m *Middleware) WorkspaceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID := c.Param("id")

		st := m.server.GetStore()
		ws, ok := st.GetWorkspace(workspaceID)
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
			return
		}

		c.Set("workspace", &ws)
		c.Next()
	}
}

// sessionActor returns the self-declared identity stored in the session, used
// only to attribute changes in logs and history.
func sessionActor(c *gin.Context) string {
	session := sessions.Default(c)
	if email, ok := session.Get("email").(string); ok {
		return email
	}
	return ""
}
