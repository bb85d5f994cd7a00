package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicehub/internal/store"
)

type WorkspaceRoutes struct {
	server ServerInterface
}

func NewWorkspaceRoutes(server ServerInterface) *WorkspaceRoutes {
	return &WorkspaceRoutes{server: server}
}

func (wr *WorkspaceRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(wr.server)

	r.GET("/workspaces", wr.listWorkspacesHandler)
	r.POST("/workspaces", wr.createWorkspaceHandler)
	r.GET("/workspaces/:id", middleware.WorkspaceMiddleware(), wr.getWorkspaceHandler)
	r.PUT("/workspaces/:id", middleware.WorkspaceMiddleware(), wr.updateWorkspaceHandler)
	r.DELETE("/workspaces/:id", wr.deleteWorkspaceHandler)
	r.POST("/workspaces/:id/activate", wr.activateWorkspaceHandler)

	r.GET("/workspaces/:id/members", middleware.WorkspaceMiddleware(), wr.getMembersHandler)
	r.POST("/workspaces/:id/members", middleware.WorkspaceMiddleware(), wr.addMemberHandler)
	r.PUT("/workspaces/:id/members/:memberID/role", middleware.WorkspaceMiddleware(), wr.updateMemberRoleHandler)
	r.DELETE("/workspaces/:id/members/:memberID", middleware.WorkspaceMiddleware(), wr.removeMemberHandler)

	r.GET("/roles", wr.getRolesHandler)
	r.GET("/role-changes/pending", wr.getPendingRoleChangeHandler)
	r.DELETE("/role-changes/pending", wr.cancelPendingRoleChangeHandler)
}

func (wr *WorkspaceRoutes) listWorkspacesHandler(c *gin.Context) {
	st := wr.server.GetStore()
	c.JSON(http.StatusOK, gin.H{
		"workspaces":       st.Workspaces(),
		"currentWorkspace": st.CurrentWorkspace(),
	})
}

func (wr *WorkspaceRoutes) createWorkspaceHandler(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Color       string `json:"color"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st := wr.server.GetStore()
	ws, err := st.CreateWorkspace(req.Name, req.Color, req.Description)
	if err != nil {
		if errors.Is(err, store.ErrPlanLimit) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":           "Workspace limit reached for current plan",
				"upgradeRequired": true,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create workspace"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"workspace": ws})
}

func (wr *WorkspaceRoutes) getWorkspaceHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)
	c.JSON(http.StatusOK, gin.H{"workspace": workspace})
}

func (wr *WorkspaceRoutes) updateWorkspaceHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	var req struct {
		Name        string `json:"name"`
		Color       string `json:"color"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st := wr.server.GetStore()
	if !st.UpdateWorkspace(workspace.ID, req.Name, req.Color, req.Description) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
		return
	}
	updated, _ := st.GetWorkspace(workspace.ID)
	c.JSON(http.StatusOK, gin.H{"workspace": updated})
}

func (wr *WorkspaceRoutes) deleteWorkspaceHandler(c *gin.Context) {
	st := wr.server.GetStore()
	if !st.DeleteWorkspace(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":          "Workspace deleted",
		"currentWorkspace": st.CurrentWorkspace(),
	})
}

func (wr *WorkspaceRoutes) activateWorkspaceHandler(c *gin.Context) {
	st := wr.server.GetStore()
	if !st.SetCurrentWorkspace(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"currentWorkspace": st.CurrentWorkspace(),
		"projects":         st.ActiveProjects(),
	})
}

func (wr *WorkspaceRoutes) getMembersHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)
	c.JSON(http.StatusOK, gin.H{"members": wr.server.GetStore().Members(workspace.ID)})
}

func (wr *WorkspaceRoutes) addMemberHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	var req struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required,email"`
		Role  string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !store.ValidRole(store.Role(req.Role)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role. Must be OWNER, ADMIN, MEMBER, or VIEWER"})
		return
	}

	st := wr.server.GetStore()
	member, err := st.AddMember(workspace.ID, req.Name, req.Email, store.Role(req.Role))
	if err != nil {
		if errors.Is(err, store.ErrPlanLimit) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":           "Member limit reached for current plan",
				"upgradeRequired": true,
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"member": member})
}

func (wr *WorkspaceRoutes) updateMemberRoleHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)
	memberID := c.Param("memberID")

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !store.ValidRole(store.Role(req.Role)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role. Must be OWNER, ADMIN, MEMBER, or VIEWER"})
		return
	}

	st := wr.server.GetStore()
	outcome, err := st.SetMemberRole(workspace.ID, memberID, store.Role(req.Role))
	switch {
	case errors.Is(err, store.ErrSoleOwner):
		c.JSON(http.StatusConflict, gin.H{"error": "Workspace must keep at least one owner"})
	case outcome == store.RoleDeferred:
		c.JSON(http.StatusForbidden, gin.H{
			"error":           "Admin limit reached for current plan",
			"upgradeRequired": true,
			"pending":         st.PendingRoleChange(),
		})
	case outcome == store.RoleNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
	}
}

func (wr *WorkspaceRoutes) removeMemberHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	st := wr.server.GetStore()
	found, err := st.RemoveMember(workspace.ID, c.Param("memberID"))
	if errors.Is(err, store.ErrSoleOwner) {
		c.JSON(http.StatusConflict, gin.H{"error": "Workspace must keep at least one owner"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

func (wr *WorkspaceRoutes) getRolesHandler(c *gin.Context) {
	roles := map[store.Role]store.Permissions{}
	for _, role := range []store.Role{store.RoleOwner, store.RoleAdmin, store.RoleMember, store.RoleViewer} {
		roles[role] = store.PermissionsForRole(role)
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

func (wr *WorkspaceRoutes) getPendingRoleChangeHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pending": wr.server.GetStore().PendingRoleChange()})
}

func (wr *WorkspaceRoutes) cancelPendingRoleChangeHandler(c *gin.Context) {
	wr.server.GetStore().CancelPendingRoleChange()
	c.JSON(http.StatusOK, gin.H{"message": "Pending role change discarded"})
}
