package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"invoicehub/internal/store"
)

type ProjectRoutes struct {
	server ServerInterface
}

func NewProjectRoutes(server ServerInterface) *ProjectRoutes {
	return &ProjectRoutes{server: server}
}

func (pr *ProjectRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(pr.server)

	r.GET("/workspaces/:id/projects", middleware.WorkspaceMiddleware(), pr.listProjectsHandler)
	r.POST("/workspaces/:id/projects", middleware.WorkspaceMiddleware(), pr.createProjectHandler)
	r.GET("/workspaces/:id/projects/:projectID", middleware.WorkspaceMiddleware(), pr.getProjectHandler)
	r.PUT("/workspaces/:id/projects/:projectID", middleware.WorkspaceMiddleware(), pr.updateProjectHandler)
	r.DELETE("/workspaces/:id/projects/:projectID", middleware.WorkspaceMiddleware(), pr.deleteProjectHandler)
	r.PUT("/workspaces/:id/projects/:projectID/status", middleware.WorkspaceMiddleware(), pr.setStatusHandler)
	r.PUT("/workspaces/:id/projects/:projectID/priority", middleware.WorkspaceMiddleware(), pr.setPriorityHandler)
	r.POST("/workspaces/:id/projects/:projectID/hours", middleware.WorkspaceMiddleware(), pr.logHoursHandler)
	r.POST("/workspaces/:id/projects/:projectID/tasks", middleware.WorkspaceMiddleware(), pr.addTaskHandler)
	r.PUT("/workspaces/:id/projects/:projectID/tasks/:taskID", middleware.WorkspaceMiddleware(), pr.updateTaskHandler)
	r.DELETE("/workspaces/:id/projects/:projectID/tasks/:taskID", middleware.WorkspaceMiddleware(), pr.deleteTaskHandler)
	r.POST("/workspaces/:id/projects/:projectID/invoices", middleware.WorkspaceMiddleware(), pr.linkInvoiceHandler)

	r.GET("/project-filters", pr.getFiltersHandler)
	r.PUT("/project-filters", pr.setFiltersHandler)
}

// listProjectsHandler returns the filtered view of a workspace's partition.
// The view is re-derived on every request, never cached.
func (pr *ProjectRoutes) listProjectsHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	filters := store.ProjectFilters{
		Status:      c.DefaultQuery("status", store.FilterAll),
		ServiceType: c.DefaultQuery("serviceType", store.FilterAll),
		Priority:    c.DefaultQuery("priority", store.FilterAll),
		SearchQuery: c.Query("q"),
	}
	projects := pr.server.GetStore().FilteredProjects(workspace.ID, filters)
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (pr *ProjectRoutes) createProjectHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	var req store.NewProject
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project name is required"})
		return
	}

	project := pr.server.GetStore().CreateProject(workspace.ID, req)
	c.JSON(http.StatusCreated, gin.H{"project": project})
}

func (pr *ProjectRoutes) getProjectHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	st := pr.server.GetStore()
	project, ok := st.GetProject(workspace.ID, c.Param("projectID"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	invoiceTotal, _ := st.ProjectInvoiceTotal(workspace.ID, project.ID)
	c.JSON(http.StatusOK, gin.H{
		"project":      project,
		"progress":     project.Progress(),
		"invoiceTotal": invoiceTotal,
	})
}

func (pr *ProjectRoutes) updateProjectHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	var req store.NewProject
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !pr.server.GetStore().UpdateProject(workspace.ID, c.Param("projectID"), req) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project updated"})
}

func (pr *ProjectRoutes) deleteProjectHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	if !pr.server.GetStore().DeleteProject(workspace.ID, c.Param("projectID")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

func (pr *ProjectRoutes) setStatusHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !store.ValidProjectStatus(store.ProjectStatus(req.Status)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}
	if !pr.server.GetStore().SetProjectStatus(workspace.ID, c.Param("projectID"), store.ProjectStatus(req.Status)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}

func (pr *ProjectRoutes) setPriorityHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	var req struct {
		Priority string `json:"priority" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !store.ValidPriority(store.Priority(req.Priority)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}
	if !pr.server.GetStore().SetProjectPriority(workspace.ID, c.Param("projectID"), store.Priority(req.Priority)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Priority updated"})
}

func (pr *ProjectRoutes) logHoursHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	var req struct {
		Hours       float64 `json:"hours" binding:"required"`
		Description string  `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Hours <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Hours must be positive"})
		return
	}

	st := pr.server.GetStore()
	if !st.LogHours(workspace.ID, c.Param("projectID"), req.Hours, req.Description) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	project, _ := st.GetProject(workspace.ID, c.Param("projectID"))
	c.JSON(http.StatusOK, gin.H{
		"hoursLogged": project.HoursLogged,
		"progress":    project.Progress(),
	})
}

func (pr *ProjectRoutes) addTaskHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, found := pr.server.GetStore().AddTask(workspace.ID, c.Param("projectID"),
		req.Title, req.Description, store.Priority(req.Priority))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func (pr *ProjectRoutes) updateTaskHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Status      string `json:"status"`
		Priority    string `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !pr.server.GetStore().UpdateTask(workspace.ID, c.Param("projectID"), c.Param("taskID"),
		req.Title, req.Description, store.TaskStatus(req.Status), store.Priority(req.Priority)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task updated"})
}

func (pr *ProjectRoutes) deleteTaskHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	if !pr.server.GetStore().DeleteTask(workspace.ID, c.Param("projectID"), c.Param("taskID")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

func (pr *ProjectRoutes) linkInvoiceHandler(c *gin.Context) {
	workspace := c.MustGet("workspace").(*store.Workspace)

	var req struct {
		InvoiceID string `json:"invoiceId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !pr.server.GetStore().LinkInvoice(workspace.ID, c.Param("projectID"), req.InvoiceID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invoice linked"})
}

func (pr *ProjectRoutes) getFiltersHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"filters": pr.server.GetStore().ProjectFilters()})
}

// setFiltersHandler updates the transient view state. This never persists.
func (pr *ProjectRoutes) setFiltersHandler(c *gin.Context) {
	var req store.ProjectFilters
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pr.server.GetStore().SetProjectFilters(req)
	c.JSON(http.StatusOK, gin.H{"filters": pr.server.GetStore().ProjectFilters()})
}
