package store

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	StatusActive    ProjectStatus = "active"
	StatusCompleted ProjectStatus = "completed"
	StatusOnHold    ProjectStatus = "on-hold"
	StatusCanceled  ProjectStatus = "canceled"
	StatusDraft     ProjectStatus = "draft"
)

// ValidProjectStatus reports whether st is a known project status.
func ValidProjectStatus(st ProjectStatus) bool {
	switch st {
	case StatusActive, StatusCompleted, StatusOnHold, StatusCanceled, StatusDraft:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ValidPriority reports whether p is a known priority.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskReview     TaskStatus = "review"
	TaskDone       TaskStatus = "done"
)

// ValidTaskStatus reports whether st is a known task status.
func ValidTaskStatus(st TaskStatus) bool {
	switch st {
	case TaskTodo, TaskInProgress, TaskReview, TaskDone:
		return true
	}
	return false
}

// Task is one item of a project's task list.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// HoursLog is one append-only entry of logged hours.
type HoursLog struct {
	ID          string    `json:"id"`
	Hours       float64   `json:"hours"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// Project belongs to exactly one workspace partition; WorkspaceID always
// equals the key of the partition containing it.
type Project struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Client         string        `json:"client"`
	Status         ProjectStatus `json:"status"`
	Priority       Priority      `json:"priority"`
	HoursEstimated float64       `json:"hoursEstimated"`
	HoursLogged    float64       `json:"hoursLogged"`
	HoursLogs      []HoursLog    `json:"hoursLogs"`
	ServiceTypes   []string      `json:"serviceTypes"`
	Invoices       []string      `json:"invoices"`
	Tasks          []Task        `json:"tasks"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
	WorkspaceID    string        `json:"workspaceId"`
}

// Progress returns the logged-versus-estimated percentage, capped at 100.
func (p *Project) Progress() float64 {
	if p.HoursEstimated <= 0 {
		return 0
	}
	pct := p.HoursLogged / p.HoursEstimated * 100
	if pct > 100 {
		return 100
	}
	return pct
}

type projectsDocument struct {
	// Projects mirrors the active workspace's partition for components still
	// reading the flat shape.
	Projects          []Project            `json:"projects"`
	WorkspaceProjects map[string][]Project `json:"workspaceProjects"`

	// Transient view state; reset to defaults when serialized.
	Filter            string `json:"filter"`
	ServiceTypeFilter string `json:"serviceTypeFilter"`
	PriorityFilter    string `json:"priorityFilter"`
	SearchQuery       string `json:"searchQuery"`
}

func defaultProjectsDocument() projectsDocument {
	return projectsDocument{
		Projects:          []Project{},
		WorkspaceProjects: map[string][]Project{DefaultWorkspaceID: {}},
		Filter:            FilterAll,
		ServiceTypeFilter: FilterAll,
		PriorityFilter:    FilterAll,
	}
}

// migrateProjectsDocument moves a pre-partition flat project list into the
// "default" partition. The guard is the absence of the partition map itself,
// so repeated loads never duplicate data.
func migrateProjectsDocument(doc *projectsDocument) {
	if doc.WorkspaceProjects != nil {
		return
	}
	doc.WorkspaceProjects = map[string][]Project{}
	if len(doc.Projects) > 0 {
		migrated := make([]Project, len(doc.Projects))
		copy(migrated, doc.Projects)
		doc.WorkspaceProjects[DefaultWorkspaceID] = migrated
	}
}

func normalizeProject(p *Project, partitionID string) {
	if p.HoursLogs == nil {
		p.HoursLogs = []HoursLog{}
	}
	if p.ServiceTypes == nil {
		p.ServiceTypes = []string{}
	}
	if p.Invoices == nil {
		p.Invoices = []string{}
	}
	if p.Tasks == nil {
		p.Tasks = []Task{}
	}
	if !ValidPriority(p.Priority) {
		p.Priority = PriorityMedium
	}
	for i := range p.Tasks {
		if !ValidPriority(p.Tasks[i].Priority) {
			p.Tasks[i].Priority = PriorityMedium
		}
		if !ValidTaskStatus(p.Tasks[i].Status) {
			p.Tasks[i].Status = TaskTodo
		}
	}
	if p.HoursEstimated < 0 {
		p.HoursEstimated = 0
	}
	if p.HoursLogged < 0 {
		p.HoursLogged = 0
	}
	if partitionID != "" {
		p.WorkspaceID = partitionID
	}
}

func normalizeProjectsDocument(doc *projectsDocument) {
	if doc.WorkspaceProjects == nil {
		doc.WorkspaceProjects = map[string][]Project{}
	}
	for id, projects := range doc.WorkspaceProjects {
		if projects == nil {
			doc.WorkspaceProjects[id] = []Project{}
			continue
		}
		for i := range projects {
			normalizeProject(&projects[i], id)
		}
	}
	if doc.Projects == nil {
		doc.Projects = []Project{}
	}
	for i := range doc.Projects {
		normalizeProject(&doc.Projects[i], "")
	}
	if doc.Filter == "" {
		doc.Filter = FilterAll
	}
	if doc.ServiceTypeFilter == "" {
		doc.ServiceTypeFilter = FilterAll
	}
	if doc.PriorityFilter == "" {
		doc.PriorityFilter = FilterAll
	}
}

// ensureProjectsLocked returns the partition for a workspace, creating an
// empty one on first access. Empty ids address the default partition.
func (s *Store) ensureProjectsLocked(workspaceID string) (string, []Project) {
	if workspaceID == "" {
		workspaceID = DefaultWorkspaceID
	}
	projects, ok := s.projects.WorkspaceProjects[workspaceID]
	if !ok {
		projects = []Project{}
		s.projects.WorkspaceProjects[workspaceID] = projects
	}
	return workspaceID, projects
}

// syncProjectsMirrorLocked replicates the default partition into the flat
// mirror, within the same mutation.
func (s *Store) syncProjectsMirrorLocked(workspaceID string) {
	if workspaceID != DefaultWorkspaceID {
		return
	}
	s.projects.Projects = append([]Project(nil), s.projects.WorkspaceProjects[DefaultWorkspaceID]...)
}

// syncActiveProjects is the active-workspace synchronizer: lazily creates the
// partition, copies it into the flat mirror and resets the view filters that
// were scoped to the previous workspace. No persistence happens here.
func (s *Store) syncActiveProjects(workspaceID string) {
	_, projects := s.ensureProjectsLocked(workspaceID)
	s.projects.Projects = append([]Project(nil), projects...)
	s.projects.Filter = FilterAll
	s.projects.ServiceTypeFilter = FilterAll
	s.projects.PriorityFilter = FilterAll
	s.projects.SearchQuery = ""
}

// SetActiveWorkspaceProjects runs the synchronizer for callers outside a
// workspace switch (e.g. initial load of a single container).
func (s *Store) SetActiveWorkspaceProjects(workspaceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncActiveProjects(workspaceID)
}

// ActiveProjects returns the flat mirror list.
func (s *Store) ActiveProjects() []Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Project(nil), s.projects.Projects...)
}

// Projects returns a copy of one workspace's partition.
func (s *Store) Projects(workspaceID string) []Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, projects := s.ensureProjectsLocked(workspaceID)
	return append([]Project(nil), projects...)
}

// GetProject looks up a project inside a workspace partition.
func (s *Store) GetProject(workspaceID, projectID string) (Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _ := s.ensureProjectsLocked(workspaceID)
	p := s.findProjectLocked(id, projectID)
	if p == nil {
		return Project{}, false
	}
	return *p, true
}

func (s *Store) findProjectLocked(workspaceID, projectID string) *Project {
	projects := s.projects.WorkspaceProjects[workspaceID]
	for i := range projects {
		if projects[i].ID == projectID {
			return &projects[i]
		}
	}
	return nil
}

// nextProjectNumberLocked generates a human-readable project number unique
// across all partitions.
func (s *Store) nextProjectNumberLocked() string {
	total := 0
	for _, projects := range s.projects.WorkspaceProjects {
		total += len(projects)
	}
	for seq := total + 1; ; seq++ {
		id := fmt.Sprintf("PRJ-%04d", seq)
		taken := false
		for _, projects := range s.projects.WorkspaceProjects {
			for i := range projects {
				if projects[i].ID == id {
					taken = true
					break
				}
			}
		}
		if !taken {
			return id
		}
	}
}

// NewProject carries the caller-supplied fields of a project creation.
type NewProject struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Client         string   `json:"client"`
	Priority       Priority `json:"priority"`
	HoursEstimated float64  `json:"hoursEstimated"`
	ServiceTypes   []string `json:"serviceTypes"`
	Draft          bool     `json:"draft"`
}

// CreateProject adds a project to a workspace partition. New projects start
// active (or draft when flagged) with an empty task list and zeroed hours.
func (s *Store) CreateProject(workspaceID string, in NewProject) Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, _ := s.ensureProjectsLocked(workspaceID)
	now := time.Now()
	status := StatusActive
	if in.Draft {
		status = StatusDraft
	}
	if !ValidPriority(in.Priority) {
		in.Priority = PriorityMedium
	}
	if in.ServiceTypes == nil {
		in.ServiceTypes = []string{}
	}
	if in.HoursEstimated < 0 {
		in.HoursEstimated = 0
	}
	project := Project{
		ID:             s.nextProjectNumberLocked(),
		Name:           in.Name,
		Description:    in.Description,
		Client:         in.Client,
		Status:         status,
		Priority:       in.Priority,
		HoursEstimated: in.HoursEstimated,
		HoursLogs:      []HoursLog{},
		ServiceTypes:   in.ServiceTypes,
		Invoices:       []string{},
		Tasks:          []Task{},
		CreatedAt:      now,
		UpdatedAt:      now,
		WorkspaceID:    id,
	}
	s.projects.WorkspaceProjects[id] = append(s.projects.WorkspaceProjects[id], project)
	s.syncProjectsMirrorLocked(id)
	s.persistProjects()
	return project
}

// mutateProject applies fn to a project in place, refreshing the mirror and
// persisting when the project was found. Missing projects are a tolerant
// no-op reported through the return value.
func (s *Store) mutateProject(workspaceID, projectID string, fn func(*Project)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _ := s.ensureProjectsLocked(workspaceID)
	p := s.findProjectLocked(id, projectID)
	if p == nil {
		return false
	}
	fn(p)
	p.UpdatedAt = time.Now()
	s.syncProjectsMirrorLocked(id)
	s.persistProjects()
	return true
}

// UpdateProject edits the descriptive fields of a project.
func (s *Store) UpdateProject(workspaceID, projectID string, in NewProject) bool {
	return s.mutateProject(workspaceID, projectID, func(p *Project) {
		if in.Name != "" {
			p.Name = in.Name
		}
		p.Description = in.Description
		p.Client = in.Client
		if ValidPriority(in.Priority) {
			p.Priority = in.Priority
		}
		if in.HoursEstimated >= 0 {
			p.HoursEstimated = in.HoursEstimated
		}
		if in.ServiceTypes != nil {
			p.ServiceTypes = in.ServiceTypes
		}
	})
}

// SetProjectStatus changes a project's status.
func (s *Store) SetProjectStatus(workspaceID, projectID string, status ProjectStatus) bool {
	if !ValidProjectStatus(status) {
		return false
	}
	return s.mutateProject(workspaceID, projectID, func(p *Project) {
		p.Status = status
	})
}

// SetProjectPriority changes a project's priority.
func (s *Store) SetProjectPriority(workspaceID, projectID string, priority Priority) bool {
	if !ValidPriority(priority) {
		return false
	}
	return s.mutateProject(workspaceID, projectID, func(p *Project) {
		p.Priority = priority
	})
}

// LogHours appends an entry to the project's hours log and accumulates the
// logged total. Non-positive and non-finite hours are ignored; NaN would
// poison the accumulated total and break serialization.
func (s *Store) LogHours(workspaceID, projectID string, hours float64, description string) bool {
	if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return false
	}
	return s.mutateProject(workspaceID, projectID, func(p *Project) {
		p.HoursLogs = append(p.HoursLogs, HoursLog{
			ID:          uuid.NewString(),
			Hours:       hours,
			Description: description,
			Date:        time.Now(),
		})
		p.HoursLogged += hours
	})
}

// DeleteProject removes a project from its workspace partition.
func (s *Store) DeleteProject(workspaceID, projectID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, projects := s.ensureProjectsLocked(workspaceID)
	for i := range projects {
		if projects[i].ID == projectID {
			s.projects.WorkspaceProjects[id] = append(projects[:i], projects[i+1:]...)
			s.syncProjectsMirrorLocked(id)
			s.persistProjects()
			return true
		}
	}
	return false
}

// AddTask appends a task to a project.
func (s *Store) AddTask(workspaceID, projectID, title, description string, priority Priority) (Task, bool) {
	if !ValidPriority(priority) {
		priority = PriorityMedium
	}
	now := time.Now()
	task := Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Status:      TaskTodo,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	found := s.mutateProject(workspaceID, projectID, func(p *Project) {
		p.Tasks = append(p.Tasks, task)
	})
	return task, found
}

// UpdateTask edits a task's title, description, status or priority. A missing
// task inside an existing project is a tolerant no-op.
func (s *Store) UpdateTask(workspaceID, projectID, taskID string, title, description string, status TaskStatus, priority Priority) bool {
	taskFound := false
	projectFound := s.mutateProject(workspaceID, projectID, func(p *Project) {
		for i := range p.Tasks {
			if p.Tasks[i].ID != taskID {
				continue
			}
			if title != "" {
				p.Tasks[i].Title = title
			}
			if description != "" {
				p.Tasks[i].Description = description
			}
			if ValidTaskStatus(status) {
				p.Tasks[i].Status = status
			}
			if ValidPriority(priority) {
				p.Tasks[i].Priority = priority
			}
			p.Tasks[i].UpdatedAt = time.Now()
			taskFound = true
			return
		}
	})
	return projectFound && taskFound
}

// DeleteTask removes a task from a project.
func (s *Store) DeleteTask(workspaceID, projectID, taskID string) bool {
	taskFound := false
	s.mutateProject(workspaceID, projectID, func(p *Project) {
		for i := range p.Tasks {
			if p.Tasks[i].ID == taskID {
				p.Tasks = append(p.Tasks[:i], p.Tasks[i+1:]...)
				taskFound = true
				return
			}
		}
	})
	return taskFound
}

// LinkInvoice records an invoice id on a project (weak reference, set
// semantics).
func (s *Store) LinkInvoice(workspaceID, projectID, invoiceID string) bool {
	return s.mutateProject(workspaceID, projectID, func(p *Project) {
		for _, id := range p.Invoices {
			if id == invoiceID {
				return
			}
		}
		p.Invoices = append(p.Invoices, invoiceID)
	})
}

// ProjectFilters is the transient view state of the project list.
type ProjectFilters struct {
	Status      string `json:"filter"`
	ServiceType string `json:"serviceTypeFilter"`
	Priority    string `json:"priorityFilter"`
	SearchQuery string `json:"searchQuery"`
}

// SetProjectFilters updates the view state. UI-only: never persisted.
func (s *Store) SetProjectFilters(f ProjectFilters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Status == "" {
		f.Status = FilterAll
	}
	if f.ServiceType == "" {
		f.ServiceType = FilterAll
	}
	if f.Priority == "" {
		f.Priority = FilterAll
	}
	s.projects.Filter = f.Status
	s.projects.ServiceTypeFilter = f.ServiceType
	s.projects.PriorityFilter = f.Priority
	s.projects.SearchQuery = f.SearchQuery
}

// ProjectFilters returns the current view state.
func (s *Store) ProjectFilters() ProjectFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ProjectFilters{
		Status:      s.projects.Filter,
		ServiceType: s.projects.ServiceTypeFilter,
		Priority:    s.projects.PriorityFilter,
		SearchQuery: s.projects.SearchQuery,
	}
}

// FilteredProjects re-derives the filtered view of a workspace's partition.
// Always recomputed from the partition, never cached.
func (s *Store) FilteredProjects(workspaceID string, f ProjectFilters) []Project {
	s.mu.Lock()
	id, projects := s.ensureProjectsLocked(workspaceID)
	snapshot := append([]Project(nil), projects...)
	s.mu.Unlock()
	return FilterProjects(snapshot, id, f.Status, f.ServiceType, f.Priority, f.SearchQuery)
}
