package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Workspace is an isolated namespace grouping projects, settings and invoices.
type Workspace struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Member is a workspace member with a role. There is no server-side account
// store; members are self-declared identities used by the role/plan gate.
type Member struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	RoleViewer Role = "VIEWER"
)

// ValidRole reports whether r is one of the four known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember, RoleViewer:
		return true
	}
	return false
}

// Permissions is the static capability set attached to a role.
type Permissions struct {
	ManageWorkspace bool `json:"manageWorkspace"`
	ManageMembers   bool `json:"manageMembers"`
	EditInvoices    bool `json:"editInvoices"`
	EditProjects    bool `json:"editProjects"`
	View            bool `json:"view"`
}

var rolePermissions = map[Role]Permissions{
	RoleOwner:  {ManageWorkspace: true, ManageMembers: true, EditInvoices: true, EditProjects: true, View: true},
	RoleAdmin:  {ManageWorkspace: true, ManageMembers: true, EditInvoices: true, EditProjects: true, View: true},
	RoleMember: {EditInvoices: true, EditProjects: true, View: true},
	RoleViewer: {View: true},
}

// PermissionsForRole returns the capability set for a role.
func PermissionsForRole(r Role) Permissions {
	return rolePermissions[r]
}

func (r Role) isAdminLevel() bool {
	return r == RoleOwner || r == RoleAdmin
}

type workspacesDocument struct {
	Workspaces       []Workspace         `json:"workspaces"`
	CurrentWorkspace *Workspace          `json:"currentWorkspace"`
	Members          map[string][]Member `json:"members"`
}

func defaultWorkspacesDocument() workspacesDocument {
	ws := Workspace{
		ID:        DefaultWorkspaceID,
		Name:      "My Workspace",
		Color:     "#4f46e5",
		CreatedAt: time.Now(),
	}
	return workspacesDocument{
		Workspaces:       []Workspace{ws},
		CurrentWorkspace: &ws,
		Members:          map[string][]Member{},
	}
}

func normalizeWorkspacesDocument(doc *workspacesDocument) {
	if doc.Workspaces == nil {
		doc.Workspaces = []Workspace{}
	}
	if doc.Members == nil {
		doc.Members = map[string][]Member{}
	}
	for id, members := range doc.Members {
		if members == nil {
			doc.Members[id] = []Member{}
		}
	}
	// A dangling current pointer falls back like a deletion would.
	if doc.CurrentWorkspace != nil && findWorkspace(doc.Workspaces, doc.CurrentWorkspace.ID) == nil {
		if len(doc.Workspaces) > 0 {
			ws := doc.Workspaces[0]
			doc.CurrentWorkspace = &ws
		} else {
			doc.CurrentWorkspace = nil
		}
	}
}

func findWorkspace(list []Workspace, id string) *Workspace {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

// Workspaces returns the registry contents.
func (s *Store) Workspaces() []Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Workspace, len(s.workspaces.Workspaces))
	copy(out, s.workspaces.Workspaces)
	return out
}

// CurrentWorkspace returns the active workspace, or nil when the registry is empty.
func (s *Store) CurrentWorkspace() *Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workspaces.CurrentWorkspace == nil {
		return nil
	}
	ws := *s.workspaces.CurrentWorkspace
	return &ws
}

// GetWorkspace looks up a workspace by id.
func (s *Store) GetWorkspace(id string) (Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws := findWorkspace(s.workspaces.Workspaces, id)
	if ws == nil {
		return Workspace{}, false
	}
	return *ws, true
}

// CreateWorkspace adds a workspace, gated by the plan's workspace limit. The id
// derives from the creation time. The new workspace becomes current when the
// registry had none.
func (s *Store) CreateWorkspace(name, color, description string) (Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := s.subscription.PlanDetails.MaxWorkspaces
	if limit != Unlimited && len(s.workspaces.Workspaces) >= limit {
		return Workspace{}, ErrPlanLimit
	}

	id := fmt.Sprintf("ws-%d", time.Now().UnixMilli())
	for findWorkspace(s.workspaces.Workspaces, id) != nil {
		id += "0"
	}
	ws := Workspace{
		ID:          id,
		Name:        name,
		Color:       color,
		Description: description,
		CreatedAt:   time.Now(),
	}
	s.workspaces.Workspaces = append(s.workspaces.Workspaces, ws)
	if s.workspaces.CurrentWorkspace == nil {
		s.workspaces.CurrentWorkspace = &ws
	}
	s.persistWorkspaces()
	return ws, nil
}

// UpdateWorkspace edits name/color/description in place. Missing ids are a no-op.
func (s *Store) UpdateWorkspace(id, name, color, description string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := findWorkspace(s.workspaces.Workspaces, id)
	if ws == nil {
		return false
	}
	if name != "" {
		ws.Name = name
	}
	if color != "" {
		ws.Color = color
	}
	ws.Description = description
	if s.workspaces.CurrentWorkspace != nil && s.workspaces.CurrentWorkspace.ID == id {
		current := *ws
		s.workspaces.CurrentWorkspace = &current
	}
	s.persistWorkspaces()
	return true
}

// DeleteWorkspace removes a workspace by id. When the current workspace is
// deleted the registry falls back to the first remaining one, or to none.
func (s *Store) DeleteWorkspace(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.workspaces.Workspaces {
		if s.workspaces.Workspaces[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	s.workspaces.Workspaces = append(s.workspaces.Workspaces[:idx], s.workspaces.Workspaces[idx+1:]...)
	delete(s.workspaces.Members, id)

	if s.workspaces.CurrentWorkspace != nil && s.workspaces.CurrentWorkspace.ID == id {
		if len(s.workspaces.Workspaces) > 0 {
			ws := s.workspaces.Workspaces[0]
			s.workspaces.CurrentWorkspace = &ws
			s.syncActiveSettings(ws.ID)
			s.syncActiveProjects(ws.ID)
		} else {
			s.workspaces.CurrentWorkspace = nil
		}
	}
	s.persistWorkspaces()
	return true
}

// SetCurrentWorkspace switches the active workspace and refreshes the legacy
// mirrors of the settings and projects containers. Partitions are created
// lazily here, so every workspace that has ever been active has one. The
// mirror refresh itself is not persisted (nothing structural changed there);
// the registry's current pointer is.
func (s *Store) SetCurrentWorkspace(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := findWorkspace(s.workspaces.Workspaces, id)
	if ws == nil {
		return false
	}
	current := *ws
	s.workspaces.CurrentWorkspace = &current
	s.syncActiveSettings(id)
	s.syncActiveProjects(id)
	s.persistWorkspaces()
	return true
}

// Members returns the member list of a workspace.
func (s *Store) Members(workspaceID string) []Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := s.workspaces.Members[workspaceID]
	out := make([]Member, len(members))
	copy(out, members)
	return out
}

// AddMember adds a member to a workspace. Member count and admin-level roles
// are both checked against the plan before anything changes.
func (s *Store) AddMember(workspaceID, name, email string, role Role) (Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !ValidRole(role) {
		return Member{}, fmt.Errorf("invalid role %q", role)
	}
	members := s.workspaces.Members[workspaceID]

	maxMembers := s.subscription.PlanDetails.MaxMembers
	if maxMembers != Unlimited && len(members) >= maxMembers {
		return Member{}, ErrPlanLimit
	}
	if role.isAdminLevel() && !s.adminSlotAvailable(workspaceID) {
		return Member{}, ErrPlanLimit
	}

	member := Member{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Role:     role,
		JoinedAt: time.Now(),
	}
	s.workspaces.Members[workspaceID] = append(members, member)
	s.persistWorkspaces()
	return member, nil
}

// RemoveMember removes a member. The sole remaining owner cannot be removed.
func (s *Store) RemoveMember(workspaceID, memberID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := s.workspaces.Members[workspaceID]
	idx := -1
	for i := range members {
		if members[i].ID == memberID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	if members[idx].Role == RoleOwner && s.ownerCount(workspaceID) == 1 {
		return false, ErrSoleOwner
	}
	s.workspaces.Members[workspaceID] = append(members[:idx], members[idx+1:]...)
	s.persistWorkspaces()
	return true, nil
}

func (s *Store) ownerCount(workspaceID string) int {
	n := 0
	for _, m := range s.workspaces.Members[workspaceID] {
		if m.Role == RoleOwner {
			n++
		}
	}
	return n
}

func (s *Store) adminLevelCount(workspaceID string) int {
	n := 0
	for _, m := range s.workspaces.Members[workspaceID] {
		if m.Role.isAdminLevel() {
			n++
		}
	}
	return n
}

func (s *Store) adminSlotAvailable(workspaceID string) bool {
	max := s.subscription.PlanDetails.MaxAdmins
	return max == Unlimited || s.adminLevelCount(workspaceID) < max
}
