package store

import "fmt"

// RoleChange is a one-shot pending role assignment held while the plan gate
// refuses it. It is retried automatically on the next satisfying upgrade.
type RoleChange struct {
	WorkspaceID string `json:"workspaceId"`
	MemberID    string `json:"memberId"`
	Role        Role   `json:"role"`
}

// RoleChangeOutcome tells the caller what happened to a role assignment.
type RoleChangeOutcome int

const (
	// RoleApplied means the role was assigned.
	RoleApplied RoleChangeOutcome = iota
	// RoleDeferred means the plan gate refused; the change is held and will be
	// retried once on the next upgrade that satisfies the gate.
	RoleDeferred
	// RoleNotFound means the member does not exist in the workspace.
	RoleNotFound
)

// SetMemberRole assigns a role. Elevating a member to ADMIN or OWNER counts
// current admin-level members against the plan's maxAdmins first; when the
// limit is already reached the change is stashed, not discarded. The sole
// remaining owner cannot be demoted.
func (s *Store) SetMemberRole(workspaceID, memberID string, role Role) (RoleChangeOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !ValidRole(role) {
		return RoleNotFound, fmt.Errorf("invalid role %q", role)
	}
	return s.setMemberRoleLocked(workspaceID, memberID, role, true)
}

// setMemberRoleLocked applies a role change under the store lock. defer
// controls whether a gate refusal stashes the change (false when retrying the
// pending change itself, so it cannot re-stash forever).
func (s *Store) setMemberRoleLocked(workspaceID, memberID string, role Role, allowDefer bool) (RoleChangeOutcome, error) {
	members := s.workspaces.Members[workspaceID]
	var member *Member
	for i := range members {
		if members[i].ID == memberID {
			member = &members[i]
			break
		}
	}
	if member == nil {
		return RoleNotFound, nil
	}
	if member.Role == role {
		return RoleApplied, nil
	}
	if member.Role == RoleOwner && role != RoleOwner && s.ownerCount(workspaceID) == 1 {
		return RoleNotFound, ErrSoleOwner
	}
	if role.isAdminLevel() && !member.Role.isAdminLevel() && !s.adminSlotAvailable(workspaceID) {
		if allowDefer {
			s.pendingRoleChange = &RoleChange{
				WorkspaceID: workspaceID,
				MemberID:    memberID,
				Role:        role,
			}
			return RoleDeferred, ErrPlanLimit
		}
		return RoleNotFound, ErrPlanLimit
	}

	member.Role = role
	s.persistWorkspaces()
	return RoleApplied, nil
}

// PendingRoleChange returns the held role change, if any.
func (s *Store) PendingRoleChange() *RoleChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingRoleChange == nil {
		return nil
	}
	rc := *s.pendingRoleChange
	return &rc
}

// CancelPendingRoleChange discards the held role change.
func (s *Store) CancelPendingRoleChange() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingRoleChange = nil
}

// applyPendingRoleChangeLocked retries the held change after a plan upgrade.
// The slot is cleared before the retry so the change executes at most once.
func (s *Store) applyPendingRoleChangeLocked() {
	if s.pendingRoleChange == nil {
		return
	}
	rc := *s.pendingRoleChange
	s.pendingRoleChange = nil
	if _, err := s.setMemberRoleLocked(rc.WorkspaceID, rc.MemberID, rc.Role, false); err != nil {
		s.logger.Warn("deferred role change could not be applied after upgrade")
	}
}
