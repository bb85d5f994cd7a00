// Package store holds the application state: the workspace registry and the
// workspace-partitioned settings, projects, invoices and subscription containers.
// Every structural mutation rewrites the owning document through the configured
// kvstore backend; transient UI state (filters, search text) never persists.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"invoicehub/internal/kvstore"
)

// Document keys, one per state container.
const (
	keyWorkspaces   = "workspaces"
	keySettings     = "settings"
	keyProjects     = "projects"
	keyInvoices     = "invoices"
	keySubscription = "subscription"
	keyVault        = "payment-credentials"
)

// DefaultWorkspaceID is the partition used when a caller omits the workspace id.
const DefaultWorkspaceID = "default"

// Store owns all state containers. A single mutex serializes mutations so each
// one runs to completion before the next, matching the event-at-a-time model the
// data contract assumes; persistence happens inside the same critical section.
type Store struct {
	mu      sync.Mutex
	backend kvstore.Backend
	logger  *zap.Logger

	workspaces   workspacesDocument
	settings     settingsDocument
	projects     projectsDocument
	invoices     invoicesDocument
	subscription subscriptionDocument

	// One-shot slot for a role change refused by the plan gate. Applied on the
	// first upgrade that satisfies the gate, then cleared. Never persisted.
	pendingRoleChange *RoleChange
}

// New creates a store with compiled-in defaults. Call Load to rehydrate.
func New(backend kvstore.Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend:      backend,
		logger:       logger,
		workspaces:   defaultWorkspacesDocument(),
		settings:     defaultSettingsDocument(),
		projects:     defaultProjectsDocument(),
		invoices:     defaultInvoicesDocument(),
		subscription: defaultSubscriptionDocument(),
	}
}

// Load rehydrates every document from the backend. Absent or unparseable
// documents fall back to defaults; loaded data goes through an idempotent
// normalization pass and, when it predates the partition scheme, a one-time
// migration of the legacy flat fields into the "default" partition. The legacy
// mirrors are refreshed for the current workspace before Load returns.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadWorkspaces(ctx)
	s.loadSettings(ctx)
	s.loadProjects(ctx)
	s.loadInvoices(ctx)
	s.loadSubscription(ctx)

	if s.workspaces.CurrentWorkspace != nil {
		id := s.workspaces.CurrentWorkspace.ID
		s.syncActiveSettings(id)
		s.syncActiveProjects(id)
	}
}
