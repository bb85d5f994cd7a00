package store

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"invoicehub/internal/kvstore"
)

// persist serializes a document and writes it under its key. Failures are
// logged and swallowed: the in-memory mutation is kept so the session keeps
// working, at the cost of losing it on a restart.
func (s *Store) persist(key string, doc any) {
	data, err := json.Marshal(doc)
	if err != nil {
		s.logger.Warn("failed to serialize document", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.backend.Put(context.Background(), key, data); err != nil {
		s.logger.Warn("failed to persist document", zap.String("key", key), zap.Error(err))
	}
}

func (s *Store) persistWorkspaces() { s.persist(keyWorkspaces, s.workspaces) }
func (s *Store) persistSettings()   { s.persist(keySettings, s.settings) }
func (s *Store) persistInvoices()   { s.persist(keyInvoices, s.invoices) }
func (s *Store) persistSubscription() {
	s.persist(keySubscription, s.subscription)
}

// persistProjects strips the transient filter fields before serializing, so a
// reload never resumes with a stale filter hiding all data.
func (s *Store) persistProjects() {
	snapshot := s.projects
	snapshot.Filter = FilterAll
	snapshot.ServiceTypeFilter = FilterAll
	snapshot.PriorityFilter = FilterAll
	snapshot.SearchQuery = ""
	s.persist(keyProjects, snapshot)
}

// loadDocument reads a key into dst. Returns false when the document is absent
// or unparseable, in which case dst is left untouched and the caller keeps the
// compiled-in defaults.
func (s *Store) loadDocument(ctx context.Context, key string, dst any) bool {
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		if err != kvstore.ErrNotFound {
			s.logger.Warn("failed to read document", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("stored document is unparseable, using defaults",
			zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// The loaders unmarshal into a zero-value document, not a pre-populated
// default one: the migration guard is the absence of the partition map, and a
// pre-seeded map would mask it. Defaults apply only when the document is
// absent or unparseable.

func (s *Store) loadWorkspaces(ctx context.Context) {
	var doc workspacesDocument
	if !s.loadDocument(ctx, keyWorkspaces, &doc) {
		s.workspaces = defaultWorkspacesDocument()
		return
	}
	normalizeWorkspacesDocument(&doc)
	s.workspaces = doc
}

func (s *Store) loadSettings(ctx context.Context) {
	var doc settingsDocument
	if !s.loadDocument(ctx, keySettings, &doc) {
		s.settings = defaultSettingsDocument()
		return
	}
	migrateSettingsDocument(&doc)
	normalizeSettingsDocument(&doc)
	s.settings = doc
}

func (s *Store) loadProjects(ctx context.Context) {
	var doc projectsDocument
	if !s.loadDocument(ctx, keyProjects, &doc) {
		s.projects = defaultProjectsDocument()
		return
	}
	migrateProjectsDocument(&doc)
	normalizeProjectsDocument(&doc)
	s.projects = doc
}

func (s *Store) loadInvoices(ctx context.Context) {
	var doc invoicesDocument
	if !s.loadDocument(ctx, keyInvoices, &doc) {
		s.invoices = defaultInvoicesDocument()
		return
	}
	normalizeInvoicesDocument(&doc)
	s.invoices = doc
}

func (s *Store) loadSubscription(ctx context.Context) {
	var doc subscriptionDocument
	if !s.loadDocument(ctx, keySubscription, &doc) {
		s.subscription = defaultSubscriptionDocument()
		return
	}
	normalizeSubscriptionDocument(&doc)
	s.subscription = doc
}
