package store

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"invoicehub/internal/kvstore"
)

// memBackend is an in-memory document backend for tests.
type memBackend struct {
	docs map[string][]byte
}

func newMemBackend() *memBackend {
	return &memBackend{docs: map[string][]byte{}}
}

func (m *memBackend) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := m.docs[key]
	if !ok {
		return nil, kvstore.ErrNotFound
	}
	return data, nil
}

func (m *memBackend) Put(_ context.Context, key string, value []byte) error {
	m.docs[key] = append([]byte(nil), value...)
	return nil
}

func (m *memBackend) Delete(_ context.Context, key string) error {
	delete(m.docs, key)
	return nil
}

func newTestStore(t *testing.T) (*Store, *memBackend) {
	t.Helper()
	backend := newMemBackend()
	s := New(backend, nil)
	s.Load(context.Background())
	return s, backend
}

// upgradeToPro lifts the FREE limits so tests can create extra workspaces.
func upgradeToPro(t *testing.T, s *Store) {
	t.Helper()
	if _, ok := s.ChangePlan(PlanPro, "test"); !ok {
		t.Fatal("ChangePlan(PRO) failed")
	}
}

func TestDefaultWorkspaceExists(t *testing.T) {
	s, _ := newTestStore(t)

	current := s.CurrentWorkspace()
	if current == nil {
		t.Fatal("expected a current workspace after load")
	}
	if current.ID != DefaultWorkspaceID {
		t.Fatalf("expected current workspace %q, got %q", DefaultWorkspaceID, current.ID)
	}
}

func TestCreateWorkspaceGatedByPlan(t *testing.T) {
	s, _ := newTestStore(t)

	// FREE allows a single workspace and the default one already exists.
	if _, err := s.CreateWorkspace("Second", "#fff", ""); !errors.Is(err, ErrPlanLimit) {
		t.Fatalf("expected ErrPlanLimit on FREE, got %v", err)
	}

	upgradeToPro(t, s)
	ws, err := s.CreateWorkspace("Second", "#fff", "")
	if err != nil {
		t.Fatalf("CreateWorkspace on PRO failed: %v", err)
	}
	if ws.ID == "" || ws.ID == DefaultWorkspaceID {
		t.Fatalf("unexpected workspace id %q", ws.ID)
	}
}

func TestProjectPartitionsAreIsolated(t *testing.T) {
	s, _ := newTestStore(t)
	upgradeToPro(t, s)

	ws, err := s.CreateWorkspace("Agency", "#0f0", "")
	if err != nil {
		t.Fatal(err)
	}

	p1 := s.CreateProject(DefaultWorkspaceID, NewProject{Name: "Site"})
	p2 := s.CreateProject(ws.ID, NewProject{Name: "Logo"})

	if got := s.Projects(DefaultWorkspaceID); len(got) != 1 || got[0].ID != p1.ID {
		t.Fatalf("default partition = %v, want only %s", got, p1.ID)
	}
	if got := s.Projects(ws.ID); len(got) != 1 || got[0].ID != p2.ID {
		t.Fatalf("%s partition = %v, want only %s", ws.ID, got, p2.ID)
	}
	if p1.WorkspaceID != DefaultWorkspaceID || p2.WorkspaceID != ws.ID {
		t.Fatalf("workspace ids not stamped: %q, %q", p1.WorkspaceID, p2.WorkspaceID)
	}
}

func TestMirrorTracksDefaultPartitionOnly(t *testing.T) {
	s, _ := newTestStore(t)
	upgradeToPro(t, s)

	ws, err := s.CreateWorkspace("Agency", "#0f0", "")
	if err != nil {
		t.Fatal(err)
	}

	s.CreateProject(DefaultWorkspaceID, NewProject{Name: "Site"})
	if got := s.ActiveProjects(); len(got) != 1 {
		t.Fatalf("mirror after default mutation = %d projects, want 1", len(got))
	}

	// Mutating another partition while "default" is active must not touch
	// the mirror.
	s.CreateProject(ws.ID, NewProject{Name: "Logo"})
	if got := s.ActiveProjects(); len(got) != 1 {
		t.Fatalf("mirror after foreign mutation = %d projects, want 1", len(got))
	}
}

func TestWorkspaceSwitchSyncsMirrorAndResetsFilters(t *testing.T) {
	s, _ := newTestStore(t)
	upgradeToPro(t, s)

	ws, err := s.CreateWorkspace("Agency", "#0f0", "")
	if err != nil {
		t.Fatal(err)
	}
	s.CreateProject(DefaultWorkspaceID, NewProject{Name: "Site"})
	other := s.CreateProject(ws.ID, NewProject{Name: "Logo"})

	s.SetProjectFilters(ProjectFilters{Status: string(StatusCompleted), SearchQuery: "site"})

	if !s.SetCurrentWorkspace(ws.ID) {
		t.Fatal("SetCurrentWorkspace failed")
	}
	got := s.ActiveProjects()
	if len(got) != 1 || got[0].ID != other.ID {
		t.Fatalf("mirror after switch = %v, want only %s", got, other.ID)
	}
	f := s.ProjectFilters()
	if f.Status != FilterAll || f.ServiceType != FilterAll || f.Priority != FilterAll || f.SearchQuery != "" {
		t.Fatalf("filters not reset after switch: %+v", f)
	}
}

func TestSwitchToMissingWorkspaceIsNoop(t *testing.T) {
	s, _ := newTestStore(t)

	if s.SetCurrentWorkspace("nope") {
		t.Fatal("expected switch to unknown workspace to report false")
	}
	if current := s.CurrentWorkspace(); current == nil || current.ID != DefaultWorkspaceID {
		t.Fatalf("current workspace changed unexpectedly: %v", current)
	}
}

func TestDeleteCurrentWorkspaceFallsBack(t *testing.T) {
	s, _ := newTestStore(t)
	upgradeToPro(t, s)

	ws, err := s.CreateWorkspace("Agency", "#0f0", "")
	if err != nil {
		t.Fatal(err)
	}
	if !s.SetCurrentWorkspace(ws.ID) {
		t.Fatal("switch failed")
	}
	if !s.DeleteWorkspace(ws.ID) {
		t.Fatal("delete failed")
	}
	current := s.CurrentWorkspace()
	if current == nil || current.ID != DefaultWorkspaceID {
		t.Fatalf("expected fallback to default workspace, got %v", current)
	}
}

func TestPersistedProjectsDropTransientFilters(t *testing.T) {
	s, backend := newTestStore(t)

	s.SetProjectFilters(ProjectFilters{Status: string(StatusActive), SearchQuery: "web"})
	s.CreateProject(DefaultWorkspaceID, NewProject{Name: "Site"})

	var doc projectsDocument
	if err := json.Unmarshal(backend.docs[keyProjects], &doc); err != nil {
		t.Fatalf("persisted projects document unparseable: %v", err)
	}
	if doc.Filter != FilterAll || doc.ServiceTypeFilter != FilterAll || doc.PriorityFilter != FilterAll || doc.SearchQuery != "" {
		t.Fatalf("persisted filters not defaulted: %+v", doc)
	}
	// The live filter state is untouched by persistence.
	if f := s.ProjectFilters(); f.Status != string(StatusActive) || f.SearchQuery != "web" {
		t.Fatalf("live filters changed by persist: %+v", f)
	}
}

func TestReloadRoundTrip(t *testing.T) {
	s, backend := newTestStore(t)

	p := s.CreateProject(DefaultWorkspaceID, NewProject{Name: "Site", HoursEstimated: 10})
	s.LogHours(DefaultWorkspaceID, p.ID, 3, "setup")
	s.CreateInvoice(DefaultWorkspaceID, "ACME", "Site work", 1200)

	reloaded := New(backend, nil)
	reloaded.Load(context.Background())

	projects := reloaded.Projects(DefaultWorkspaceID)
	if len(projects) != 1 || projects[0].HoursLogged != 3 {
		t.Fatalf("projects after reload = %+v", projects)
	}
	invoices := reloaded.Invoices(DefaultWorkspaceID)
	if len(invoices) != 1 || invoices[0].ClientName != "ACME" {
		t.Fatalf("invoices after reload = %+v", invoices)
	}
}

func TestLegacyProjectsMigrateOnce(t *testing.T) {
	backend := newMemBackend()
	legacy := `{"projects":[{"id":"PRJ-0001","name":"Old","status":"active"}]}`
	backend.docs[keyProjects] = []byte(legacy)

	s := New(backend, nil)
	s.Load(context.Background())

	projects := s.Projects(DefaultWorkspaceID)
	if len(projects) != 1 || projects[0].ID != "PRJ-0001" {
		t.Fatalf("legacy project not migrated: %+v", projects)
	}
	if projects[0].WorkspaceID != DefaultWorkspaceID {
		t.Fatalf("migrated project missing workspace id: %+v", projects[0])
	}

	// Persist the partitioned form, then reload: no duplication.
	s.LogHours(DefaultWorkspaceID, "PRJ-0001", 1, "")
	again := New(backend, nil)
	again.Load(context.Background())
	if got := again.Projects(DefaultWorkspaceID); len(got) != 1 {
		t.Fatalf("migration ran twice, got %d projects", len(got))
	}
}

func TestLegacySettingsMigrate(t *testing.T) {
	backend := newMemBackend()
	backend.docs[keySettings] = []byte(`{"business":{"name":"Old Studio"}}`)

	s := New(backend, nil)
	s.Load(context.Background())

	settings := s.WorkspaceSettings(DefaultWorkspaceID)
	if settings.Business.Name != "Old Studio" {
		t.Fatalf("legacy business info not migrated: %+v", settings.Business)
	}
	// Normalization fills the gaps the legacy blob never had.
	if settings.Currency.Code != "USD" || settings.Language != "en" {
		t.Fatalf("migrated settings not normalized: %+v", settings)
	}
}

func TestLoadNormalizesProjects(t *testing.T) {
	backend := newMemBackend()
	backend.docs[keyProjects] = []byte(`{"workspaceProjects":{"default":[
		{"id":"PRJ-0001","name":"Raw","priority":"critical","hoursEstimated":-2}
	]}}`)

	s := New(backend, nil)
	s.Load(context.Background())

	projects := s.Projects(DefaultWorkspaceID)
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	p := projects[0]
	if p.Priority != PriorityMedium {
		t.Fatalf("invalid priority not coerced: %q", p.Priority)
	}
	if p.HoursEstimated != 0 {
		t.Fatalf("negative estimate not zeroed: %v", p.HoursEstimated)
	}
	if p.HoursLogs == nil || p.ServiceTypes == nil || p.Invoices == nil || p.Tasks == nil {
		t.Fatal("nil collections not normalized to empty")
	}
	if p.WorkspaceID != DefaultWorkspaceID {
		t.Fatalf("workspace id not backfilled from partition key: %q", p.WorkspaceID)
	}
}

func TestCorruptDocumentFallsBackToDefaults(t *testing.T) {
	backend := newMemBackend()
	backend.docs[keySettings] = []byte(`{not json`)

	s := New(backend, nil)
	s.Load(context.Background())

	settings := s.WorkspaceSettings(DefaultWorkspaceID)
	if settings.Currency.Code != "USD" || len(settings.ServiceTypes) != len(defaultServiceTypes) {
		t.Fatalf("corrupt settings did not fall back to defaults: %+v", settings)
	}
}

func TestLogHoursAccumulates(t *testing.T) {
	s, _ := newTestStore(t)

	p := s.CreateProject(DefaultWorkspaceID, NewProject{Name: "Site", HoursEstimated: 10})
	if !s.LogHours(DefaultWorkspaceID, p.ID, 4, "design") {
		t.Fatal("first LogHours failed")
	}
	if !s.LogHours(DefaultWorkspaceID, p.ID, 4, "build") {
		t.Fatal("second LogHours failed")
	}

	got, _ := s.GetProject(DefaultWorkspaceID, p.ID)
	if got.HoursLogged != 8 {
		t.Fatalf("hoursLogged = %v, want 8", got.HoursLogged)
	}
	if len(got.HoursLogs) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(got.HoursLogs))
	}
	if pct := got.Progress(); pct != 80 {
		t.Fatalf("progress = %v, want 80", pct)
	}
}

func TestProgressCapsAtHundred(t *testing.T) {
	p := Project{HoursEstimated: 5, HoursLogged: 12}
	if pct := p.Progress(); pct != 100 {
		t.Fatalf("progress = %v, want 100", pct)
	}
	p = Project{HoursLogged: 12}
	if pct := p.Progress(); pct != 0 {
		t.Fatalf("progress without estimate = %v, want 0", pct)
	}
}

func TestLogHoursOnMissingProject(t *testing.T) {
	s, _ := newTestStore(t)
	if s.LogHours(DefaultWorkspaceID, "PRJ-9999", 2, "") {
		t.Fatal("expected LogHours on missing project to report false")
	}
	if s.LogHours(DefaultWorkspaceID, "PRJ-9999", -2, "") {
		t.Fatal("expected negative hours to report false")
	}
}

func TestLogHoursRejectsNonFiniteValues(t *testing.T) {
	s, _ := newTestStore(t)
	p := s.CreateProject(DefaultWorkspaceID, NewProject{Name: "Site", HoursEstimated: 10})

	for _, hours := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if s.LogHours(DefaultWorkspaceID, p.ID, hours, "") {
			t.Fatalf("LogHours accepted %v", hours)
		}
	}
	got, _ := s.GetProject(DefaultWorkspaceID, p.ID)
	if got.HoursLogged != 0 || len(got.HoursLogs) != 0 {
		t.Fatalf("non-finite hours recorded: %+v", got)
	}
}

func TestTaskLifecycle(t *testing.T) {
	s, _ := newTestStore(t)
	p := s.CreateProject(DefaultWorkspaceID, NewProject{Name: "Site"})

	task, ok := s.AddTask(DefaultWorkspaceID, p.ID, "Wireframes", "", PriorityHigh)
	if !ok {
		t.Fatal("AddTask failed")
	}
	if task.Status != TaskTodo {
		t.Fatalf("new task status = %q, want todo", task.Status)
	}
	if !s.UpdateTask(DefaultWorkspaceID, p.ID, task.ID, "", "", TaskDone, "") {
		t.Fatal("UpdateTask failed")
	}
	got, _ := s.GetProject(DefaultWorkspaceID, p.ID)
	if got.Tasks[0].Status != TaskDone {
		t.Fatalf("task status = %q, want done", got.Tasks[0].Status)
	}
	if got.Tasks[0].Priority != PriorityHigh {
		t.Fatalf("task priority clobbered: %q", got.Tasks[0].Priority)
	}
	if !s.DeleteTask(DefaultWorkspaceID, p.ID, task.ID) {
		t.Fatal("DeleteTask failed")
	}
	if s.UpdateTask(DefaultWorkspaceID, p.ID, task.ID, "x", "", "", "") {
		t.Fatal("expected update of deleted task to report false")
	}
}

func TestProjectNumbersUniqueAcrossPartitions(t *testing.T) {
	s, _ := newTestStore(t)
	upgradeToPro(t, s)
	ws, _ := s.CreateWorkspace("Agency", "#0f0", "")

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		seen[s.CreateProject(DefaultWorkspaceID, NewProject{Name: "A"}).ID] = true
		seen[s.CreateProject(ws.ID, NewProject{Name: "B"}).ID] = true
	}
	if len(seen) != 6 {
		t.Fatalf("expected 6 unique project numbers, got %d", len(seen))
	}
}

func TestDefaultServiceTypesCannotBeRemoved(t *testing.T) {
	s, _ := newTestStore(t)

	before := s.WorkspaceSettings(DefaultWorkspaceID).ServiceTypes
	removed, err := s.RemoveServiceType(DefaultWorkspaceID, "development")
	if !errors.Is(err, ErrDefaultServiceType) {
		t.Fatalf("expected ErrDefaultServiceType, got %v", err)
	}
	if removed {
		t.Fatal("built-in service type reported as removed")
	}
	after := s.WorkspaceSettings(DefaultWorkspaceID).ServiceTypes
	if len(after) != len(before) {
		t.Fatalf("service type list changed: %d -> %d", len(before), len(after))
	}
}

func TestCustomServiceTypes(t *testing.T) {
	s, _ := newTestStore(t)

	if !s.AddServiceType(DefaultWorkspaceID, "video", "Video Production") {
		t.Fatal("AddServiceType failed")
	}
	if s.AddServiceType(DefaultWorkspaceID, "video", "Duplicate") {
		t.Fatal("duplicate id accepted")
	}
	removed, err := s.RemoveServiceType(DefaultWorkspaceID, "video")
	if err != nil || !removed {
		t.Fatalf("RemoveServiceType = %v, %v", removed, err)
	}
	removed, err = s.RemoveServiceType(DefaultWorkspaceID, "video")
	if err != nil || removed {
		t.Fatalf("expected missing type to be a no-op, got %v, %v", removed, err)
	}
}

func TestSetCurrency(t *testing.T) {
	s, _ := newTestStore(t)

	if !s.SetCurrency(DefaultWorkspaceID, "EUR") {
		t.Fatal("SetCurrency(EUR) failed")
	}
	if got := s.WorkspaceSettings(DefaultWorkspaceID).Currency.Code; got != "EUR" {
		t.Fatalf("currency = %q, want EUR", got)
	}
	if s.SetCurrency(DefaultWorkspaceID, "XXX") {
		t.Fatal("unknown currency code accepted")
	}
	if got := s.WorkspaceSettings(DefaultWorkspaceID).Currency.Code; got != "EUR" {
		t.Fatalf("currency changed by rejected code: %q", got)
	}
}

func TestSettingsMirrorFollowsDefaultPartition(t *testing.T) {
	s, _ := newTestStore(t)
	upgradeToPro(t, s)
	ws, _ := s.CreateWorkspace("Agency", "#0f0", "")

	s.UpdateBusinessInfo(DefaultWorkspaceID, BusinessInfo{Name: "Solo Studio"})
	if s.settings.Settings.Business.Name != "Solo Studio" {
		t.Fatalf("mirror not refreshed on default mutation: %+v", s.settings.Settings.Business)
	}

	s.UpdateBusinessInfo(ws.ID, BusinessInfo{Name: "Agency Inc"})
	if s.settings.Settings.Business.Name != "Solo Studio" {
		t.Fatal("mirror refreshed by a non-default mutation")
	}

	s.SetCurrentWorkspace(ws.ID)
	if s.settings.Settings.Business.Name != "Agency Inc" {
		t.Fatalf("mirror not refreshed on switch: %+v", s.settings.Settings.Business)
	}
}

func TestAddMemberGates(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.AddMember(DefaultWorkspaceID, "Ann", "ann@x.io", RoleOwner); err != nil {
		t.Fatalf("adding owner failed: %v", err)
	}
	// FREE allows one admin-level member; the owner fills that slot.
	if _, err := s.AddMember(DefaultWorkspaceID, "Bob", "bob@x.io", RoleAdmin); !errors.Is(err, ErrPlanLimit) {
		t.Fatalf("expected ErrPlanLimit for second admin, got %v", err)
	}
	if _, err := s.AddMember(DefaultWorkspaceID, "Bob", "bob@x.io", RoleMember); err != nil {
		t.Fatalf("adding member failed: %v", err)
	}
	if _, err := s.AddMember(DefaultWorkspaceID, "Cai", "cai@x.io", RoleViewer); err != nil {
		t.Fatalf("adding viewer failed: %v", err)
	}
	// FREE caps members at three.
	if _, err := s.AddMember(DefaultWorkspaceID, "Dee", "dee@x.io", RoleViewer); !errors.Is(err, ErrPlanLimit) {
		t.Fatalf("expected ErrPlanLimit for fourth member, got %v", err)
	}
	if _, err := s.AddMember(DefaultWorkspaceID, "Eve", "eve@x.io", Role("KING")); err == nil {
		t.Fatal("invalid role accepted")
	}
}

func TestSoleOwnerProtection(t *testing.T) {
	s, _ := newTestStore(t)

	owner, err := s.AddMember(DefaultWorkspaceID, "Ann", "ann@x.io", RoleOwner)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.RemoveMember(DefaultWorkspaceID, owner.ID); !errors.Is(err, ErrSoleOwner) {
		t.Fatalf("expected ErrSoleOwner on remove, got %v", err)
	}
	if _, err := s.SetMemberRole(DefaultWorkspaceID, owner.ID, RoleMember); !errors.Is(err, ErrSoleOwner) {
		t.Fatalf("expected ErrSoleOwner on demote, got %v", err)
	}
	if got := s.Members(DefaultWorkspaceID); len(got) != 1 || got[0].Role != RoleOwner {
		t.Fatalf("owner changed despite protection: %+v", got)
	}
}

func TestRemoveMissingMemberIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	removed, err := s.RemoveMember(DefaultWorkspaceID, "nobody")
	if err != nil || removed {
		t.Fatalf("RemoveMember(missing) = %v, %v; want false, nil", removed, err)
	}
}

func TestRoleElevationDefersAndAppliesOnUpgrade(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.AddMember(DefaultWorkspaceID, "Ann", "ann@x.io", RoleOwner); err != nil {
		t.Fatal(err)
	}
	bob, err := s.AddMember(DefaultWorkspaceID, "Bob", "bob@x.io", RoleMember)
	if err != nil {
		t.Fatal(err)
	}

	outcome, err := s.SetMemberRole(DefaultWorkspaceID, bob.ID, RoleAdmin)
	if outcome != RoleDeferred || !errors.Is(err, ErrPlanLimit) {
		t.Fatalf("SetMemberRole = %v, %v; want deferred + ErrPlanLimit", outcome, err)
	}
	pending := s.PendingRoleChange()
	if pending == nil || pending.MemberID != bob.ID || pending.Role != RoleAdmin {
		t.Fatalf("pending change = %+v", pending)
	}

	// Upgrading applies the held change exactly once.
	if _, ok := s.ChangePlan(PlanPro, "ann@x.io"); !ok {
		t.Fatal("ChangePlan failed")
	}
	if s.PendingRoleChange() != nil {
		t.Fatal("pending slot not cleared after upgrade")
	}
	for _, m := range s.Members(DefaultWorkspaceID) {
		if m.ID == bob.ID && m.Role != RoleAdmin {
			t.Fatalf("deferred role not applied, got %q", m.Role)
		}
	}
}

func TestCancelPendingRoleChange(t *testing.T) {
	s, _ := newTestStore(t)

	s.AddMember(DefaultWorkspaceID, "Ann", "ann@x.io", RoleOwner)
	bob, _ := s.AddMember(DefaultWorkspaceID, "Bob", "bob@x.io", RoleMember)
	s.SetMemberRole(DefaultWorkspaceID, bob.ID, RoleAdmin)

	s.CancelPendingRoleChange()
	if s.PendingRoleChange() != nil {
		t.Fatal("pending change survived cancel")
	}

	s.ChangePlan(PlanPro, "")
	for _, m := range s.Members(DefaultWorkspaceID) {
		if m.ID == bob.ID && m.Role != RoleMember {
			t.Fatalf("canceled change applied anyway, got %q", m.Role)
		}
	}
}

func TestSetRoleOnMissingMember(t *testing.T) {
	s, _ := newTestStore(t)
	outcome, err := s.SetMemberRole(DefaultWorkspaceID, "nobody", RoleAdmin)
	if outcome != RoleNotFound || err != nil {
		t.Fatalf("SetMemberRole(missing) = %v, %v; want not-found, nil", outcome, err)
	}
}

func TestChangePlanToSamePlanIsNoop(t *testing.T) {
	s, _ := newTestStore(t)

	sub, ok := s.ChangePlan(PlanFree, "")
	if !ok {
		t.Fatal("ChangePlan(FREE) failed")
	}
	if len(sub.SubscriptionHistory) != 0 {
		t.Fatalf("no-op plan change logged history: %+v", sub.SubscriptionHistory)
	}
	if _, ok := s.ChangePlan(Plan("GOLD"), ""); ok {
		t.Fatal("unknown plan accepted")
	}
}

func TestStartTrial(t *testing.T) {
	s, _ := newTestStore(t)

	sub, ok := s.StartTrial(PlanBusiness, 14, "ann@x.io")
	if !ok {
		t.Fatal("StartTrial failed")
	}
	if !sub.IsTrialActive || sub.TrialEndsAt == nil {
		t.Fatalf("trial state = %+v", sub)
	}
	if sub.PlanDetails.MaxWorkspaces != Unlimited {
		t.Fatalf("trial did not apply plan limits: %+v", sub.PlanDetails)
	}

	// A plan change ends the trial.
	sub, _ = s.ChangePlan(PlanFree, "")
	if sub.IsTrialActive || sub.TrialEndsAt != nil {
		t.Fatalf("trial survived plan change: %+v", sub)
	}
}

func TestStoredPlanLimitsAreRederived(t *testing.T) {
	backend := newMemBackend()
	// Tampered limits on a FREE plan must be ignored on load.
	backend.docs[keySubscription] = []byte(`{"currentPlan":"FREE","planDetails":{"maxAdmins":99,"maxMembers":99,"maxWorkspaces":99}}`)

	s := New(backend, nil)
	s.Load(context.Background())

	sub := s.Subscription()
	if sub.PlanDetails != planTable[PlanFree] {
		t.Fatalf("plan details not re-derived: %+v", sub.PlanDetails)
	}
}

func TestInvoiceLifecycle(t *testing.T) {
	s, _ := newTestStore(t)

	inv := s.CreateInvoice(DefaultWorkspaceID, "ACME", "Site build", 1500)
	if inv.Status != InvoiceDraft {
		t.Fatalf("new invoice status = %q, want draft", inv.Status)
	}
	if inv.ID != "INV-0001" {
		t.Fatalf("invoice id = %q, want INV-0001", inv.ID)
	}
	if !s.SetInvoiceStatus(inv.ID, InvoicePaid) {
		t.Fatal("SetInvoiceStatus failed")
	}
	got, _ := s.GetInvoice(inv.ID)
	if got.Status != InvoicePaid {
		t.Fatalf("status = %q, want paid", got.Status)
	}
	if s.SetInvoiceStatus("INV-9999", InvoicePaid) {
		t.Fatal("missing invoice reported as updated")
	}
	if !s.DeleteInvoice(inv.ID) {
		t.Fatal("DeleteInvoice failed")
	}
}

func TestUpdateInvoice(t *testing.T) {
	s, _ := newTestStore(t)

	inv := s.CreateInvoice(DefaultWorkspaceID, "ACME", "Site", 100)
	if !s.UpdateInvoice(inv.ID, "Globex", "", 250) {
		t.Fatal("UpdateInvoice failed")
	}
	got, _ := s.GetInvoice(inv.ID)
	if got.ClientName != "Globex" || got.Total != 250 {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.ProjectDescription != "Site" {
		t.Fatalf("empty field clobbered description: %q", got.ProjectDescription)
	}
	// A negative total means "leave unchanged".
	s.UpdateInvoice(inv.ID, "", "", -1)
	got, _ = s.GetInvoice(inv.ID)
	if got.Total != 250 {
		t.Fatalf("negative total applied: %v", got.Total)
	}
	if s.UpdateInvoice("INV-9999", "X", "", 1) {
		t.Fatal("missing invoice reported as updated")
	}
}

func TestSetActiveWorkspaceSettingsSyncsMirror(t *testing.T) {
	s, _ := newTestStore(t)
	upgradeToPro(t, s)
	ws, _ := s.CreateWorkspace("Agency", "#0f0", "")
	s.UpdateBusinessInfo(ws.ID, BusinessInfo{Name: "Agency Inc"})

	s.SetActiveWorkspaceSettings(ws.ID)
	if s.settings.Settings.Business.Name != "Agency Inc" {
		t.Fatalf("mirror not synced: %+v", s.settings.Settings.Business)
	}
}

func TestProjectInvoiceTotalSkipsDanglingRefs(t *testing.T) {
	s, _ := newTestStore(t)

	p := s.CreateProject(DefaultWorkspaceID, NewProject{Name: "Site"})
	a := s.CreateInvoice(DefaultWorkspaceID, "ACME", "", 1000)
	b := s.CreateInvoice(DefaultWorkspaceID, "ACME", "", 500)
	s.LinkInvoice(DefaultWorkspaceID, p.ID, a.ID)
	s.LinkInvoice(DefaultWorkspaceID, p.ID, b.ID)
	s.LinkInvoice(DefaultWorkspaceID, p.ID, b.ID) // set semantics

	total, ok := s.ProjectInvoiceTotal(DefaultWorkspaceID, p.ID)
	if !ok || total != 1500 {
		t.Fatalf("total = %v, %v; want 1500", total, ok)
	}

	// Deleting an invoice leaves a dangling reference behind; the join
	// skips it.
	s.DeleteInvoice(b.ID)
	total, ok = s.ProjectInvoiceTotal(DefaultWorkspaceID, p.ID)
	if !ok || total != 1000 {
		t.Fatalf("total after delete = %v, %v; want 1000", total, ok)
	}
	got, _ := s.GetProject(DefaultWorkspaceID, p.ID)
	if len(got.Invoices) != 2 {
		t.Fatalf("project references pruned unexpectedly: %v", got.Invoices)
	}
}
