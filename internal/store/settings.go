package store

// Currency identifies the active billing currency.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// ServiceType is a user-customizable label for billable work.
type ServiceType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BusinessInfo is the business identity shown on invoices.
type BusinessInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	TaxID   string `json:"taxId"`
	Address string `json:"address"`
}

// PaymentDetails are the bank coordinates printed on invoices. A sealed copy
// can additionally live in the vault, see vault.go.
type PaymentDetails struct {
	BankName string `json:"bankName"`
	IBAN     string `json:"iban"`
	SwiftBIC string `json:"swiftBic"`
}

// Automation holds the invoice-automation parameters.
type Automation struct {
	Enabled           bool    `json:"enabled"`
	MonthEndInvoicing bool    `json:"monthEndInvoicing"`
	DefaultHourlyRate float64 `json:"defaultHourlyRate"`
	PaymentTermsDays  int     `json:"paymentTermsDays"`
}

// Settings is one workspace's configuration.
type Settings struct {
	Business     BusinessInfo   `json:"business"`
	Payment      PaymentDetails `json:"payment"`
	Currency     Currency       `json:"currency"`
	ServiceTypes []ServiceType  `json:"serviceTypes"`
	Automation   Automation     `json:"automation"`
	Language     string         `json:"language"`
}

// settingsDocument embeds Settings as the legacy top-level mirror of the
// active workspace, next to the partition map.
type settingsDocument struct {
	Settings
	WorkspaceSettings   map[string]*Settings `json:"workspaceSettings"`
	AvailableCurrencies []Currency           `json:"availableCurrencies"`
}

// Built-in service types; these ids can never be removed.
var defaultServiceTypes = []ServiceType{
	{ID: "web-design", Name: "Web Design"},
	{ID: "graphic-design", Name: "Graphic Design"},
	{ID: "development", Name: "Development"},
	{ID: "consulting", Name: "Consulting"},
	{ID: "marketing", Name: "Marketing"},
	{ID: "other", Name: "Other"},
}

func isDefaultServiceType(id string) bool {
	for _, st := range defaultServiceTypes {
		if st.ID == id {
			return true
		}
	}
	return false
}

var defaultCurrency = Currency{Code: "USD", Symbol: "$", Name: "US Dollar"}

var defaultCurrencies = []Currency{
	defaultCurrency,
	{Code: "EUR", Symbol: "€", Name: "Euro"},
	{Code: "GBP", Symbol: "£", Name: "British Pound"},
	{Code: "CHF", Symbol: "CHF", Name: "Swiss Franc"},
	{Code: "CAD", Symbol: "C$", Name: "Canadian Dollar"},
	{Code: "AUD", Symbol: "A$", Name: "Australian Dollar"},
	{Code: "JPY", Symbol: "¥", Name: "Japanese Yen"},
}

// defaultSettings returns the full default shape; lazily created partitions
// always start from this, never from a partial object.
func defaultSettings() *Settings {
	types := make([]ServiceType, len(defaultServiceTypes))
	copy(types, defaultServiceTypes)
	return &Settings{
		Currency:     defaultCurrency,
		ServiceTypes: types,
		Automation: Automation{
			DefaultHourlyRate: 50,
			PaymentTermsDays:  30,
		},
		Language: "en",
	}
}

func defaultSettingsDocument() settingsDocument {
	return settingsDocument{
		Settings:            *defaultSettings(),
		WorkspaceSettings:   map[string]*Settings{DefaultWorkspaceID: defaultSettings()},
		AvailableCurrencies: defaultCurrencies,
	}
}

// migrateSettingsDocument moves pre-partition data into the "default"
// partition. Guarded by the absence of the partition map so repeated loads
// never duplicate anything.
func migrateSettingsDocument(doc *settingsDocument) {
	if doc.WorkspaceSettings != nil {
		return
	}
	legacy := doc.Settings
	doc.WorkspaceSettings = map[string]*Settings{DefaultWorkspaceID: &legacy}
}

func normalizeSettings(st *Settings) {
	if st.ServiceTypes == nil {
		st.ServiceTypes = []ServiceType{}
	}
	if st.Currency == (Currency{}) {
		st.Currency = defaultCurrency
	}
	if st.Language == "" {
		st.Language = "en"
	}
	if st.Automation.PaymentTermsDays <= 0 {
		st.Automation.PaymentTermsDays = 30
	}
}

func normalizeSettingsDocument(doc *settingsDocument) {
	normalizeSettings(&doc.Settings)
	for id, st := range doc.WorkspaceSettings {
		if st == nil {
			doc.WorkspaceSettings[id] = defaultSettings()
			continue
		}
		normalizeSettings(st)
	}
	if len(doc.AvailableCurrencies) == 0 {
		doc.AvailableCurrencies = defaultCurrencies
	}
}

// ensureSettingsLocked returns the partition for a workspace, creating it with
// full defaults on first access. Empty ids address the default partition.
func (s *Store) ensureSettingsLocked(workspaceID string) (*Settings, string) {
	if workspaceID == "" {
		workspaceID = DefaultWorkspaceID
	}
	st, ok := s.settings.WorkspaceSettings[workspaceID]
	if !ok {
		st = defaultSettings()
		s.settings.WorkspaceSettings[workspaceID] = st
	}
	return st, workspaceID
}

// syncSettingsMirrorLocked replicates the default partition into the legacy
// top-level fields. Runs inside the same mutation, never lazily.
func (s *Store) syncSettingsMirrorLocked(workspaceID string) {
	if workspaceID != DefaultWorkspaceID {
		return
	}
	if st, ok := s.settings.WorkspaceSettings[DefaultWorkspaceID]; ok {
		s.settings.Settings = *st
	}
}

// syncActiveSettings is the active-workspace synchronizer: it lazily creates
// the partition and copies it into the legacy mirror.
func (s *Store) syncActiveSettings(workspaceID string) {
	st, _ := s.ensureSettingsLocked(workspaceID)
	s.settings.Settings = *st
}

// SetActiveWorkspaceSettings runs the synchronizer for callers outside a
// workspace switch (e.g. initial load of a single container).
func (s *Store) SetActiveWorkspaceSettings(workspaceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncActiveSettings(workspaceID)
}

// WorkspaceSettings returns a copy of a workspace's settings, creating the
// partition when absent.
func (s *Store) WorkspaceSettings(workspaceID string) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, _ := s.ensureSettingsLocked(workspaceID)
	out := *st
	out.ServiceTypes = append([]ServiceType(nil), st.ServiceTypes...)
	return out
}

// AvailableCurrencies lists the currencies the UI can pick from.
func (s *Store) AvailableCurrencies() []Currency {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Currency, len(s.settings.AvailableCurrencies))
	copy(out, s.settings.AvailableCurrencies)
	return out
}

// UpdateBusinessInfo replaces the business identity of a workspace.
func (s *Store) UpdateBusinessInfo(workspaceID string, info BusinessInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, id := s.ensureSettingsLocked(workspaceID)
	st.Business = info
	s.syncSettingsMirrorLocked(id)
	s.persistSettings()
}

// UpdatePaymentDetails replaces the bank coordinates of a workspace.
func (s *Store) UpdatePaymentDetails(workspaceID string, details PaymentDetails) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, id := s.ensureSettingsLocked(workspaceID)
	st.Payment = details
	s.syncSettingsMirrorLocked(id)
	s.persistSettings()
}

// SetCurrency switches the active currency. Unknown codes are a no-op.
func (s *Store) SetCurrency(workspaceID, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	var currency *Currency
	for i := range s.settings.AvailableCurrencies {
		if s.settings.AvailableCurrencies[i].Code == code {
			currency = &s.settings.AvailableCurrencies[i]
			break
		}
	}
	if currency == nil {
		return false
	}
	st, id := s.ensureSettingsLocked(workspaceID)
	st.Currency = *currency
	s.syncSettingsMirrorLocked(id)
	s.persistSettings()
	return true
}

// AddServiceType appends a user-defined service type, unique by id.
func (s *Store) AddServiceType(workspaceID, typeID, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, id := s.ensureSettingsLocked(workspaceID)
	for _, existing := range st.ServiceTypes {
		if existing.ID == typeID {
			return false
		}
	}
	st.ServiceTypes = append(st.ServiceTypes, ServiceType{ID: typeID, Name: name})
	s.syncSettingsMirrorLocked(id)
	s.persistSettings()
	return true
}

// RemoveServiceType deletes a user-added service type. Built-in ids are
// refused and the list stays unchanged.
func (s *Store) RemoveServiceType(workspaceID, typeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if isDefaultServiceType(typeID) {
		return false, ErrDefaultServiceType
	}
	st, id := s.ensureSettingsLocked(workspaceID)
	for i := range st.ServiceTypes {
		if st.ServiceTypes[i].ID == typeID {
			st.ServiceTypes = append(st.ServiceTypes[:i], st.ServiceTypes[i+1:]...)
			s.syncSettingsMirrorLocked(id)
			s.persistSettings()
			return true, nil
		}
	}
	return false, nil
}

// UpdateAutomation replaces the invoice-automation parameters.
func (s *Store) UpdateAutomation(workspaceID string, a Automation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, id := s.ensureSettingsLocked(workspaceID)
	st.Automation = a
	s.syncSettingsMirrorLocked(id)
	s.persistSettings()
}

// SetLanguage sets the workspace language code.
func (s *Store) SetLanguage(workspaceID, lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, id := s.ensureSettingsLocked(workspaceID)
	st.Language = lang
	s.syncSettingsMirrorLocked(id)
	s.persistSettings()
}
