package store

import (
	"fmt"
	"time"
)

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoicePending InvoiceStatus = "pending"
	InvoicePaid    InvoiceStatus = "paid"
)

// ValidInvoiceStatus reports whether st is a known invoice status.
func ValidInvoiceStatus(st InvoiceStatus) bool {
	switch st {
	case InvoiceDraft, InvoicePending, InvoicePaid:
		return true
	}
	return false
}

// Invoice is referenced by projects through its id only (weak reference);
// totals are joined against this list.
type Invoice struct {
	ID                 string        `json:"id"`
	ClientName         string        `json:"clientName"`
	ProjectDescription string        `json:"projectDescription"`
	Total              float64       `json:"total"`
	Status             InvoiceStatus `json:"status"`
	CreatedAt          time.Time     `json:"createdAt"`
	WorkspaceID        string        `json:"workspaceId"`
}

type invoicesDocument struct {
	Invoices []Invoice `json:"invoices"`
}

func defaultInvoicesDocument() invoicesDocument {
	return invoicesDocument{Invoices: []Invoice{}}
}

func normalizeInvoicesDocument(doc *invoicesDocument) {
	if doc.Invoices == nil {
		doc.Invoices = []Invoice{}
	}
	for i := range doc.Invoices {
		if !ValidInvoiceStatus(doc.Invoices[i].Status) {
			doc.Invoices[i].Status = InvoiceDraft
		}
		if doc.Invoices[i].WorkspaceID == "" {
			doc.Invoices[i].WorkspaceID = DefaultWorkspaceID
		}
	}
}

// Invoices lists invoices, optionally scoped to one workspace.
func (s *Store) Invoices(workspaceID string) []Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Invoice, 0, len(s.invoices.Invoices))
	for _, inv := range s.invoices.Invoices {
		if workspaceID == "" || inv.WorkspaceID == workspaceID {
			out = append(out, inv)
		}
	}
	return out
}

// GetInvoice looks up an invoice by id.
func (s *Store) GetInvoice(id string) (Invoice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invoices.Invoices {
		if inv.ID == id {
			return inv, true
		}
	}
	return Invoice{}, false
}

// CreateInvoice adds a draft invoice.
func (s *Store) CreateInvoice(workspaceID, clientName, projectDescription string, total float64) Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if workspaceID == "" {
		workspaceID = DefaultWorkspaceID
	}
	inv := Invoice{
		ID:                 s.nextInvoiceNumberLocked(),
		ClientName:         clientName,
		ProjectDescription: projectDescription,
		Total:              total,
		Status:             InvoiceDraft,
		CreatedAt:          time.Now(),
		WorkspaceID:        workspaceID,
	}
	s.invoices.Invoices = append(s.invoices.Invoices, inv)
	s.persistInvoices()
	return inv
}

func (s *Store) nextInvoiceNumberLocked() string {
	for seq := len(s.invoices.Invoices) + 1; ; seq++ {
		id := fmt.Sprintf("INV-%04d", seq)
		taken := false
		for i := range s.invoices.Invoices {
			if s.invoices.Invoices[i].ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

// UpdateInvoice edits the descriptive fields of an invoice. Empty strings
// leave the current value; a negative total is ignored.
func (s *Store) UpdateInvoice(id, clientName, projectDescription string, total float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.invoices.Invoices {
		if s.invoices.Invoices[i].ID != id {
			continue
		}
		if clientName != "" {
			s.invoices.Invoices[i].ClientName = clientName
		}
		if projectDescription != "" {
			s.invoices.Invoices[i].ProjectDescription = projectDescription
		}
		if total >= 0 {
			s.invoices.Invoices[i].Total = total
		}
		s.persistInvoices()
		return true
	}
	return false
}

// SetInvoiceStatus moves an invoice along draft -> pending -> paid. Backward
// moves are allowed (a paid invoice can be reopened); unknown ids are a
// tolerant no-op.
func (s *Store) SetInvoiceStatus(id string, status InvoiceStatus) bool {
	if !ValidInvoiceStatus(status) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.invoices.Invoices {
		if s.invoices.Invoices[i].ID == id {
			s.invoices.Invoices[i].Status = status
			s.persistInvoices()
			return true
		}
	}
	return false
}

// DeleteInvoice removes an invoice. Projects keep their dangling ids; the
// join simply skips them.
func (s *Store) DeleteInvoice(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.invoices.Invoices {
		if s.invoices.Invoices[i].ID == id {
			s.invoices.Invoices = append(s.invoices.Invoices[:i], s.invoices.Invoices[i+1:]...)
			s.persistInvoices()
			return true
		}
	}
	return false
}

// ProjectInvoiceTotal joins a project's invoice references against the invoice
// list and sums their totals. Dangling references contribute nothing.
func (s *Store) ProjectInvoiceTotal(workspaceID, projectID string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _ := s.ensureProjectsLocked(workspaceID)
	p := s.findProjectLocked(id, projectID)
	if p == nil {
		return 0, false
	}
	total := 0.0
	for _, invID := range p.Invoices {
		for i := range s.invoices.Invoices {
			if s.invoices.Invoices[i].ID == invID {
				total += s.invoices.Invoices[i].Total
				break
			}
		}
	}
	return total, true
}
