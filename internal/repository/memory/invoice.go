package memory

import (
	"context"
	"sync"
	"time"

	"github.com/leasebill/billing-engine/internal/domain/invoice"
	ierr "github.com/leasebill/billing-engine/internal/errors"
)

type InvoiceStore struct {
	mu       sync.RWMutex
	invoices map[string]*invoice.Invoice
}

func NewInvoiceStore() *InvoiceStore {
	return &InvoiceStore{invoices: make(map[string]*invoice.Invoice)}
}

func (s *InvoiceStore) Get(ctx context.Context, orgID, id string) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok || inv.OrgID != orgID {
		return nil, ierr.WithError(invoice.ErrNotFound).
			WithHintf("invoice %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(inv), nil
}

func (s *InvoiceStore) FindByLeaseAndPeriod(ctx context.Context, orgID, leaseID string, periodStart, periodEnd time.Time) (*invoice.Invoice, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.invoices {
		if inv.OrgID == orgID && inv.LeaseID == leaseID &&
			inv.PeriodStart.Equal(periodStart) && inv.PeriodEnd.Equal(periodEnd) {
			return copyInvoice(inv), true, nil
		}
	}
	return nil, false, nil
}

func (s *InvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.invoices[inv.ID]; exists {
		return ierr.NewError("invoice already exists").
			WithHintf("invoice %s already exists", inv.ID).
			Mark(ierr.ErrConflict)
	}
	s.invoices[inv.ID] = copyInvoice(inv)
	return nil
}

func (s *InvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.invoices[inv.ID]
	if !ok || existing.OrgID != inv.OrgID {
		return ierr.WithError(invoice.ErrNotFound).
			WithHintf("invoice %s does not exist", inv.ID).
			Mark(ierr.ErrNotFound)
	}
	if existing.Version != inv.Version {
		return ierr.NewError("invoice version conflict").
			WithHintf("invoice %s was modified concurrently", inv.ID).
			Mark(ierr.ErrConflict)
	}
	updated := copyInvoice(inv)
	updated.Version++
	s.invoices[inv.ID] = updated
	inv.Version = updated.Version
	return nil
}

func (s *InvoiceStore) SoftDelete(ctx context.Context, orgID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok || inv.OrgID != orgID {
		return ierr.WithError(invoice.ErrNotFound).
			WithHintf("invoice %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	delete(s.invoices, id)
	return nil
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}
	cp := *inv
	cp.Lines = make([]*invoice.Line, len(inv.Lines))
	for i, l := range inv.Lines {
		lc := *l
		cp.Lines[i] = &lc
	}
	return &cp
}
