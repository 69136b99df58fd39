package memory

import (
	"context"
	"sync"

	"github.com/leasebill/billing-engine/internal/domain/invoicerun"
	ierr "github.com/leasebill/billing-engine/internal/errors"
)

type InvoiceRunStore struct {
	mu   sync.Mutex
	runs map[string]*invoicerun.Run
}

func NewInvoiceRunStore() *InvoiceRunStore {
	return &InvoiceRunStore{runs: make(map[string]*invoicerun.Run)}
}

func (s *InvoiceRunStore) Create(ctx context.Context, r *invoicerun.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.runs[r.ID] = &cp
	return nil
}

func (s *InvoiceRunStore) Update(ctx context.Context, r *invoicerun.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[r.ID]; !ok {
		return ierr.NewError("invoice run not found").
			WithHintf("invoice run %s does not exist", r.ID).
			Mark(ierr.ErrNotFound)
	}
	cp := *r
	s.runs[r.ID] = &cp
	return nil
}

func (s *InvoiceRunStore) FindByIdempotencyKey(ctx context.Context, orgID, key string) (*invoicerun.Run, bool, error) {
	if key == "" {
		return nil, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.runs {
		if r.OrgID == orgID && r.IdempotencyKey == key {
			cp := *r
			return &cp, true, nil
		}
	}
	return nil, false, nil
}
