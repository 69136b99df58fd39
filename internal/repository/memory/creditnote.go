package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/leasebill/billing-engine/internal/domain/creditnote"
	ierr "github.com/leasebill/billing-engine/internal/errors"
)

type CreditNoteStore struct {
	mu          sync.RWMutex
	creditNotes map[string]*creditnote.CreditNote
}

func NewCreditNoteStore() *CreditNoteStore {
	return &CreditNoteStore{creditNotes: make(map[string]*creditnote.CreditNote)}
}

func (s *CreditNoteStore) Get(ctx context.Context, orgID, id string) (*creditnote.CreditNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cn, ok := s.creditNotes[id]
	if !ok || cn.OrgID != orgID {
		return nil, ierr.NewError("credit note not found").
			WithHintf("credit note %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return copyCreditNote(cn), nil
}

func (s *CreditNoteStore) ListByInvoice(ctx context.Context, orgID, invoiceID string) ([]*creditnote.CreditNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*creditnote.CreditNote
	for _, cn := range s.creditNotes {
		if cn.OrgID == orgID && cn.InvoiceID == invoiceID {
			out = append(out, copyCreditNote(cn))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreditNoteNumber < out[j].CreditNoteNumber })
	return out, nil
}

func (s *CreditNoteStore) Create(ctx context.Context, cn *creditnote.CreditNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.creditNotes[cn.ID]; exists {
		return ierr.NewError("credit note already exists").
			WithHintf("credit note %s already exists", cn.ID).
			Mark(ierr.ErrConflict)
	}
	s.creditNotes[cn.ID] = copyCreditNote(cn)
	return nil
}

func (s *CreditNoteStore) Update(ctx context.Context, cn *creditnote.CreditNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.creditNotes[cn.ID]
	if !ok || existing.OrgID != cn.OrgID {
		return ierr.NewError("credit note not found").
			WithHintf("credit note %s does not exist", cn.ID).
			Mark(ierr.ErrNotFound)
	}
	if existing.Version != cn.Version {
		return ierr.NewError("credit note version conflict").
			WithHintf("credit note %s was modified concurrently", cn.ID).
			Mark(ierr.ErrConflict)
	}
	updated := copyCreditNote(cn)
	updated.Version++
	s.creditNotes[cn.ID] = updated
	cn.Version = updated.Version
	return nil
}

func copyCreditNote(cn *creditnote.CreditNote) *creditnote.CreditNote {
	if cn == nil {
		return nil
	}
	cp := *cn
	cp.Lines = make([]*creditnote.Line, len(cn.Lines))
	for i, l := range cn.Lines {
		lc := *l
		cp.Lines[i] = &lc
	}
	return &cp
}
