package memory

import (
	"context"
	"sync"
	"time"

	"github.com/leasebill/billing-engine/internal/domain/utility"
	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/types"
)

type RatePlanStore struct {
	mu    sync.RWMutex
	plans map[string]*utility.RatePlan
}

func NewRatePlanStore() *RatePlanStore {
	return &RatePlanStore{plans: make(map[string]*utility.RatePlan)}
}

func (s *RatePlanStore) Put(p *utility.RatePlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	cp.Slabs = append([]utility.Slab(nil), p.Slabs...)
	s.plans[p.ID] = &cp
}

func (s *RatePlanStore) Get(ctx context.Context, orgID, ratePlanID string) (*utility.RatePlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[ratePlanID]
	if !ok {
		return nil, ierr.NewError("rate plan not found").
			WithHintf("rate plan %s does not exist", ratePlanID).
			Mark(ierr.ErrNotFound)
	}
	cp := *p
	cp.Slabs = append([]utility.Slab(nil), p.Slabs...)
	return &cp, nil
}

type StatementStore struct {
	mu         sync.Mutex
	statements map[string][]*utility.Statement // keyed by orgID|leaseID|type|periodStart|periodEnd
}

func NewStatementStore() *StatementStore {
	return &StatementStore{statements: make(map[string][]*utility.Statement)}
}

func statementKey(orgID, leaseID string, utilityType types.UtilityType, periodStart, periodEnd time.Time) string {
	return orgID + "|" + leaseID + "|" + string(utilityType) + "|" +
		periodStart.Format(time.RFC3339) + "|" + periodEnd.Format(time.RFC3339)
}

func (s *StatementStore) Versions(ctx context.Context, orgID, leaseID string, utilityType types.UtilityType, periodStart, periodEnd time.Time) ([]*utility.Statement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := statementKey(orgID, leaseID, utilityType, periodStart, periodEnd)
	existing := s.statements[key]
	out := make([]*utility.Statement, len(existing))
	for i, st := range existing {
		cp := *st
		out[i] = &cp
	}
	return out, nil
}

func (s *StatementStore) Insert(ctx context.Context, st *utility.Statement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := statementKey(st.OrgID, st.LeaseID, st.Type, st.PeriodStart, st.PeriodEnd)
	if st.IsFinal {
		for _, existing := range s.statements[key] {
			if existing.IsFinal {
				return ierr.NewError("final utility statement already exists").
					WithHintf("lease %s already has a final statement for this period", st.LeaseID).
					Mark(ierr.ErrConflict)
			}
		}
	}
	cp := *st
	s.statements[key] = append(s.statements[key], &cp)
	return nil
}
