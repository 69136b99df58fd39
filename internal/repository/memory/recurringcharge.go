package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/leasebill/billing-engine/internal/domain/recurringcharge"
	"github.com/leasebill/billing-engine/internal/types"
)

type RecurringChargeStore struct {
	mu      sync.RWMutex
	charges map[string]*recurringcharge.RecurringCharge
}

func NewRecurringChargeStore() *RecurringChargeStore {
	return &RecurringChargeStore{charges: make(map[string]*recurringcharge.RecurringCharge)}
}

func (s *RecurringChargeStore) Put(c *recurringcharge.RecurringCharge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.charges[c.ID] = &cp
}

func (s *RecurringChargeStore) ListActiveMonthly(ctx context.Context, orgID, leaseID string) ([]*recurringcharge.RecurringCharge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*recurringcharge.RecurringCharge
	for _, c := range s.charges {
		if c.OrgID == orgID && c.LeaseID == leaseID && c.Active && c.Frequency == types.ChargeFrequencyMonthly {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}
