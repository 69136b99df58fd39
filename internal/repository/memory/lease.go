// Package memory implements every narrow store/repository interface in
// internal/domain over in-process maps, for use in service-level tests
// (grounded on the teacher's internal/testutil in-memory store pattern).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/leasebill/billing-engine/internal/domain/lease"
	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/types"
)

type LeaseStore struct {
	mu     sync.RWMutex
	leases map[string]*lease.Lease
}

func NewLeaseStore() *LeaseStore {
	return &LeaseStore{leases: make(map[string]*lease.Lease)}
}

// Put is a test-setup helper, not part of lease.Store.
func (s *LeaseStore) Put(l *lease.Lease) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leases[l.ID] = copyLease(l)
}

func (s *LeaseStore) Get(ctx context.Context, orgID, leaseID string) (*lease.Lease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leases[leaseID]
	if !ok || l.OrgID != orgID {
		return nil, ierr.NewError("lease not found").
			WithHintf("lease %s does not exist", leaseID).
			Mark(ierr.ErrNotFound)
	}
	return copyLease(l), nil
}

func (s *LeaseStore) ListActive(ctx context.Context, orgID string) ([]*lease.Lease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*lease.Lease
	for _, l := range s.leases {
		if l.OrgID == orgID && l.BaseModel.Status == types.StatusActive && l.IsActive() {
			out = append(out, copyLease(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *LeaseStore) Update(ctx context.Context, l *lease.Lease) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.leases[l.ID]
	if !ok || existing.OrgID != l.OrgID {
		return ierr.NewError("lease not found").
			WithHintf("lease %s does not exist", l.ID).
			Mark(ierr.ErrNotFound)
	}
	if existing.Version != l.Version {
		return ierr.NewError("lease version conflict").
			WithHintf("lease %s was modified concurrently", l.ID).
			Mark(ierr.ErrConflict)
	}
	updated := copyLease(l)
	updated.Version++
	s.leases[l.ID] = updated
	l.Version = updated.Version
	return nil
}

func copyLease(l *lease.Lease) *lease.Lease {
	if l == nil {
		return nil
	}
	cp := *l
	cp.Terms = make([]*lease.RentTerm, len(l.Terms))
	for i, t := range l.Terms {
		tc := *t
		cp.Terms[i] = &tc
	}
	return &cp
}
