package memory

import (
	"context"
	"sync"

	"github.com/leasebill/billing-engine/internal/domain/billingsetting"
)

type BillingSettingStore struct {
	mu       sync.RWMutex
	settings map[string]*billingsetting.Setting // keyed by leaseID
}

func NewBillingSettingStore() *BillingSettingStore {
	return &BillingSettingStore{settings: make(map[string]*billingsetting.Setting)}
}

func (s *BillingSettingStore) Put(st *billingsetting.Setting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *st
	s.settings[st.LeaseID] = &cp
}

func (s *BillingSettingStore) Get(ctx context.Context, orgID, leaseID string) (*billingsetting.Setting, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.settings[leaseID]
	if !ok || st.OrgID != orgID {
		return nil, false, nil
	}
	cp := *st
	return &cp, true, nil
}
