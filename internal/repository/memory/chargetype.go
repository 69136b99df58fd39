package memory

import (
	"context"
	"sync"

	"github.com/leasebill/billing-engine/internal/domain/chargetype"
)

type ChargeTypeStore struct {
	mu    sync.RWMutex
	types map[string]*chargetype.ChargeType // keyed by code + "|" + orgID; "" orgID = system-defined
}

func NewChargeTypeStore() *ChargeTypeStore {
	return &ChargeTypeStore{types: make(map[string]*chargetype.ChargeType)}
}

func (s *ChargeTypeStore) Put(ct *chargetype.ChargeType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *ct
	s.types[ct.Code+"|"+ct.OrgID] = &cp
}

func (s *ChargeTypeStore) Resolve(ctx context.Context, orgID, code string) (*chargetype.ChargeType, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ct, ok := s.types[code+"|"+orgID]; ok {
		cp := *ct
		return &cp, true, nil
	}
	if ct, ok := s.types[code+"|"]; ok && ct.SystemDefined {
		cp := *ct
		return &cp, true, nil
	}
	return nil, false, nil
}
