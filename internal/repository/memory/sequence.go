package memory

import (
	"context"
	"sync"

	"github.com/leasebill/billing-engine/internal/types"
)

type SequenceStore struct {
	mu     sync.Mutex
	values map[string]int64 // keyed by orgID + "|" + kind
}

func NewSequenceStore() *SequenceStore {
	return &SequenceStore{values: make(map[string]int64)}
}

func (s *SequenceStore) Next(ctx context.Context, orgID string, kind types.DocumentKind) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := orgID + "|" + string(kind)
	s.values[key]++
	return s.values[key], nil
}
