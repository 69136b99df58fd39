package chargetype

import (
	"context"
	"fmt"
	"time"

	goCache "github.com/patrickmn/go-cache"
)

// DefaultExpiration matches how long a resolved charge type is trusted
// before the next Resolve call goes back to the catalog store. The catalog
// changes rarely enough (new charge types are an admin-time operation) that
// a generous TTL is safe.
const DefaultExpiration = 30 * time.Minute

// DefaultCleanupInterval is how often expired entries are purged.
const DefaultCleanupInterval = 1 * time.Hour

// CachingStore wraps a Store with an in-process cache, sparing C6 a catalog
// round trip for every invoice line of every lease in a run.
type CachingStore struct {
	next  Store
	cache *goCache.Cache
}

// NewCachingStore wraps next with a fresh in-process cache.
func NewCachingStore(next Store) *CachingStore {
	return &CachingStore{
		next:  next,
		cache: goCache.New(DefaultExpiration, DefaultCleanupInterval),
	}
}

func (s *CachingStore) Resolve(ctx context.Context, orgID, code string) (*ChargeType, bool, error) {
	key := fmt.Sprintf("%s|%s", orgID, code)
	if v, found := s.cache.Get(key); found {
		cached := v.(cachedResult)
		return cached.ct, cached.ok, nil
	}

	ct, ok, err := s.next.Resolve(ctx, orgID, code)
	if err != nil {
		return nil, false, err
	}
	s.cache.Set(key, cachedResult{ct: ct, ok: ok}, goCache.DefaultExpiration)
	return ct, ok, nil
}

type cachedResult struct {
	ct *ChargeType
	ok bool
}
