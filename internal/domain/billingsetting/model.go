// Package billingsetting holds the per-lease billing configuration
// (spec.md §3).
package billingsetting

import (
	"context"

	"github.com/leasebill/billing-engine/internal/types"
)

// Setting is 1:1 with a Lease.
type Setting struct {
	ID               string
	LeaseID          string
	BillingDay       int // 1-28 inclusive
	ProrationMethod  types.ProrationMethod

	Version int
	types.BaseModel
}

// DefaultProrationMethod is ActualDaysInMonth (spec.md §3). Generate does
// not read it: when a lease has no Setting row, Generate uses the proration
// method its caller passed in.
const DefaultProrationMethod = types.ProrationActualDaysInMonth

// Store is the narrow persistence interface for lease billing settings.
type Store interface {
	// Get returns the setting for a lease, or ok=false if none exists —
	// Generate then uses the proration method its caller passed in.
	Get(ctx context.Context, orgID, leaseID string) (s *Setting, ok bool, err error)
}
