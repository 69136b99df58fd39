// Package lease holds the Lease and RentTerm aggregate (spec.md §3).
package lease

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leasebill/billing-engine/internal/types"
)

// Lease is the contract between landlord and tenant for a unit.
type Lease struct {
	ID        string
	UnitID    string
	Status    types.LeaseStatus
	StartDate time.Time
	EndDate   *time.Time
	Terms     []*RentTerm // ordered by EffectiveFrom ascending

	// Version is the optimistic-concurrency token. Callers never interpret
	// it; they pass back what they read.
	Version int

	types.BaseModel
}

// RentTerm is a time-bounded monthly rent declaration on a lease.
type RentTerm struct {
	ID             string
	LeaseID        string
	MonthlyRent    decimal.Decimal
	EffectiveFrom  time.Time
	EffectiveTo    *time.Time // nil = open-ended

	types.BaseModel
}

// Overlap returns the inclusive intersection of the term's effective
// interval with [periodStart, periodEnd], or ok=false if there is none.
func (t *RentTerm) Overlap(periodStart, periodEnd time.Time) (start, end time.Time, ok bool) {
	start = t.EffectiveFrom
	if periodStart.After(start) {
		start = periodStart
	}
	end = periodEnd
	if t.EffectiveTo != nil && t.EffectiveTo.Before(end) {
		end = *t.EffectiveTo
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// IsActive reports whether the lease can be billed.
func (l *Lease) IsActive() bool {
	return l.Status == types.LeaseStatusActive
}

// Store is the narrow persistence interface C2/C6/C10 depend on. Reads are
// snapshot-consistent within a single call: Get returns the lease with its
// rent terms already loaded, ordered by EffectiveFrom ascending.
type Store interface {
	Get(ctx context.Context, orgID, leaseID string) (*Lease, error)
	// ListActive returns every Active lease in the org, sorted by ID
	// ascending, satisfying the deterministic enumeration order C10
	// requires for stable partial-failure replays.
	ListActive(ctx context.Context, orgID string) ([]*Lease, error)
	// Update persists a change to the lease's status using optimistic
	// concurrency: it fails with ErrConflict if the stored version no
	// longer matches lease.Version as read. The Postgres store writes only
	// the status and version; rent terms are not updated through it.
	Update(ctx context.Context, l *Lease) error
}
