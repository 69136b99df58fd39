// Package recurringcharge holds the RecurringCharge aggregate (spec.md §3):
// a standing monthly line against a lease (parking, storage, maintenance).
package recurringcharge

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leasebill/billing-engine/internal/types"
)

// RecurringCharge is a standing charge line against a lease.
type RecurringCharge struct {
	ID            string
	LeaseID       string
	ChargeTypeID  string
	Description   string
	MonthlyAmount decimal.Decimal
	StartDate     time.Time
	EndDate       *time.Time
	Frequency     types.ChargeFrequency
	Active        bool

	types.BaseModel
}

// Overlap returns the inclusive intersection of the charge's active
// interval with [periodStart, periodEnd], or ok=false if there is none.
func (c *RecurringCharge) Overlap(periodStart, periodEnd time.Time) (start, end time.Time, ok bool) {
	start = c.StartDate
	if periodStart.After(start) {
		start = periodStart
	}
	end = periodEnd
	if c.EndDate != nil && c.EndDate.Before(end) {
		end = *c.EndDate
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// Store is the narrow persistence interface C3/C6 depend on.
type Store interface {
	// ListActiveMonthly returns the lease's active, Monthly-frequency
	// recurring charges ordered by StartDate ascending. Other
	// frequencies are excluded at the store level since C3 never bills
	// them (spec.md §4.3).
	ListActiveMonthly(ctx context.Context, orgID, leaseID string) ([]*RecurringCharge, error)
}
