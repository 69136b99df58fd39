// Package invoicerun holds the bulk-generation run record (C10).
package invoicerun

import (
	"context"
	"time"

	"github.com/leasebill/billing-engine/internal/types"
)

// Run records one bulk invoice-generation execution.
type Run struct {
	ID              string
	RunAt           time.Time
	PeriodStart     time.Time
	PeriodEnd       time.Time
	ProrationMethod types.ProrationMethod

	// IdempotencyKey, when non-empty, lets a caller retry of a crashed or
	// timed-out run request be recognized as a retry rather than a second
	// run (§4.10's retry policy). Empty means the caller opted out.
	IdempotencyKey string

	TotalLeases  int
	SuccessCount int
	FailureCount int
	Status       types.RunStatus
	ErrorMessages []string

	types.BaseModel
}

// Finalize computes Status from the accumulated counts (spec.md §4.10
// step 4).
func (r *Run) Finalize() {
	switch {
	case r.TotalLeases == 0:
		r.Status = types.RunStatusCompleted
	case r.FailureCount == 0:
		r.Status = types.RunStatusCompleted
	case r.FailureCount == r.TotalLeases:
		r.Status = types.RunStatusFailed
	default:
		r.Status = types.RunStatusCompletedWithErrors
	}
}

// Store is the narrow persistence interface C10 depends on.
type Store interface {
	Create(ctx context.Context, r *Run) error
	Update(ctx context.Context, r *Run) error

	// FindByIdempotencyKey returns the run previously created for key, if
	// any. ok=false when key is unseen, including when key is empty.
	FindByIdempotencyKey(ctx context.Context, orgID, key string) (r *Run, ok bool, err error)
}
