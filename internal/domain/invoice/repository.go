package invoice

import (
	"context"
	"time"
)

// Store is the narrow persistence interface C6/C7 depend on.
type Store interface {
	// Get returns the invoice by id, lines included.
	Get(ctx context.Context, orgID, id string) (*Invoice, error)

	// FindByLeaseAndPeriod looks up the invoice for the exact
	// (lease, periodStart, periodEnd) tuple, used by C6's existing-invoice
	// probe. ok=false if none exists.
	FindByLeaseAndPeriod(ctx context.Context, orgID, leaseID string, periodStart, periodEnd time.Time) (inv *Invoice, ok bool, err error)

	// Create persists a brand-new draft invoice.
	Create(ctx context.Context, inv *Invoice) error

	// Update persists changes to an existing invoice using optimistic
	// concurrency on inv.Version; it fails with ErrConflict on mismatch.
	Update(ctx context.Context, inv *Invoice) error

	// SoftDelete marks a draft invoice deleted. Issued/Paid/Voided
	// invoices are never destroyed (spec.md §3 "Ownership") — callers
	// must enforce that precondition before calling this.
	SoftDelete(ctx context.Context, orgID, id string) error
}
