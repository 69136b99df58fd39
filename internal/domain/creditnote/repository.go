package creditnote

import "context"

// Store is the narrow persistence interface C8 depends on.
type Store interface {
	Get(ctx context.Context, orgID, id string) (*CreditNote, error)

	// ListByInvoice returns every credit note (any status) raised against
	// an invoice, used to compute already-credited amounts per line
	// before accepting a new one.
	ListByInvoice(ctx context.Context, orgID, invoiceID string) ([]*CreditNote, error)

	Create(ctx context.Context, cn *CreditNote) error

	// Update persists changes using optimistic concurrency on cn.Version.
	Update(ctx context.Context, cn *CreditNote) error
}
