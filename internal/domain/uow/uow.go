// Package uow defines the transactional boundary (C11) the engine's
// services run inside: every mutating operation within a request/run is
// applied atomically (commit or rollback), against typed stores for each
// aggregate in spec.md §3.
package uow

import (
	"context"

	"github.com/leasebill/billing-engine/internal/domain/billingsetting"
	"github.com/leasebill/billing-engine/internal/domain/chargetype"
	"github.com/leasebill/billing-engine/internal/domain/creditnote"
	"github.com/leasebill/billing-engine/internal/domain/invoice"
	"github.com/leasebill/billing-engine/internal/domain/invoicerun"
	"github.com/leasebill/billing-engine/internal/domain/lease"
	"github.com/leasebill/billing-engine/internal/domain/recurringcharge"
	"github.com/leasebill/billing-engine/internal/domain/sequence"
	"github.com/leasebill/billing-engine/internal/domain/utility"
)

// Stores bundles the narrow per-aggregate store interfaces a unit of work
// exposes. It is not a generic Repository[T] (REDESIGN FLAGS, spec.md §9):
// each field is the aggregate's own interface, unchanged from what a
// transaction-less caller would use directly.
type Stores struct {
	Leases            lease.Store
	RecurringCharges   recurringcharge.Store
	BillingSettings    billingsetting.Store
	ChargeTypes        chargetype.Store
	Invoices           invoice.Store
	CreditNotes        creditnote.Store
	Sequences          sequence.Store
	UtilityRatePlans   utility.RatePlanStore
	UtilityStatements  utility.StatementStore
	Runs               invoicerun.Store
}

// UnitOfWork is the C11 transactional-boundary abstraction. Implementations
// bind Stores to a single transaction for the lifetime of fn; a panic or
// returned error rolls back, a nil return commits.
type UnitOfWork interface {
	// Execute runs fn inside one transaction, supplying the
	// transaction-bound Stores.
	Execute(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
