package memory

import (
	"context"
	"sync"

	"github.com/leasebill/billing-engine/internal/domain/uow"
)

// UnitOfWork is a test double for uow.UnitOfWork: it serializes Execute
// calls behind a single mutex instead of running real transactions, which
// is sufficient for service-level tests that don't exercise rollback.
type UnitOfWork struct {
	mu     sync.Mutex
	stores uow.Stores
}

// NewUnitOfWork wires one in-memory store per aggregate together, mirroring
// the shape internal/repository/postgres.NewUnitOfWork assembles.
func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{
		stores: uow.Stores{
			Leases:            NewLeaseStore(),
			RecurringCharges:  NewRecurringChargeStore(),
			BillingSettings:   NewBillingSettingStore(),
			ChargeTypes:       NewChargeTypeStore(),
			Invoices:          NewInvoiceStore(),
			CreditNotes:       NewCreditNoteStore(),
			Sequences:         NewSequenceStore(),
			UtilityRatePlans:  NewRatePlanStore(),
			UtilityStatements: NewStatementStore(),
			Runs:              NewInvoiceRunStore(),
		},
	}
}

// Stores exposes the underlying typed stores so tests can seed fixtures
// directly (e.g. store.Leases.(*LeaseStore).Put(...)).
func (u *UnitOfWork) Stores() uow.Stores {
	return u.stores
}

func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, s uow.Stores) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return fn(ctx, u.stores)
}
