package postgres

import (
	"context"

	"github.com/leasebill/billing-engine/internal/domain/chargetype"
	"github.com/leasebill/billing-engine/internal/domain/uow"
	"github.com/leasebill/billing-engine/internal/postgres"
)

// unitOfWork implements uow.UnitOfWork over a single *postgres.DB,
// constructing a fresh transaction-bound uow.Stores for each Execute call
// (C11, spec.md §5). The charge type catalog is read far more often than it
// changes, so its store is wrapped in a cache that outlives any one
// transaction.
type unitOfWork struct {
	db          *postgres.DB
	chargeTypes chargetype.Store
}

func NewUnitOfWork(db *postgres.DB) *unitOfWork {
	return &unitOfWork{
		db:          db,
		chargeTypes: chargetype.NewCachingStore(NewChargeTypeStore(db)),
	}
}

func (u *unitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, s uow.Stores) error) error {
	return u.db.WithTx(ctx, func(txCtx context.Context) error {
		stores := uow.Stores{
			Leases:            NewLeaseStore(u.db),
			RecurringCharges:  NewRecurringChargeStore(u.db),
			BillingSettings:   NewBillingSettingStore(u.db),
			ChargeTypes:       u.chargeTypes,
			Invoices:          NewInvoiceStore(u.db),
			CreditNotes:       NewCreditNoteStore(u.db),
			Sequences:         NewSequenceStore(u.db),
			UtilityRatePlans:  NewRatePlanStore(u.db),
			UtilityStatements: NewUtilityStatementStore(u.db),
			Runs:              NewInvoiceRunStore(u.db),
		}
		return fn(txCtx, stores)
	})
}
