package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/leasebill/billing-engine/internal/domain/chargetype"
	"github.com/leasebill/billing-engine/internal/domain/lease"
	"github.com/leasebill/billing-engine/internal/domain/recurringcharge"
	"github.com/leasebill/billing-engine/internal/types"
)

// NewLease builds an Active lease with a single rent term covering
// [startDate, ...) at monthlyRent, ready to be seeded into a store.
func NewLease(orgID, leaseID string, monthlyRent decimal.Decimal, startDate time.Time) *lease.Lease {
	now := startDate
	return &lease.Lease{
		ID:        leaseID,
		UnitID:    "unit_test",
		Status:    types.LeaseStatusActive,
		StartDate: startDate,
		Terms: []*lease.RentTerm{
			{
				ID:            types.GenerateID(types.PrefixRentTerm),
				LeaseID:       leaseID,
				MonthlyRent:   monthlyRent,
				EffectiveFrom: startDate,
				BaseModel: types.BaseModel{
					OrgID:     orgID,
					Status:    types.StatusActive,
					CreatedAt: now,
					UpdatedAt: now,
				},
			},
		},
		Version: 1,
		BaseModel: types.BaseModel{
			OrgID:     orgID,
			Status:    types.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// NewRecurringCharge builds an active Monthly recurring charge against a
// lease, ready to be seeded into a store.
func NewRecurringCharge(orgID, leaseID, chargeTypeID string, amount decimal.Decimal, startDate time.Time) *recurringcharge.RecurringCharge {
	return &recurringcharge.RecurringCharge{
		ID:            types.GenerateID(types.PrefixRecurringCharge),
		LeaseID:       leaseID,
		ChargeTypeID:  chargeTypeID,
		Description:   "test recurring charge",
		MonthlyAmount: amount,
		StartDate:     startDate,
		Frequency:     types.ChargeFrequencyMonthly,
		Active:        true,
		BaseModel: types.BaseModel{
			OrgID:     orgID,
			Status:    types.StatusActive,
			CreatedAt: startDate,
			UpdatedAt: startDate,
		},
	}
}

// NewChargeType builds a system-defined charge type catalog entry.
func NewChargeType(code, name string) *chargetype.ChargeType {
	return &chargetype.ChargeType{
		Code:          code,
		Name:          name,
		SystemDefined: true,
		Active:        true,
	}
}
