// Package utility holds the utility rate plan/slab catalog (C4's rate
// source) and the versioned utility statement store (C9).
package utility

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leasebill/billing-engine/internal/types"
)

// RatePlan is a tiered or flat pricing plan for one utility type.
type RatePlan struct {
	ID     string
	Type   types.UtilityType
	Active bool
	Slabs  []Slab // ordered 1..M
}

// Slab is one tier of a RatePlan.
type Slab struct {
	Order       int
	FromUnits   decimal.Decimal
	ToUnits     *decimal.Decimal // nil = open-ended top tier
	RatePerUnit decimal.Decimal
	FixedCharge decimal.Decimal
}

// RatePlanStore is the narrow persistence interface C4 depends on.
type RatePlanStore interface {
	Get(ctx context.Context, orgID, ratePlanID string) (*RatePlan, error)
}

// Statement is the computed utility bill for one (lease, utility type,
// billing period).
type Statement struct {
	ID            string
	LeaseID       string
	Type          types.UtilityType
	PeriodStart   time.Time
	PeriodEnd     time.Time
	IsMeterBased  bool
	UnitsConsumed decimal.Decimal
	Total         decimal.Decimal
	SlabBreakdown []SlabContribution // only set when tiered

	Version int
	IsFinal bool

	types.BaseModel
}

// SlabContribution records how much of a statement's total one slab
// contributed, for traceability.
type SlabContribution struct {
	SlabOrder int
	Units     decimal.Decimal
	Amount    decimal.Decimal
}

// StatementStore is the narrow persistence interface C9 depends on.
type StatementStore interface {
	// Versions returns every statement for the key, newest version last.
	Versions(ctx context.Context, orgID, leaseID string, utilityType types.UtilityType, periodStart, periodEnd time.Time) ([]*Statement, error)

	// Insert persists a new statement version. Implementations must
	// reject (ErrConflict) an attempt to insert a second is-final
	// statement for the same key (spec.md §4.9, invariant P4).
	Insert(ctx context.Context, s *Statement) error
}
