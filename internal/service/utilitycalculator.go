package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/leasebill/billing-engine/internal/domain/utility"
	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/logger"
	"github.com/leasebill/billing-engine/internal/types"
)

// AmountResult is the common shape returned by every UtilityCalculator mode.
type AmountResult struct {
	Total         decimal.Decimal
	IsMeterBased  bool
	SlabBreakdown []utility.SlabContribution // only set by MeterSlabs
}

// UtilityCalculator is C4: the three utility-charge computation modes a
// caller dispatches explicitly (there is no auto-detection of which mode
// applies — the caller knows how the utility is billed).
type UtilityCalculator struct {
	ratePlans utility.RatePlanStore
	logger    *logger.Logger
}

func NewUtilityCalculator(ratePlans utility.RatePlanStore, log *logger.Logger) *UtilityCalculator {
	return &UtilityCalculator{ratePlans: ratePlans, logger: log}
}

// DirectAmount passes a caller-supplied total through, rounded to 2 decimal
// places.
func (c *UtilityCalculator) DirectAmount(amount decimal.Decimal, utilityType types.UtilityType) (*AmountResult, error) {
	if amount.IsNegative() {
		return nil, ierr.NewError("invalid utility amount").
			WithHintf("amount must be non-negative, got %s", amount).
			Mark(ierr.ErrValidation)
	}
	return &AmountResult{Total: types.RoundMoney(amount), IsMeterBased: false}, nil
}

// MeterFlatRate computes units x rate + a fixed charge.
func (c *UtilityCalculator) MeterFlatRate(units, ratePerUnit, fixedCharge decimal.Decimal, utilityType types.UtilityType) (*AmountResult, error) {
	if units.IsNegative() {
		return nil, ierr.NewError("invalid meter units").
			WithHintf("units must be non-negative, got %s", units).
			Mark(ierr.ErrValidation)
	}
	if ratePerUnit.IsNegative() {
		return nil, ierr.NewError("invalid rate per unit").
			WithHintf("rate per unit must be non-negative, got %s", ratePerUnit).
			Mark(ierr.ErrValidation)
	}
	if fixedCharge.IsNegative() {
		return nil, ierr.NewError("invalid fixed charge").
			WithHintf("fixed charge must be non-negative, got %s", fixedCharge).
			Mark(ierr.ErrValidation)
	}

	total := types.RoundMoney(units.Mul(ratePerUnit)).Add(fixedCharge)
	return &AmountResult{Total: total, IsMeterBased: true}, nil
}

// MeterSlabs allocates consumed units across a tiered rate plan's slabs in
// order, summing each slab's own rounded contribution (spec.md §4.4: the
// sum is not re-rounded).
func (c *UtilityCalculator) MeterSlabs(ctx context.Context, orgID, ratePlanID string, units decimal.Decimal, utilityType types.UtilityType) (*AmountResult, error) {
	if units.IsNegative() {
		return nil, ierr.NewError("invalid meter units").
			WithHintf("units must be non-negative, got %s", units).
			Mark(ierr.ErrValidation)
	}

	plan, err := c.ratePlans.Get(ctx, orgID, ratePlanID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, ierr.NewError("rate plan inactive").
			WithHintf("rate plan %s is not active", ratePlanID).
			Mark(ierr.ErrInvalidState)
	}
	if len(plan.Slabs) == 0 {
		return nil, ierr.NewError("rate plan has no slabs").
			WithHintf("rate plan %s has zero slabs", ratePlanID).
			Mark(ierr.ErrInvalidState)
	}

	remaining := units
	total := decimal.Zero
	var breakdown []utility.SlabContribution
	for _, slab := range plan.Slabs {
		if remaining.IsZero() {
			break
		}
		var width decimal.Decimal
		if slab.ToUnits != nil {
			width = slab.ToUnits.Sub(slab.FromUnits)
		} else {
			width = remaining
		}
		unitsInSlab := remaining
		if width.LessThan(unitsInSlab) {
			unitsInSlab = width
		}
		if unitsInSlab.IsNegative() {
			unitsInSlab = decimal.Zero
		}

		contribution := types.RoundMoney(unitsInSlab.Mul(slab.RatePerUnit).Add(slab.FixedCharge))
		breakdown = append(breakdown, utility.SlabContribution{
			SlabOrder: slab.Order,
			Units:     unitsInSlab,
			Amount:    contribution,
		})
		total = total.Add(contribution)
		remaining = remaining.Sub(unitsInSlab)
	}

	return &AmountResult{Total: total, IsMeterBased: true, SlabBreakdown: breakdown}, nil
}
