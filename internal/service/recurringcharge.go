package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leasebill/billing-engine/internal/domain/proration"
	"github.com/leasebill/billing-engine/internal/domain/recurringcharge"
	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/logger"
	"github.com/leasebill/billing-engine/internal/types"
)

// RecurringChargeLineItem is one surviving recurring-charge overlap.
type RecurringChargeLineItem struct {
	ChargeID       string
	ChargeTypeID   string
	Description    string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	Amount         decimal.Decimal
}

// RecurringChargeResult is C3's output.
type RecurringChargeResult struct {
	Total     decimal.Decimal
	LineItems []RecurringChargeLineItem
}

// RecurringChargeCalculator is C3: it prorates the lease's active monthly
// standing charges (parking, storage, maintenance) over a billing period.
// Non-monthly frequencies are excluded at the store level (spec.md §4.3).
type RecurringChargeCalculator struct {
	charges   recurringcharge.Store
	proration proration.Calculator
	logger    *logger.Logger
}

func NewRecurringChargeCalculator(charges recurringcharge.Store, prorationCalc proration.Calculator, log *logger.Logger) *RecurringChargeCalculator {
	return &RecurringChargeCalculator{charges: charges, proration: prorationCalc, logger: log}
}

func (c *RecurringChargeCalculator) Calculate(ctx context.Context, orgID, leaseID string, periodStart, periodEnd time.Time, method types.ProrationMethod) (*RecurringChargeResult, error) {
	if periodEnd.Before(periodStart) {
		return nil, ierr.NewError("invalid billing period").
			WithHintf("period end %s is before period start %s", periodEnd, periodStart).
			Mark(ierr.ErrValidation)
	}

	charges, err := c.charges.ListActiveMonthly(ctx, orgID, leaseID)
	if err != nil {
		return nil, err
	}

	result := &RecurringChargeResult{Total: decimal.Zero}
	for _, charge := range charges {
		overlapStart, overlapEnd, ok := charge.Overlap(periodStart, periodEnd)
		if !ok {
			continue
		}

		amount, err := c.proration.Prorate(charge.MonthlyAmount, overlapStart, overlapEnd, periodStart, periodEnd, method)
		if err != nil {
			return nil, err
		}

		result.LineItems = append(result.LineItems, RecurringChargeLineItem{
			ChargeID:     charge.ID,
			ChargeTypeID: charge.ChargeTypeID,
			Description:  charge.Description,
			PeriodStart:  overlapStart,
			PeriodEnd:    overlapEnd,
			Amount:       amount,
		})
		result.Total = result.Total.Add(amount)
	}

	c.logger.Debugw("recurring charges calculated", "lease_id", leaseID, "line_count", len(result.LineItems), "total", result.Total)
	return result, nil
}
