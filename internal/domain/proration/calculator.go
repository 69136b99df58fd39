// Package proration implements the pure, stateless proration calculator
// (C1): given an amount, a usage sub-interval and a containing billing
// period, compute the prorated monetary value under a chosen proration
// policy.
package proration

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/types"
)

// Calculator is the C1 contract. Implementations must be pure and
// non-suspending (spec.md §5): no I/O, no context cancellation checks.
type Calculator interface {
	Prorate(
		fullAmount decimal.Decimal,
		usageStart, usageEnd time.Time,
		periodStart, periodEnd time.Time,
		method types.ProrationMethod,
	) (decimal.Decimal, error)
}

type calculator struct{}

// NewCalculator returns the production proration calculator.
func NewCalculator() Calculator {
	return calculator{}
}

func (calculator) Prorate(
	fullAmount decimal.Decimal,
	usageStart, usageEnd time.Time,
	periodStart, periodEnd time.Time,
	method types.ProrationMethod,
) (decimal.Decimal, error) {
	if fullAmount.IsNegative() {
		return decimal.Zero, ierr.NewError("invalid full amount").
			WithHintf("full amount must be non-negative, got %s", fullAmount).
			Mark(ierr.ErrValidation)
	}
	if usageEnd.Before(usageStart) {
		return decimal.Zero, ierr.NewError("invalid usage interval").
			WithHintf("usage end %s is before usage start %s", usageEnd, usageStart).
			Mark(ierr.ErrValidation)
	}
	if periodEnd.Before(periodStart) {
		return decimal.Zero, ierr.NewError("invalid billing period").
			WithHintf("period end %s is before period start %s", periodEnd, periodStart).
			Mark(ierr.ErrValidation)
	}

	overlapStart, overlapEnd, ok := overlap(usageStart, usageEnd, periodStart, periodEnd)
	if !ok {
		return decimal.Zero, nil
	}

	overlapDays := inclusiveDays(overlapStart, overlapEnd)

	var denominator int64
	switch method {
	case types.ProrationThirtyDayMonth:
		denominator = 30
	case types.ProrationActualDaysInMonth, "":
		denominator = inclusiveDays(periodStart, periodEnd)
	default:
		return decimal.Zero, ierr.NewError("invalid proration method").
			WithHintf("unknown proration method %q", method).
			Mark(ierr.ErrValidation)
	}

	if denominator <= 0 {
		return decimal.Zero, ierr.NewError("invalid billing period").
			WithHintf("denominator resolved to %d days", denominator).
			Mark(ierr.ErrValidation)
	}

	result := fullAmount.
		Mul(decimal.NewFromInt(overlapDays)).
		Div(decimal.NewFromInt(denominator))

	return types.RoundMoney(result), nil
}

// overlap returns the inclusive intersection of [aStart, aEnd] and
// [bStart, bEnd], or ok=false if the intersection is empty.
func overlap(aStart, aEnd, bStart, bEnd time.Time) (start, end time.Time, ok bool) {
	start = aStart
	if bStart.After(start) {
		start = bStart
	}
	end = aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// inclusiveDays counts the number of calendar days in [start, end],
// counting both endpoints (end - start + 1).
func inclusiveDays(start, end time.Time) int64 {
	start = truncateToDate(start)
	end = truncateToDate(end)
	return int64(end.Sub(start).Hours()/24) + 1
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
