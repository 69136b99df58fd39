// Package service implements the engine's operational contracts (C2-C10):
// each type here is a constructor-injected struct over stores, the clock,
// and the current principal, with no global state and no DI container
// (spec.md §9).
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leasebill/billing-engine/internal/domain/lease"
	"github.com/leasebill/billing-engine/internal/domain/proration"
	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/logger"
	"github.com/leasebill/billing-engine/internal/types"
)

// RentLineItem is one surviving rent-term overlap for a billing period.
type RentLineItem struct {
	TermID          string
	PeriodStart     time.Time
	PeriodEnd       time.Time
	FullMonthlyRent decimal.Decimal
	Amount          decimal.Decimal
	IsProrated      bool
}

// RentResult is C2's output.
type RentResult struct {
	Total     decimal.Decimal
	LineItems []RentLineItem
}

// RentCalculator is C2: it derives prorated rent line items for a lease
// over a billing period from the lease's rent terms.
type RentCalculator struct {
	leases     lease.Store
	proration  proration.Calculator
	logger     *logger.Logger
}

func NewRentCalculator(leases lease.Store, prorationCalc proration.Calculator, log *logger.Logger) *RentCalculator {
	return &RentCalculator{leases: leases, proration: prorationCalc, logger: log}
}

func (c *RentCalculator) Calculate(ctx context.Context, orgID, leaseID string, periodStart, periodEnd time.Time, method types.ProrationMethod) (*RentResult, error) {
	if periodEnd.Before(periodStart) {
		return nil, ierr.NewError("invalid billing period").
			WithHintf("period end %s is before period start %s", periodEnd, periodStart).
			Mark(ierr.ErrValidation)
	}

	l, err := c.leases.Get(ctx, orgID, leaseID)
	if err != nil {
		return nil, err
	}

	result := &RentResult{Total: decimal.Zero}
	for _, term := range l.Terms {
		overlapStart, overlapEnd, ok := term.Overlap(periodStart, periodEnd)
		if !ok {
			continue
		}

		var amount decimal.Decimal
		isProrated := !(overlapStart.Equal(periodStart) && overlapEnd.Equal(periodEnd))
		if !isProrated {
			amount = types.RoundMoney(term.MonthlyRent)
		} else {
			amount, err = c.proration.Prorate(term.MonthlyRent, overlapStart, overlapEnd, periodStart, periodEnd, method)
			if err != nil {
				return nil, err
			}
		}

		result.LineItems = append(result.LineItems, RentLineItem{
			TermID:          term.ID,
			PeriodStart:     overlapStart,
			PeriodEnd:       overlapEnd,
			FullMonthlyRent: term.MonthlyRent,
			Amount:          amount,
			IsProrated:      isProrated,
		})
		result.Total = result.Total.Add(amount)
	}

	c.logger.Debugw("rent calculated", "lease_id", leaseID, "line_count", len(result.LineItems), "total", result.Total)
	return result, nil
}
