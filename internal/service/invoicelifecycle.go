package service

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/leasebill/billing-engine/internal/clock"
	"github.com/leasebill/billing-engine/internal/domain/invoice"
	"github.com/leasebill/billing-engine/internal/domain/uow"
	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/logger"
	"github.com/leasebill/billing-engine/internal/principal"
	"github.com/leasebill/billing-engine/internal/types"
)

// InvoiceLifecycleService is C7: the Draft -> Issued -> {PartiallyPaid,
// Paid, Voided} state machine (spec.md §4.7). Paid and Voided are terminal.
type InvoiceLifecycleService struct {
	uow       uow.UnitOfWork
	clock     clock.Provider
	principal principal.Current
	logger    *logger.Logger
}

func NewInvoiceLifecycleService(unitOfWork uow.UnitOfWork, clk clock.Provider, princ principal.Current, log *logger.Logger) *InvoiceLifecycleService {
	return &InvoiceLifecycleService{uow: unitOfWork, clock: clk, principal: princ, logger: log}
}

var issuableStatuses = []types.InvoiceStatus{types.InvoiceStatusIssued, types.InvoiceStatusPartiallyPaid}

// Issue transitions a Draft invoice with ≥ 1 line and total > 0 to Issued.
func (s *InvoiceLifecycleService) Issue(ctx context.Context, invoiceID string) (*invoice.Invoice, error) {
	var result *invoice.Invoice
	err := s.uow.Execute(ctx, func(ctx context.Context, stores uow.Stores) error {
		inv, err := stores.Invoices.Get(ctx, s.principal.OrgID(), invoiceID)
		if err != nil {
			return err
		}
		if inv.Status != types.InvoiceStatusDraft {
			return ierr.NewError("invoice not in draft status").
				WithHintf("invoice %s has status %s, expected Draft", invoiceID, inv.Status).
				Mark(ierr.ErrInvalidState)
		}
		if len(inv.Lines) == 0 {
			return ierr.NewError("invoice has no lines").
				WithHintf("invoice %s cannot be issued with zero lines", invoiceID).
				Mark(ierr.ErrInvalidState)
		}
		if !inv.Total.IsPositive() {
			return ierr.NewError("invoice total is not positive").
				WithHintf("invoice %s has total %s, must be > 0 to issue", invoiceID, inv.Total).
				Mark(ierr.ErrInvalidState)
		}

		now := s.clock.NowUTC()
		inv.Status = types.InvoiceStatusIssued
		inv.IssuedAt = &now
		inv.UpdatedBy = s.principal.UserID()
		inv.UpdatedAt = now

		if err := stores.Invoices.Update(ctx, inv); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Void transitions Issued or PartiallyPaid (with zero paid amount) to
// Voided. Voiding an invoice that has received any payment is forbidden;
// use a credit note instead.
func (s *InvoiceLifecycleService) Void(ctx context.Context, invoiceID, reason string) (*invoice.Invoice, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ierr.NewError("void reason required").
			WithHint("a non-empty reason is required to void an invoice").
			Mark(ierr.ErrValidation)
	}

	var result *invoice.Invoice
	err := s.uow.Execute(ctx, func(ctx context.Context, stores uow.Stores) error {
		inv, err := stores.Invoices.Get(ctx, s.principal.OrgID(), invoiceID)
		if err != nil {
			return err
		}
		if !lo.Contains(issuableStatuses, inv.Status) {
			return ierr.NewError("invoice status does not allow void").
				WithHintf("invoice %s has status %s", invoiceID, inv.Status).
				Mark(ierr.ErrInvalidState)
		}
		if inv.Paid.IsPositive() {
			return ierr.NewError("invoice has received payment").
				WithHintf("invoice %s has paid amount %s, void is forbidden", invoiceID, inv.Paid).
				Mark(ierr.ErrInvalidState)
		}

		now := s.clock.NowUTC()
		inv.Status = types.InvoiceStatusVoided
		inv.VoidedAt = &now
		inv.VoidReason = reason
		inv.UpdatedBy = s.principal.UserID()
		inv.UpdatedAt = now

		if err := stores.Invoices.Update(ctx, inv); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecordPayment increments the invoice's paid amount and recomputes its
// balance and status. The engine never captures payments itself; this is a
// report the caller asserts (spec.md §4.7).
func (s *InvoiceLifecycleService) RecordPayment(ctx context.Context, invoiceID string, amount decimal.Decimal) (*invoice.Invoice, error) {
	if !amount.IsPositive() {
		return nil, ierr.NewError("invalid payment amount").
			WithHintf("amount must be > 0, got %s", amount).
			Mark(ierr.ErrValidation)
	}

	var result *invoice.Invoice
	err := s.uow.Execute(ctx, func(ctx context.Context, stores uow.Stores) error {
		inv, err := stores.Invoices.Get(ctx, s.principal.OrgID(), invoiceID)
		if err != nil {
			return err
		}
		if !lo.Contains(issuableStatuses, inv.Status) {
			return ierr.NewError("invoice status does not allow payment").
				WithHintf("invoice %s has status %s", invoiceID, inv.Status).
				Mark(ierr.ErrInvalidState)
		}

		newPaid := inv.Paid.Add(amount)
		if newPaid.GreaterThan(inv.Total) {
			return ierr.NewError("payment exceeds invoice total").
				WithHintf("invoice %s total %s, attempted paid %s", invoiceID, inv.Total, newPaid).
				Mark(ierr.ErrValidation)
		}

		now := s.clock.NowUTC()
		inv.Paid = newPaid
		inv.Balance = inv.Total.Sub(inv.Paid)
		if inv.Balance.IsZero() {
			inv.Status = types.InvoiceStatusPaid
			inv.PaidAt = &now
		} else {
			inv.Status = types.InvoiceStatusPartiallyPaid
		}
		inv.UpdatedBy = s.principal.UserID()
		inv.UpdatedAt = now

		if err := stores.Invoices.Update(ctx, inv); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
