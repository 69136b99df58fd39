package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leasebill/billing-engine/internal/clock"
	"github.com/leasebill/billing-engine/internal/domain/chargetype"
	"github.com/leasebill/billing-engine/internal/domain/invoice"
	"github.com/leasebill/billing-engine/internal/domain/proration"
	"github.com/leasebill/billing-engine/internal/domain/uow"
	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/logger"
	"github.com/leasebill/billing-engine/internal/principal"
	"github.com/leasebill/billing-engine/internal/types"
)

// GenerateResult is C6's output.
type GenerateResult struct {
	Success     bool
	Invoice     *invoice.Invoice
	WasUpdated  bool
	ErrorMessage string
}

// UtilityLine is a finalized utility statement total the caller hands in
// for inclusion on the generated invoice (spec.md §4.6: "utilities are
// passed in by the caller when relevant"). C6 does not look these up
// itself — C9 finalizes them independently.
type UtilityLine struct {
	Type        types.UtilityType
	Description string
	Amount      decimal.Decimal
	SourceRefID string
}

// InvoiceGenerationService is C6: the core orchestrator that turns a
// lease's rent terms and recurring charges into a draft invoice, enforcing
// the one-invoice-per-period immutability rule (spec.md §4.6).
type InvoiceGenerationService struct {
	uow         uow.UnitOfWork
	proration   proration.Calculator
	clock       clock.Provider
	principal   principal.Current
	logger      *logger.Logger
}

func NewInvoiceGenerationService(
	unitOfWork uow.UnitOfWork,
	prorationCalc proration.Calculator,
	clk clock.Provider,
	princ principal.Current,
	log *logger.Logger,
) *InvoiceGenerationService {
	return &InvoiceGenerationService{
		uow:       unitOfWork,
		proration: prorationCalc,
		clock:     clk,
		principal: princ,
		logger:    log,
	}
}

// Generate implements the create/regenerate/refuse decision tree of
// spec.md §4.6.
func (s *InvoiceGenerationService) Generate(ctx context.Context, leaseID string, periodStart, periodEnd time.Time, method types.ProrationMethod, utilityInputs ...UtilityLine) (*GenerateResult, error) {
	if periodEnd.Before(periodStart) {
		return nil, ierr.NewError("invalid billing period").
			WithHintf("period end %s is before period start %s", periodEnd, periodStart).
			Mark(ierr.ErrValidation)
	}
	for _, u := range utilityInputs {
		if !u.Amount.IsPositive() {
			return nil, ierr.NewError("invalid utility input amount").
				WithHintf("utility line for %s must be > 0, got %s", u.Type, u.Amount).
				Mark(ierr.ErrValidation)
		}
	}

	orgID := s.principal.OrgID()
	var result *GenerateResult

	err := s.uow.Execute(ctx, func(ctx context.Context, stores uow.Stores) error {
		l, err := stores.Leases.Get(ctx, orgID, leaseID)
		if err != nil {
			return err
		}
		if !l.IsActive() {
			return ierr.NewError("lease not active").
				WithHintf("lease %s has status %s", leaseID, l.Status).
				Mark(ierr.ErrInvalidState)
		}

		existing, found, err := stores.Invoices.FindByLeaseAndPeriod(ctx, orgID, leaseID, periodStart, periodEnd)
		if err != nil {
			return err
		}
		if found && existing.Status != types.InvoiceStatusDraft {
			result = &GenerateResult{
				Success:      false,
				ErrorMessage: fmt.Sprintf("An invoice already exists for this period (status: %s)", existing.Status),
			}
			return nil
		}

		effectiveMethod := method
		if setting, ok, err := stores.BillingSettings.Get(ctx, orgID, leaseID); err != nil {
			return err
		} else if ok {
			effectiveMethod = setting.ProrationMethod
		}

		rentCalc := NewRentCalculator(stores.Leases, s.proration, s.logger)
		rentResult, err := rentCalc.Calculate(ctx, orgID, leaseID, periodStart, periodEnd, effectiveMethod)
		if err != nil {
			return err
		}

		chargeCalc := NewRecurringChargeCalculator(stores.RecurringCharges, s.proration, s.logger)
		chargeResult, err := chargeCalc.Calculate(ctx, orgID, leaseID, periodStart, periodEnd, effectiveMethod)
		if err != nil {
			return err
		}

		lines, err := s.assembleLines(ctx, stores.ChargeTypes, orgID, rentResult, chargeResult, utilityInputs)
		if err != nil {
			return err
		}

		now := s.clock.NowUTC()
		if !found {
			numberGen := NewNumberSequenceGenerator(stores.Sequences, s.clock)
			number, err := numberGen.Next(ctx, orgID, types.DocumentKindInvoice, "")
			if err != nil {
				return err
			}

			inv := &invoice.Invoice{
				ID:            types.GenerateID(types.PrefixInvoice),
				LeaseID:       leaseID,
				InvoiceNumber: number,
				PeriodStart:   periodStart,
				PeriodEnd:     periodEnd,
				Lines:         lines,
				Status:        types.InvoiceStatusDraft,
				Paid:          decimal.Zero,
				BaseModel: types.BaseModel{
					OrgID:     orgID,
					Status:    types.StatusActive,
					CreatedBy: s.principal.UserID(),
					UpdatedBy: s.principal.UserID(),
					CreatedAt: now,
					UpdatedAt: now,
				},
			}
			inv.Recompute()
			inv.Balance = inv.Total.Sub(inv.Paid)

			if err := stores.Invoices.Create(ctx, inv); err != nil {
				return err
			}
			result = &GenerateResult{Success: true, Invoice: inv, WasUpdated: false}
			return nil
		}

		// Regenerate path: keep id, invoice number, created-at; replace lines.
		existing.Lines = lines
		existing.Recompute()
		existing.Balance = existing.Total.Sub(existing.Paid)
		existing.UpdatedBy = s.principal.UserID()
		existing.UpdatedAt = now

		if err := stores.Invoices.Update(ctx, existing); err != nil {
			return err
		}
		result = &GenerateResult{Success: true, Invoice: existing, WasUpdated: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// assembleLines builds the dense 1..N line set (rent first, then recurring
// charges, then caller-supplied utility totals), resolving each line's
// charge type from the catalog.
func (s *InvoiceGenerationService) assembleLines(ctx context.Context, chargeTypes chargetype.Store, orgID string, rent *RentResult, charges *RecurringChargeResult, utilityInputs []UtilityLine) ([]*invoice.Line, error) {
	var lines []*invoice.Line
	ordinal := 1

	rentType, ok, err := chargeTypes.Resolve(ctx, orgID, chargetype.RentCode)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ierr.NewError("missing charge type catalog entry").
			WithHintf("no catalog entry for charge type %q", chargetype.RentCode).
			Mark(ierr.ErrInvalidState)
	}

	for _, item := range rent.LineItems {
		lines = append(lines, &invoice.Line{
			ID:             types.GenerateID(types.PrefixInvoiceLine),
			Ordinal:        ordinal,
			ChargeTypeCode: rentType.Code,
			Description:    rentType.Name,
			Amount:         item.Amount,
			TaxAmount:      decimal.Zero,
			Total:          item.Amount,
			Source:         types.InvoiceLineSourceRent,
			SourceRefID:    item.TermID,
		})
		ordinal++
	}

	for _, item := range charges.LineItems {
		ct, ok, err := chargeTypes.Resolve(ctx, orgID, item.ChargeTypeID)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Non-rent lines with no catalog entry are non-fatal: the line
			// is simply not produced (spec.md §4.6).
			s.logger.Warnw("skipping recurring charge line with unresolved charge type",
				"charge_id", item.ChargeID, "charge_type_id", item.ChargeTypeID)
			continue
		}
		lines = append(lines, &invoice.Line{
			ID:             types.GenerateID(types.PrefixInvoiceLine),
			Ordinal:        ordinal,
			ChargeTypeCode: ct.Code,
			Description:    item.Description,
			Amount:         item.Amount,
			TaxAmount:      decimal.Zero,
			Total:          item.Amount,
			Source:         types.InvoiceLineSourceRecurringCharge,
			SourceRefID:    item.ChargeID,
		})
		ordinal++
	}

	for _, item := range utilityInputs {
		code := chargetype.UtilityCode(item.Type)
		ct, ok, err := chargeTypes.Resolve(ctx, orgID, code)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.logger.Warnw("skipping utility line with unresolved charge type",
				"utility_type", item.Type, "charge_type_code", code)
			continue
		}
		lines = append(lines, &invoice.Line{
			ID:             types.GenerateID(types.PrefixInvoiceLine),
			Ordinal:        ordinal,
			ChargeTypeCode: ct.Code,
			Description:    item.Description,
			Amount:         item.Amount,
			TaxAmount:      decimal.Zero,
			Total:          item.Amount,
			Source:         types.InvoiceLineSourceUtility,
			SourceRefID:    item.SourceRefID,
		})
		ordinal++
	}

	return lines, nil
}
