package service

import (
	"context"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/leasebill/billing-engine/internal/clock"
	"github.com/leasebill/billing-engine/internal/domain/creditnote"
	"github.com/leasebill/billing-engine/internal/domain/invoice"
	"github.com/leasebill/billing-engine/internal/domain/uow"
	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/logger"
	"github.com/leasebill/billing-engine/internal/principal"
	"github.com/leasebill/billing-engine/internal/types"
)

// CreditLineRequest is one requested line of a credit note create call.
type CreditLineRequest struct {
	InvoiceLineID string
	Amount        decimal.Decimal
	Description   string
}

var creditEligibleInvoiceStatuses = []types.InvoiceStatus{
	types.InvoiceStatusIssued,
	types.InvoiceStatusPartiallyPaid,
	types.InvoiceStatusPaid,
}

// CreditNoteService is C8: raises and applies credit notes against issued
// invoices, capping each requested line at the original invoice line's
// amount net of whatever has already been credited against it.
type CreditNoteService struct {
	uow       uow.UnitOfWork
	clock     clock.Provider
	principal principal.Current
	logger    *logger.Logger
}

func NewCreditNoteService(unitOfWork uow.UnitOfWork, clk clock.Provider, princ principal.Current, log *logger.Logger) *CreditNoteService {
	return &CreditNoteService{uow: unitOfWork, clock: clk, principal: princ, logger: log}
}

// Create validates and persists a pending credit note (spec.md §4.8).
// Invoice status is not altered by create.
func (s *CreditNoteService) Create(ctx context.Context, invoiceID string, reason types.CreditNoteReason, lines []CreditLineRequest) (*creditnote.CreditNote, error) {
	if len(lines) == 0 {
		return nil, ierr.NewError("credit note requires line items").
			WithHint("at least one line item is required").
			Mark(ierr.ErrValidation)
	}
	for _, l := range lines {
		if !l.Amount.IsPositive() {
			return nil, ierr.NewError("invalid credit line amount").
				WithHintf("line amount must be > 0, got %s", l.Amount).
				Mark(ierr.ErrValidation)
		}
	}

	orgID := s.principal.OrgID()
	var result *creditnote.CreditNote

	err := s.uow.Execute(ctx, func(ctx context.Context, stores uow.Stores) error {
		inv, err := stores.Invoices.Get(ctx, orgID, invoiceID)
		if err != nil {
			return err
		}
		if !lo.Contains(creditEligibleInvoiceStatuses, inv.Status) {
			return ierr.NewError("invoice not eligible for credit notes").
				WithHintf("invoice %s has status %s", invoiceID, inv.Status).
				Mark(ierr.ErrInvalidState)
		}

		alreadyCredited, err := alreadyCreditedPerLine(ctx, stores.CreditNotes, orgID, invoiceID)
		if err != nil {
			return err
		}

		invoiceLines := make(map[string]*invoice.Line, len(inv.Lines))
		for _, l := range inv.Lines {
			invoiceLines[l.ID] = l
		}

		var cnLines []*creditnote.Line
		total := decimal.Zero
		for i, req := range lines {
			invLine, ok := invoiceLines[req.InvoiceLineID]
			if !ok {
				return ierr.NewError("invoice line not found").
					WithHintf("line %s does not belong to invoice %s", req.InvoiceLineID, invoiceID).
					Mark(ierr.ErrValidation)
			}

			credited := alreadyCredited[req.InvoiceLineID]
			if req.Amount.Add(credited).GreaterThan(invLine.Amount) {
				return ierr.NewError("credit amount exceeds invoice line amount").
					WithHintf("requested %s plus already-credited %s exceeds line amount %s",
						req.Amount, credited, invLine.Amount).
					WithReportableDetails(map[string]any{
						"invoice_line_id":  req.InvoiceLineID,
						"requested_amount": req.Amount,
						"already_credited": credited,
						"line_amount":      invLine.Amount,
					}).
					Mark(ierr.ErrConflict)
			}

			negated := req.Amount.Neg()
			cnLines = append(cnLines, &creditnote.Line{
				ID:            types.GenerateID(types.PrefixCreditNoteLine),
				Ordinal:       i + 1,
				InvoiceLineID: req.InvoiceLineID,
				Description:   req.Description,
				Amount:        negated,
				Total:         negated,
			})
			total = total.Add(negated)
			alreadyCredited[req.InvoiceLineID] = credited.Add(req.Amount)
		}

		numberGen := NewNumberSequenceGenerator(stores.Sequences, s.clock)
		number, err := numberGen.Next(ctx, orgID, types.DocumentKindCreditNote, "")
		if err != nil {
			return err
		}

		now := s.clock.NowUTC()
		cn := &creditnote.CreditNote{
			ID:               types.GenerateID(types.PrefixCreditNote),
			InvoiceID:        invoiceID,
			CreditNoteNumber: number,
			Reason:           reason,
			Lines:            cnLines,
			Total:            total,
			BaseModel: types.BaseModel{
				OrgID:     orgID,
				Status:    types.StatusActive,
				CreatedBy: s.principal.UserID(),
				UpdatedBy: s.principal.UserID(),
				CreatedAt: now,
				UpdatedAt: now,
			},
		}

		if err := stores.CreditNotes.Create(ctx, cn); err != nil {
			return err
		}
		result = cn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Issue applies a pending credit note, stamping appliedAtUtc. Adjusting the
// parent invoice's paid/balance/status is downstream settlement and out of
// scope here (spec.md §4.8).
func (s *CreditNoteService) Issue(ctx context.Context, creditNoteID string) (*creditnote.CreditNote, error) {
	var result *creditnote.CreditNote
	err := s.uow.Execute(ctx, func(ctx context.Context, stores uow.Stores) error {
		cn, err := stores.CreditNotes.Get(ctx, s.principal.OrgID(), creditNoteID)
		if err != nil {
			return err
		}
		if len(cn.Lines) == 0 {
			return ierr.NewError("credit note has no lines").
				WithHintf("credit note %s cannot be issued with zero lines", creditNoteID).
				Mark(ierr.ErrInvalidState)
		}
		if cn.IsIssued() {
			return ierr.NewError("credit note already issued").
				WithHintf("credit note %s was already applied", creditNoteID).
				Mark(ierr.ErrInvalidState)
		}

		now := s.clock.NowUTC()
		cn.AppliedAt = &now
		cn.UpdatedBy = s.principal.UserID()
		cn.UpdatedAt = now

		if err := stores.CreditNotes.Update(ctx, cn); err != nil {
			return err
		}
		result = cn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// alreadyCreditedPerLine sums, per invoice line, the amount already
// credited across every existing credit note (any status) raised against
// the invoice.
func alreadyCreditedPerLine(ctx context.Context, store creditnote.Store, orgID, invoiceID string) (map[string]decimal.Decimal, error) {
	existing, err := store.ListByInvoice(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal)
	for _, cn := range existing {
		for _, l := range cn.Lines {
			out[l.InvoiceLineID] = out[l.InvoiceLineID].Add(l.Amount.Neg())
		}
	}
	return out, nil
}
