// Package invoice holds the Invoice and InvoiceLine aggregate (spec.md §3),
// the immutable-once-issued financial document the engine produces.
package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/leasebill/billing-engine/internal/types"
)

// Invoice is the document produced by C6 and transitioned by C7.
type Invoice struct {
	ID            string
	LeaseID       string
	InvoiceNumber string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	Lines         []*Line // dense 1..N ordinals

	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Paid     decimal.Decimal
	Balance  decimal.Decimal

	Status     types.InvoiceStatus
	IssuedAt   *time.Time
	PaidAt     *time.Time
	VoidedAt   *time.Time
	VoidReason string

	// Version is the optimistic-concurrency token.
	Version int

	types.BaseModel
}

// Line is one row of an invoice.
type Line struct {
	ID           string
	Ordinal      int // dense 1..N
	ChargeTypeCode string
	Description  string
	Amount       decimal.Decimal // always >= 0 on an invoice line
	TaxAmount    decimal.Decimal
	Total        decimal.Decimal // Amount + TaxAmount

	Source      types.InvoiceLineSource
	SourceRefID string
}

// IsTerminalIsh reports whether the invoice has left Draft — i.e. content
// (lines, totals) is frozen and only payment/void fields may still change.
func (i *Invoice) IsTerminalIsh() bool {
	return i.Status != types.InvoiceStatusDraft
}

// Recompute derives Subtotal/Tax/Total from the current line collection.
// Paid/Balance are left untouched — callers preserve them across a
// regeneration (spec.md §4.6).
func (i *Invoice) Recompute() {
	subtotal := decimal.Zero
	tax := decimal.Zero
	total := decimal.Zero
	for _, l := range i.Lines {
		subtotal = subtotal.Add(l.Amount)
		tax = tax.Add(l.TaxAmount)
		total = total.Add(l.Total)
	}
	i.Subtotal = subtotal
	i.Tax = tax
	i.Total = total
}
