// Package creditnote holds the CreditNote and CreditNoteLine aggregate
// (spec.md §3): a negative financial document offsetting an issued
// invoice.
package creditnote

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/leasebill/billing-engine/internal/types"
)

// CreditNote offsets an issued (or paid/partially-paid) invoice.
type CreditNote struct {
	ID               string
	InvoiceID        string
	CreditNoteNumber string
	Reason           types.CreditNoteReason
	Lines            []*Line // dense 1..N ordinals
	Total            decimal.Decimal // non-positive

	AppliedAt *time.Time

	// Version is the optimistic-concurrency token.
	Version int

	types.BaseModel
}

// Line is one row of a credit note.
type Line struct {
	ID            string
	Ordinal       int
	InvoiceLineID string // must belong to the same invoice as the parent
	Description   string
	Amount        decimal.Decimal // stored negative
	Total         decimal.Decimal // == Amount (no tax modelled on credits)
}

// IsIssued reports whether the credit note has been applied.
func (c *CreditNote) IsIssued() bool {
	return c.AppliedAt != nil
}

// Recompute derives Total from the current line collection.
func (c *CreditNote) Recompute() {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Total)
	}
	c.Total = total
}
