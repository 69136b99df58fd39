package service

import (
	"context"

	"github.com/leasebill/billing-engine/internal/clock"
	"github.com/leasebill/billing-engine/internal/domain/sequence"
	"github.com/leasebill/billing-engine/internal/types"
)

// NumberSequenceGenerator is C5: it turns the raw monotonic counter
// (sequence.Store) into the bit-exact document-number format spec.md §4.5
// and §6 require.
type NumberSequenceGenerator struct {
	sequences sequence.Store
	clock     clock.Provider
}

func NewNumberSequenceGenerator(sequences sequence.Store, clk clock.Provider) *NumberSequenceGenerator {
	return &NumberSequenceGenerator{sequences: sequences, clock: clk}
}

// Next allocates the next document number for (orgID, kind), formatted as
// {prefix}-{YYYYMM}-{NNNNNN}. prefix may be empty to use the kind default.
func (g *NumberSequenceGenerator) Next(ctx context.Context, orgID string, kind types.DocumentKind, prefix string) (string, error) {
	value, err := g.sequences.Next(ctx, orgID, kind)
	if err != nil {
		return "", err
	}
	yearMonth := g.clock.NowUTC().Format("200601")
	return sequence.FormatNumber(kind, prefix, yearMonth, value), nil
}
