package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leasebill/billing-engine/internal/clock"
	"github.com/leasebill/billing-engine/internal/repository/memory"
	"github.com/leasebill/billing-engine/internal/service"
	"github.com/leasebill/billing-engine/internal/testutil"
	"github.com/leasebill/billing-engine/internal/types"
)

func TestNumberSequenceGenerator_Format(t *testing.T) {
	seqs := memory.NewSequenceStore()
	g := service.NewNumberSequenceGenerator(seqs, clock.Fixed{At: day("2024-03-15")})

	number, err := g.Next(context.Background(), testutil.DefaultOrgID, types.DocumentKindInvoice, "")
	require.NoError(t, err)
	assert.Equal(t, "INV-202403-000001", number)
}

func TestNumberSequenceGenerator_MonotonicAcrossCalls(t *testing.T) {
	seqs := memory.NewSequenceStore()
	g := service.NewNumberSequenceGenerator(seqs, clock.Fixed{At: day("2024-03-15")})

	first, err := g.Next(context.Background(), testutil.DefaultOrgID, types.DocumentKindInvoice, "")
	require.NoError(t, err)
	second, err := g.Next(context.Background(), testutil.DefaultOrgID, types.DocumentKindInvoice, "")
	require.NoError(t, err)

	assert.Equal(t, "INV-202403-000001", first)
	assert.Equal(t, "INV-202403-000002", second)
}

func TestNumberSequenceGenerator_NotResetAcrossMonths(t *testing.T) {
	seqs := memory.NewSequenceStore()
	g := service.NewNumberSequenceGenerator(seqs, clock.Fixed{At: day("2024-01-31")})
	first, err := g.Next(context.Background(), testutil.DefaultOrgID, types.DocumentKindInvoice, "")
	require.NoError(t, err)

	g2 := service.NewNumberSequenceGenerator(seqs, clock.Fixed{At: day("2024-02-01")})
	second, err := g2.Next(context.Background(), testutil.DefaultOrgID, types.DocumentKindInvoice, "")
	require.NoError(t, err)

	assert.Equal(t, "INV-202401-000001", first)
	assert.Equal(t, "INV-202402-000002", second)
}

func TestNumberSequenceGenerator_DistinctDocumentKindsDoNotShareCounter(t *testing.T) {
	seqs := memory.NewSequenceStore()
	g := service.NewNumberSequenceGenerator(seqs, clock.Fixed{At: day("2024-01-01")})

	invNumber, err := g.Next(context.Background(), testutil.DefaultOrgID, types.DocumentKindInvoice, "")
	require.NoError(t, err)
	cnNumber, err := g.Next(context.Background(), testutil.DefaultOrgID, types.DocumentKindCreditNote, "")
	require.NoError(t, err)

	assert.Equal(t, "INV-202401-000001", invNumber)
	assert.Equal(t, "CN-202401-000001", cnNumber)
}
