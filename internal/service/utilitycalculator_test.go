package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leasebill/billing-engine/internal/domain/utility"
	"github.com/leasebill/billing-engine/internal/logger"
	"github.com/leasebill/billing-engine/internal/repository/memory"
	"github.com/leasebill/billing-engine/internal/service"
	"github.com/leasebill/billing-engine/internal/testutil"
	"github.com/leasebill/billing-engine/internal/types"
)

func TestUtilityCalculator_DirectAmount_PassesThrough(t *testing.T) {
	c := service.NewUtilityCalculator(memory.NewRatePlanStore(), logger.NewTestLogger())
	result, err := c.DirectAmount(dec("123.456"), types.UtilityWater)
	require.NoError(t, err)
	assert.True(t, result.Total.Equal(dec("123.46")), "got %s", result.Total)
	assert.False(t, result.IsMeterBased)
}

func TestUtilityCalculator_DirectAmount_NegativeRejected(t *testing.T) {
	c := service.NewUtilityCalculator(memory.NewRatePlanStore(), logger.NewTestLogger())
	_, err := c.DirectAmount(dec("-1"), types.UtilityWater)
	require.Error(t, err)
}

func TestUtilityCalculator_MeterFlatRate(t *testing.T) {
	c := service.NewUtilityCalculator(memory.NewRatePlanStore(), logger.NewTestLogger())
	result, err := c.MeterFlatRate(dec("100"), dec("0.15"), dec("5"), types.UtilityElectricity)
	require.NoError(t, err)
	assert.True(t, result.Total.Equal(dec("20")), "got %s", result.Total) // 100*0.15 + 5
	assert.True(t, result.IsMeterBased)
}

func TestUtilityCalculator_MeterSlabs_ZeroUnits_ZeroTotal(t *testing.T) {
	plans := memory.NewRatePlanStore()
	plans.Put(&utility.RatePlan{
		ID:     "plan_1",
		Type:   types.UtilityElectricity,
		Active: true,
		Slabs: []utility.Slab{
			{Order: 1, FromUnits: dec("0"), ToUnits: decPtr("100"), RatePerUnit: dec("0.10")},
		},
	})

	c := service.NewUtilityCalculator(plans, logger.NewTestLogger())
	result, err := c.MeterSlabs(context.Background(), testutil.DefaultOrgID, "plan_1", dec("0"), types.UtilityElectricity)
	require.NoError(t, err)
	assert.True(t, result.Total.IsZero())
	assert.Empty(t, result.SlabBreakdown)
}

func TestUtilityCalculator_MeterSlabs_SpansMultipleTiers(t *testing.T) {
	plans := memory.NewRatePlanStore()
	plans.Put(&utility.RatePlan{
		ID:     "plan_1",
		Type:   types.UtilityElectricity,
		Active: true,
		Slabs: []utility.Slab{
			{Order: 1, FromUnits: dec("0"), ToUnits: decPtr("100"), RatePerUnit: dec("0.10")},
			{Order: 2, FromUnits: dec("100"), ToUnits: nil, RatePerUnit: dec("0.20")},
		},
	})

	c := service.NewUtilityCalculator(plans, logger.NewTestLogger())
	result, err := c.MeterSlabs(context.Background(), testutil.DefaultOrgID, "plan_1", dec("150"), types.UtilityElectricity)
	require.NoError(t, err)

	require.Len(t, result.SlabBreakdown, 2)
	assert.True(t, result.SlabBreakdown[0].Units.Equal(dec("100")))
	assert.True(t, result.SlabBreakdown[1].Units.Equal(dec("50")))
	assert.True(t, result.Total.Equal(dec("20")), "got %s", result.Total) // 100*0.10 + 50*0.20
}

func TestUtilityCalculator_MeterSlabs_InactivePlanRejected(t *testing.T) {
	plans := memory.NewRatePlanStore()
	plans.Put(&utility.RatePlan{ID: "plan_1", Type: types.UtilityElectricity, Active: false, Slabs: []utility.Slab{
		{Order: 1, FromUnits: dec("0"), RatePerUnit: dec("0.1")},
	}})

	c := service.NewUtilityCalculator(plans, logger.NewTestLogger())
	_, err := c.MeterSlabs(context.Background(), testutil.DefaultOrgID, "plan_1", dec("10"), types.UtilityElectricity)
	require.Error(t, err)
}

func decPtr(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}
