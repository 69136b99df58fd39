package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leasebill/billing-engine/internal/domain/proration"
	"github.com/leasebill/billing-engine/internal/logger"
	"github.com/leasebill/billing-engine/internal/repository/memory"
	"github.com/leasebill/billing-engine/internal/service"
	"github.com/leasebill/billing-engine/internal/testutil"
	"github.com/leasebill/billing-engine/internal/types"
)

func TestRecurringChargeCalculator_AlwaysProrates_EvenForFullPeriod(t *testing.T) {
	charges := memory.NewRecurringChargeStore()
	c := testutil.NewRecurringCharge(testutil.DefaultOrgID, "lease_1", "PARK", dec("100"), day("2024-01-01"))
	charges.Put(c)

	calc := service.NewRecurringChargeCalculator(charges, proration.NewCalculator(), logger.NewTestLogger())
	result, err := calc.Calculate(context.Background(), testutil.DefaultOrgID, "lease_1", day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth)
	require.NoError(t, err)

	require.Len(t, result.LineItems, 1)
	assert.True(t, result.Total.Equal(dec("100")), "got %s", result.Total)
}

func TestRecurringChargeCalculator_MidMonthStart_Prorated(t *testing.T) {
	charges := memory.NewRecurringChargeStore()
	c := testutil.NewRecurringCharge(testutil.DefaultOrgID, "lease_1", "PARK", dec("310"), day("2024-01-15"))
	charges.Put(c)

	calc := service.NewRecurringChargeCalculator(charges, proration.NewCalculator(), logger.NewTestLogger())
	result, err := calc.Calculate(context.Background(), testutil.DefaultOrgID, "lease_1", day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth)
	require.NoError(t, err)

	require.Len(t, result.LineItems, 1)
	assert.True(t, result.Total.LessThan(dec("310")))
}

func TestRecurringChargeCalculator_OtherLeaseNotIncluded(t *testing.T) {
	charges := memory.NewRecurringChargeStore()
	charges.Put(testutil.NewRecurringCharge(testutil.DefaultOrgID, "lease_1", "PARK", dec("100"), day("2024-01-01")))
	charges.Put(testutil.NewRecurringCharge(testutil.DefaultOrgID, "lease_2", "PARK", dec("200"), day("2024-01-01")))

	calc := service.NewRecurringChargeCalculator(charges, proration.NewCalculator(), logger.NewTestLogger())
	result, err := calc.Calculate(context.Background(), testutil.DefaultOrgID, "lease_1", day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth)
	require.NoError(t, err)

	require.Len(t, result.LineItems, 1)
	assert.True(t, result.Total.Equal(dec("100")))
}
