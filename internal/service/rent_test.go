package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leasebill/billing-engine/internal/domain/lease"
	"github.com/leasebill/billing-engine/internal/domain/proration"
	"github.com/leasebill/billing-engine/internal/logger"
	"github.com/leasebill/billing-engine/internal/repository/memory"
	"github.com/leasebill/billing-engine/internal/service"
	"github.com/leasebill/billing-engine/internal/testutil"
	"github.com/leasebill/billing-engine/internal/types"
)

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRentCalculator_FullPeriod_NoProration(t *testing.T) {
	leases := memory.NewLeaseStore()
	l := testutil.NewLease(testutil.DefaultOrgID, "lease_1", dec("1000"), day("2024-01-01"))
	leases.Put(l)

	c := service.NewRentCalculator(leases, proration.NewCalculator(), logger.NewTestLogger())
	result, err := c.Calculate(context.Background(), testutil.DefaultOrgID, "lease_1", day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth)
	require.NoError(t, err)

	require.Len(t, result.LineItems, 1)
	assert.False(t, result.LineItems[0].IsProrated)
	assert.True(t, result.Total.Equal(dec("1000")), "got %s", result.Total)
}

func TestRentCalculator_MidMonthStart_Prorated(t *testing.T) {
	leases := memory.NewLeaseStore()
	l := testutil.NewLease(testutil.DefaultOrgID, "lease_1", dec("10000"), day("2024-01-15"))
	leases.Put(l)

	c := service.NewRentCalculator(leases, proration.NewCalculator(), logger.NewTestLogger())
	result, err := c.Calculate(context.Background(), testutil.DefaultOrgID, "lease_1", day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth)
	require.NoError(t, err)

	require.Len(t, result.LineItems, 1)
	assert.True(t, result.LineItems[0].IsProrated)
	assert.True(t, result.Total.Equal(dec("5483.87")), "got %s", result.Total)
}

func TestRentCalculator_OpenEndedTerm_OverlapsFuturePeriod(t *testing.T) {
	leases := memory.NewLeaseStore()
	l := testutil.NewLease(testutil.DefaultOrgID, "lease_1", dec("1000"), day("2024-01-01"))
	leases.Put(l)

	c := service.NewRentCalculator(leases, proration.NewCalculator(), logger.NewTestLogger())
	result, err := c.Calculate(context.Background(), testutil.DefaultOrgID, "lease_1", day("2024-03-01"), day("2024-03-31"), types.ProrationActualDaysInMonth)
	require.NoError(t, err)

	require.Len(t, result.LineItems, 1) // term is open-ended, still overlaps March
	assert.True(t, result.Total.Equal(dec("1000")))
}

func TestRentCalculator_MultipleTerms_RentIncreaseMidMonth_SumsAcrossTerms(t *testing.T) {
	leases := memory.NewLeaseStore()
	l := testutil.NewLease(testutil.DefaultOrgID, "lease_1", dec("1000"), day("2024-01-01"))
	splitDate := day("2024-01-16")
	l.Terms[0].EffectiveTo = &splitDate
	l.Terms = append(l.Terms, &lease.RentTerm{
		ID:            types.GenerateID(types.PrefixRentTerm),
		LeaseID:       "lease_1",
		MonthlyRent:   dec("1200"),
		EffectiveFrom: splitDate,
	})
	leases.Put(l)

	c := service.NewRentCalculator(leases, proration.NewCalculator(), logger.NewTestLogger())
	result, err := c.Calculate(context.Background(), testutil.DefaultOrgID, "lease_1", day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth)
	require.NoError(t, err)

	require.Len(t, result.LineItems, 2)
	assert.True(t, result.LineItems[0].IsProrated)
	assert.True(t, result.LineItems[1].IsProrated)
	assert.True(t, result.Total.GreaterThan(dec("1000")))
}
