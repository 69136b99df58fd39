package proration_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/domain/proration"
	"github.com/leasebill/billing-engine/internal/types"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestProrate_MidMonthStart_ActualDays(t *testing.T) {
	c := proration.NewCalculator()
	amount, err := c.Prorate(
		d("10000"),
		date("2024-01-15"), date("2024-01-31"),
		date("2024-01-01"), date("2024-01-31"),
		types.ProrationActualDaysInMonth,
	)
	require.NoError(t, err)
	assert.True(t, amount.Equal(d("5483.87")), "got %s", amount)
}

func TestProrate_MidMonthStart_ThirtyDayMonth(t *testing.T) {
	c := proration.NewCalculator()
	amount, err := c.Prorate(
		d("10000"),
		date("2024-01-15"), date("2024-01-31"),
		date("2024-01-01"), date("2024-01-31"),
		types.ProrationThirtyDayMonth,
	)
	require.NoError(t, err)
	assert.True(t, amount.Equal(d("5666.67")), "got %s", amount)
}

func TestProrate_ThirtyDayMonth_CanExceedNominal(t *testing.T) {
	c := proration.NewCalculator()
	amount, err := c.Prorate(
		d("3100"),
		date("2024-01-01"), date("2024-01-31"),
		date("2024-01-01"), date("2024-01-31"),
		types.ProrationThirtyDayMonth,
	)
	require.NoError(t, err)
	assert.True(t, amount.Equal(d("3203.33")), "got %s", amount)
}

func TestProrate_NoOverlap_ReturnsZero(t *testing.T) {
	c := proration.NewCalculator()
	amount, err := c.Prorate(
		d("1000"),
		date("2024-02-01"), date("2024-02-28"),
		date("2024-01-01"), date("2024-01-31"),
		types.ProrationActualDaysInMonth,
	)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
}

func TestProrate_TenantSwap_SumsToFullRent(t *testing.T) {
	c := proration.NewCalculator()
	a, err := c.Prorate(d("10000"), date("2024-01-01"), date("2024-01-15"), date("2024-01-01"), date("2024-01-31"), types.ProrationActualDaysInMonth)
	require.NoError(t, err)
	b, err := c.Prorate(d("10000"), date("2024-01-16"), date("2024-01-31"), date("2024-01-01"), date("2024-01-31"), types.ProrationActualDaysInMonth)
	require.NoError(t, err)

	assert.True(t, a.Equal(d("4838.71")), "got %s", a)
	assert.True(t, b.Equal(d("5161.29")), "got %s", b)
	assert.True(t, a.Add(b).Equal(d("10000.00")), "got %s", a.Add(b))
}

func TestProrate_NegativeAmount_InvalidArgument(t *testing.T) {
	c := proration.NewCalculator()
	_, err := c.Prorate(
		d("-1"),
		date("2024-01-01"), date("2024-01-31"),
		date("2024-01-01"), date("2024-01-31"),
		types.ProrationActualDaysInMonth,
	)
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestProrate_InvertedDates_InvalidArgument(t *testing.T) {
	c := proration.NewCalculator()
	_, err := c.Prorate(
		d("1000"),
		date("2024-01-01"), date("2024-01-31"),
		date("2024-01-31"), date("2024-01-01"),
		types.ProrationActualDaysInMonth,
	)
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}
