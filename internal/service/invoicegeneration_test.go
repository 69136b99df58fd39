package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leasebill/billing-engine/internal/clock"
	"github.com/leasebill/billing-engine/internal/domain/billingsetting"
	"github.com/leasebill/billing-engine/internal/domain/chargetype"
	"github.com/leasebill/billing-engine/internal/domain/proration"
	"github.com/leasebill/billing-engine/internal/logger"
	"github.com/leasebill/billing-engine/internal/principal"
	"github.com/leasebill/billing-engine/internal/repository/memory"
	"github.com/leasebill/billing-engine/internal/service"
	"github.com/leasebill/billing-engine/internal/testutil"
	"github.com/leasebill/billing-engine/internal/types"
)

func newGenerationFixture(t *testing.T) (*service.InvoiceGenerationService, *memory.UnitOfWork) {
	t.Helper()
	u := memory.NewUnitOfWork()
	stores := u.Stores()
	stores.ChargeTypes.(*memory.ChargeTypeStore).Put(testutil.NewChargeType(chargetype.RentCode, "Rent"))
	stores.ChargeTypes.(*memory.ChargeTypeStore).Put(testutil.NewChargeType("PARK", "Parking"))
	stores.Leases.(*memory.LeaseStore).Put(testutil.NewLease(testutil.DefaultOrgID, "lease_1", dec("1000"), day("2024-01-01")))
	stores.RecurringCharges.(*memory.RecurringChargeStore).Put(testutil.NewRecurringCharge(testutil.DefaultOrgID, "lease_1", "PARK", dec("50"), day("2024-01-01")))

	princ := principal.Static{Org: testutil.DefaultOrgID, User: testutil.DefaultUserID}
	svc := service.NewInvoiceGenerationService(u, proration.NewCalculator(), clock.Fixed{At: day("2024-01-31")}, princ, logger.NewTestLogger())
	return svc, u
}

func TestInvoiceGeneration_Create_FirstCall(t *testing.T) {
	svc, _ := newGenerationFixture(t)
	result, err := svc.Generate(context.Background(), "lease_1", day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth)
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.False(t, result.WasUpdated)
	assert.Equal(t, types.InvoiceStatusDraft, result.Invoice.Status)
	require.Len(t, result.Invoice.Lines, 2)
	assert.True(t, result.Invoice.Total.Equal(dec("1050")), "got %s", result.Invoice.Total)
}

func TestInvoiceGeneration_Regenerate_DraftIsReplaced(t *testing.T) {
	svc, u := newGenerationFixture(t)
	first, err := svc.Generate(context.Background(), "lease_1", day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth)
	require.NoError(t, err)

	stores := u.Stores()
	charges := stores.RecurringCharges.(*memory.RecurringChargeStore)
	charges.Put(testutil.NewRecurringCharge(testutil.DefaultOrgID, "lease_1", "PARK", dec("75"), day("2024-01-01")))

	second, err := svc.Generate(context.Background(), "lease_1", day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth)
	require.NoError(t, err)

	require.True(t, second.Success)
	assert.True(t, second.WasUpdated)
	assert.Equal(t, first.Invoice.ID, second.Invoice.ID)
	assert.Equal(t, first.Invoice.InvoiceNumber, second.Invoice.InvoiceNumber)
	assert.True(t, second.Invoice.Total.GreaterThan(first.Invoice.Total))
}

func TestInvoiceGeneration_IssuedInvoiceBlocksRegeneration(t *testing.T) {
	svc, u := newGenerationFixture(t)
	first, err := svc.Generate(context.Background(), "lease_1", day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth)
	require.NoError(t, err)

	lifecycle := service.NewInvoiceLifecycleService(u, clock.Fixed{At: day("2024-01-31")}, principal.Static{Org: testutil.DefaultOrgID}, logger.NewTestLogger())
	_, err = lifecycle.Issue(context.Background(), first.Invoice.ID)
	require.NoError(t, err)

	second, err := svc.Generate(context.Background(), "lease_1", day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth)
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.NotEmpty(t, second.ErrorMessage)
}

func TestInvoiceGeneration_InactiveLeaseRejected(t *testing.T) {
	svc, u := newGenerationFixture(t)
	stores := u.Stores()
	l := testutil.NewLease(testutil.DefaultOrgID, "lease_2", dec("500"), day("2024-01-01"))
	l.Status = types.LeaseStatusEnded
	stores.Leases.(*memory.LeaseStore).Put(l)

	_, err := svc.Generate(context.Background(), "lease_2", day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth)
	require.Error(t, err)
}

func TestInvoiceGeneration_UtilityInputs_EmittedAsUtilitySourceLines(t *testing.T) {
	svc, u := newGenerationFixture(t)
	u.Stores().ChargeTypes.(*memory.ChargeTypeStore).Put(testutil.NewChargeType(chargetype.UtilityCode(types.UtilityElectricity), "Electricity"))

	result, err := svc.Generate(context.Background(), "lease_1", day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth,
		service.UtilityLine{Type: types.UtilityElectricity, Description: "January electricity", Amount: dec("42.50"), SourceRefID: "stmt_1"})
	require.NoError(t, err)

	require.True(t, result.Success)
	found := false
	for _, l := range result.Invoice.Lines {
		if l.Source == types.InvoiceLineSourceUtility {
			found = true
			assert.Equal(t, "stmt_1", l.SourceRefID)
			assert.True(t, l.Amount.Equal(dec("42.50")))
		}
	}
	assert.True(t, found, "expected a utility-sourced line")
	assert.True(t, result.Invoice.Total.Equal(dec("1092.50")), "got %s", result.Invoice.Total)
}

func TestInvoiceGeneration_UtilityInputs_UnresolvedChargeTypeSkipped(t *testing.T) {
	svc, _ := newGenerationFixture(t)

	result, err := svc.Generate(context.Background(), "lease_1", day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth,
		service.UtilityLine{Type: types.UtilityGas, Amount: dec("10")})
	require.NoError(t, err)

	for _, l := range result.Invoice.Lines {
		assert.NotEqual(t, types.InvoiceLineSourceUtility, l.Source)
	}
}

func TestInvoiceGeneration_UtilityInputs_NegativeAmountRejected(t *testing.T) {
	svc, _ := newGenerationFixture(t)

	_, err := svc.Generate(context.Background(), "lease_1", day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth,
		service.UtilityLine{Type: types.UtilityWater, Amount: dec("-5")})
	require.Error(t, err)
}

func TestInvoiceGeneration_BillingSettingOverridesDefaultProrationMethod(t *testing.T) {
	svc, u := newGenerationFixture(t)
	stores := u.Stores()
	// A term starting mid-February prorates differently under
	// ActualDaysInMonth (29-day Feb 2024) vs ThirtyDayMonth.
	stores.Leases.(*memory.LeaseStore).Put(testutil.NewLease(testutil.DefaultOrgID, "lease_override", dec("2900"), day("2024-02-15")))
	stores.BillingSettings.(*memory.BillingSettingStore).Put(&billingsetting.Setting{
		ID:              "setting_1",
		LeaseID:         "lease_override",
		ProrationMethod: types.ProrationActualDaysInMonth,
		BaseModel:       types.BaseModel{OrgID: testutil.DefaultOrgID},
	})

	// Passed-in method is deliberately the opposite of the lease's setting.
	overridden, err := svc.Generate(context.Background(), "lease_override", day("2024-02-01"), day("2024-02-29"), types.ProrationThirtyDayMonth)
	require.NoError(t, err)

	stores.Leases.(*memory.LeaseStore).Put(testutil.NewLease(testutil.DefaultOrgID, "lease_plain", dec("2900"), day("2024-02-15")))
	plain, err := svc.Generate(context.Background(), "lease_plain", day("2024-02-01"), day("2024-02-29"), types.ProrationThirtyDayMonth)
	require.NoError(t, err)

	assert.False(t, overridden.Invoice.Total.Equal(plain.Invoice.Total),
		"expected the lease's billing setting to override the passed-in proration method")
}
