package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leasebill/billing-engine/internal/clock"
	"github.com/leasebill/billing-engine/internal/domain/chargetype"
	"github.com/leasebill/billing-engine/internal/domain/invoice"
	"github.com/leasebill/billing-engine/internal/domain/proration"
	"github.com/leasebill/billing-engine/internal/logger"
	"github.com/leasebill/billing-engine/internal/principal"
	"github.com/leasebill/billing-engine/internal/repository/memory"
	"github.com/leasebill/billing-engine/internal/service"
	"github.com/leasebill/billing-engine/internal/testutil"
	"github.com/leasebill/billing-engine/internal/types"
)

func newRunFixture(t *testing.T) (*service.InvoiceRunOrchestrator, *memory.UnitOfWork) {
	t.Helper()
	u := memory.NewUnitOfWork()
	stores := u.Stores()
	stores.ChargeTypes.(*memory.ChargeTypeStore).Put(testutil.NewChargeType(chargetype.RentCode, "Rent"))

	princ := principal.Static{Org: testutil.DefaultOrgID, User: testutil.DefaultUserID}
	fixedClock := clock.Fixed{At: day("2024-01-31")}
	gen := service.NewInvoiceGenerationService(u, proration.NewCalculator(), fixedClock, princ, logger.NewTestLogger())
	orch := service.NewInvoiceRunOrchestrator(u, gen, fixedClock, princ, logger.NewTestLogger())
	return orch, u
}

func TestInvoiceRun_AllLeasesSucceed(t *testing.T) {
	orch, u := newRunFixture(t)
	stores := u.Stores()
	stores.Leases.(*memory.LeaseStore).Put(testutil.NewLease(testutil.DefaultOrgID, "lease_1", dec("1000"), day("2024-01-01")))
	stores.Leases.(*memory.LeaseStore).Put(testutil.NewLease(testutil.DefaultOrgID, "lease_2", dec("1500"), day("2024-01-01")))

	run, err := orch.ExecuteMonthlyRent(context.Background(), day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth, "")
	require.NoError(t, err)

	assert.Equal(t, types.RunStatusCompleted, run.Status)
	assert.Equal(t, 2, run.TotalLeases)
	assert.Equal(t, 2, run.SuccessCount)
	assert.Equal(t, 0, run.FailureCount)
}

func TestInvoiceRun_NoActiveLeases_Completed(t *testing.T) {
	orch, _ := newRunFixture(t)

	run, err := orch.ExecuteMonthlyRent(context.Background(), day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth, "")
	require.NoError(t, err)

	assert.Equal(t, types.RunStatusCompleted, run.Status)
	assert.Equal(t, 0, run.TotalLeases)
}

func TestInvoiceRun_MixedOutcomes_CompletedWithErrors(t *testing.T) {
	orch, u := newRunFixture(t)
	stores := u.Stores()
	stores.Leases.(*memory.LeaseStore).Put(testutil.NewLease(testutil.DefaultOrgID, "lease_ok", dec("1000"), day("2024-01-01")))

	// lease_blocked already has an issued (non-draft) invoice for the same
	// period, so Generate refuses it without halting the run.
	stores.Leases.(*memory.LeaseStore).Put(testutil.NewLease(testutil.DefaultOrgID, "lease_blocked", dec("800"), day("2024-01-01")))
	existing := &invoice.Invoice{
		ID:            types.GenerateID(types.PrefixInvoice),
		LeaseID:       "lease_blocked",
		InvoiceNumber: "INV-202401-000001",
		PeriodStart:   day("2024-01-01"),
		PeriodEnd:     day("2024-01-31"),
		Status:        types.InvoiceStatusIssued,
		BaseModel:     types.BaseModel{OrgID: testutil.DefaultOrgID, Status: types.StatusActive},
	}
	require.NoError(t, stores.Invoices.Create(context.Background(), existing))

	run, err := orch.ExecuteMonthlyRent(context.Background(), day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth, "")
	require.NoError(t, err)

	assert.Equal(t, 2, run.TotalLeases)
	assert.Equal(t, types.RunStatusCompletedWithErrors, run.Status)
	assert.Equal(t, 1, run.SuccessCount)
	assert.Equal(t, 1, run.FailureCount)
	require.Len(t, run.ErrorMessages, 1)
}

func TestInvoiceRun_IdempotencyKey_RetryReturnsPriorRun(t *testing.T) {
	orch, u := newRunFixture(t)
	stores := u.Stores()
	stores.Leases.(*memory.LeaseStore).Put(testutil.NewLease(testutil.DefaultOrgID, "lease_1", dec("1000"), day("2024-01-01")))

	first, err := orch.ExecuteMonthlyRent(context.Background(), day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth, "retry-key-1")
	require.NoError(t, err)
	require.Equal(t, 1, first.TotalLeases)

	// A second lease appears before the retry; if the retry were to
	// re-execute, TotalLeases would change to 2.
	stores.Leases.(*memory.LeaseStore).Put(testutil.NewLease(testutil.DefaultOrgID, "lease_2", dec("500"), day("2024-01-01")))

	second, err := orch.ExecuteMonthlyRent(context.Background(), day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth, "retry-key-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, second.TotalLeases)
}

func TestInvoiceRun_DistinctIdempotencyKeys_EachExecute(t *testing.T) {
	orch, u := newRunFixture(t)
	stores := u.Stores()
	stores.Leases.(*memory.LeaseStore).Put(testutil.NewLease(testutil.DefaultOrgID, "lease_1", dec("1000"), day("2024-01-01")))

	first, err := orch.ExecuteMonthlyRent(context.Background(), day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth, "key-a")
	require.NoError(t, err)

	second, err := orch.ExecuteMonthlyRent(context.Background(), day("2024-01-01"), day("2024-01-31"), types.ProrationActualDaysInMonth, "key-b")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}
