package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leasebill/billing-engine/internal/clock"
	"github.com/leasebill/billing-engine/internal/domain/invoice"
	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/logger"
	"github.com/leasebill/billing-engine/internal/principal"
	"github.com/leasebill/billing-engine/internal/repository/memory"
	"github.com/leasebill/billing-engine/internal/service"
	"github.com/leasebill/billing-engine/internal/testutil"
	"github.com/leasebill/billing-engine/internal/types"
)

func seedDraftInvoice(t *testing.T, u *memory.UnitOfWork, total string) *invoice.Invoice {
	t.Helper()
	inv := &invoice.Invoice{
		ID:            types.GenerateID(types.PrefixInvoice),
		LeaseID:       "lease_1",
		InvoiceNumber: "INV-202401-000001",
		PeriodStart:   day("2024-01-01"),
		PeriodEnd:     day("2024-01-31"),
		Lines: []*invoice.Line{
			{ID: types.GenerateID(types.PrefixInvoiceLine), Ordinal: 1, ChargeTypeCode: "RENT", Amount: dec(total), Total: dec(total)},
		},
		Status: types.InvoiceStatusDraft,
		Paid:   dec("0"),
		BaseModel: types.BaseModel{
			OrgID:  testutil.DefaultOrgID,
			Status: types.StatusActive,
		},
	}
	inv.Recompute()
	inv.Balance = inv.Total.Sub(inv.Paid)
	require.NoError(t, u.Stores().Invoices.Create(context.Background(), inv))
	return inv
}

func newLifecycleFixture() (*service.InvoiceLifecycleService, *memory.UnitOfWork) {
	u := memory.NewUnitOfWork()
	princ := principal.Static{Org: testutil.DefaultOrgID, User: testutil.DefaultUserID}
	svc := service.NewInvoiceLifecycleService(u, clock.Fixed{At: day("2024-02-01")}, princ, logger.NewTestLogger())
	return svc, u
}

func TestInvoiceLifecycle_Issue_DraftToIssued(t *testing.T) {
	svc, u := newLifecycleFixture()
	inv := seedDraftInvoice(t, u, "1000")

	issued, err := svc.Issue(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, types.InvoiceStatusIssued, issued.Status)
	require.NotNil(t, issued.IssuedAt)
}

func TestInvoiceLifecycle_Issue_ZeroLinesRejected(t *testing.T) {
	svc, u := newLifecycleFixture()
	inv := seedDraftInvoice(t, u, "1000")
	inv.Lines = nil
	inv.Recompute()
	require.NoError(t, u.Stores().Invoices.Update(context.Background(), inv))

	_, err := svc.Issue(context.Background(), inv.ID)
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidState(err))
}

func TestInvoiceLifecycle_Void_RequiresReason(t *testing.T) {
	svc, u := newLifecycleFixture()
	inv := seedDraftInvoice(t, u, "1000")
	_, err := svc.Issue(context.Background(), inv.ID)
	require.NoError(t, err)

	_, err = svc.Void(context.Background(), inv.ID, "  ")
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestInvoiceLifecycle_Void_AfterPaymentForbidden(t *testing.T) {
	svc, u := newLifecycleFixture()
	inv := seedDraftInvoice(t, u, "1000")
	_, err := svc.Issue(context.Background(), inv.ID)
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), inv.ID, dec("100"))
	require.NoError(t, err)

	_, err = svc.Void(context.Background(), inv.ID, "tenant dispute")
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidState(err))
}

func TestInvoiceLifecycle_RecordPayment_PartialThenFull(t *testing.T) {
	svc, u := newLifecycleFixture()
	inv := seedDraftInvoice(t, u, "1000")
	_, err := svc.Issue(context.Background(), inv.ID)
	require.NoError(t, err)

	partial, err := svc.RecordPayment(context.Background(), inv.ID, dec("400"))
	require.NoError(t, err)
	assert.Equal(t, types.InvoiceStatusPartiallyPaid, partial.Status)
	assert.True(t, partial.Balance.Equal(dec("600")))

	full, err := svc.RecordPayment(context.Background(), inv.ID, dec("600"))
	require.NoError(t, err)
	assert.Equal(t, types.InvoiceStatusPaid, full.Status)
	assert.True(t, full.Balance.IsZero())
	require.NotNil(t, full.PaidAt)
}

func TestInvoiceLifecycle_RecordPayment_ExceedsTotalRejected(t *testing.T) {
	svc, u := newLifecycleFixture()
	inv := seedDraftInvoice(t, u, "1000")
	_, err := svc.Issue(context.Background(), inv.ID)
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), inv.ID, dec("1500"))
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}
