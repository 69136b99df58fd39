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

func newCreditNoteFixture(t *testing.T, lineAmount string) (*service.CreditNoteService, *memory.UnitOfWork, string, string) {
	t.Helper()
	u := memory.NewUnitOfWork()
	inv := &invoice.Invoice{
		ID:            types.GenerateID(types.PrefixInvoice),
		LeaseID:       "lease_1",
		InvoiceNumber: "INV-202401-000001",
		PeriodStart:   day("2024-01-01"),
		PeriodEnd:     day("2024-01-31"),
		Lines: []*invoice.Line{
			{ID: types.GenerateID(types.PrefixInvoiceLine), Ordinal: 1, ChargeTypeCode: "RENT", Amount: dec(lineAmount), Total: dec(lineAmount)},
		},
		Status: types.InvoiceStatusIssued,
		Paid:   dec("0"),
		BaseModel: types.BaseModel{
			OrgID:  testutil.DefaultOrgID,
			Status: types.StatusActive,
		},
	}
	inv.Recompute()
	inv.Balance = inv.Total.Sub(inv.Paid)
	require.NoError(t, u.Stores().Invoices.Create(context.Background(), inv))

	princ := principal.Static{Org: testutil.DefaultOrgID, User: testutil.DefaultUserID}
	svc := service.NewCreditNoteService(u, clock.Fixed{At: day("2024-02-01")}, princ, logger.NewTestLogger())
	return svc, u, inv.ID, inv.Lines[0].ID
}

func TestCreditNote_Create_SingleLineWithinCap(t *testing.T) {
	svc, _, invID, lineID := newCreditNoteFixture(t, "1000")

	cn, err := svc.Create(context.Background(), invID, types.CreditNoteReasonDiscount, []service.CreditLineRequest{
		{InvoiceLineID: lineID, Amount: dec("400"), Description: "goodwill discount"},
	})
	require.NoError(t, err)
	assert.True(t, cn.Total.Equal(dec("-400")))
	assert.Equal(t, "CN-202402-000001", cn.CreditNoteNumber)
}

// TestCreditNote_SequentialRequests_CapAcrossMultipleNotes transcribes the
// 1000/1200/400/700 scenario: a 1200 request against a 1000 line is
// rejected outright, a 400 request succeeds, and a later 700 request is
// rejected because 400+700 exceeds the 1000 line amount.
func TestCreditNote_SequentialRequests_CapAcrossMultipleNotes(t *testing.T) {
	svc, _, invID, lineID := newCreditNoteFixture(t, "1000")

	_, err := svc.Create(context.Background(), invID, types.CreditNoteReasonRefund, []service.CreditLineRequest{
		{InvoiceLineID: lineID, Amount: dec("1200")},
	})
	require.Error(t, err)
	assert.True(t, ierr.IsConflict(err))

	_, err = svc.Create(context.Background(), invID, types.CreditNoteReasonRefund, []service.CreditLineRequest{
		{InvoiceLineID: lineID, Amount: dec("400")},
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), invID, types.CreditNoteReasonRefund, []service.CreditLineRequest{
		{InvoiceLineID: lineID, Amount: dec("700")},
	})
	require.Error(t, err)
	assert.True(t, ierr.IsConflict(err))
}

func TestCreditNote_Create_DraftInvoiceRejected(t *testing.T) {
	svc, u, invID, lineID := newCreditNoteFixture(t, "1000")
	stores := u.Stores()
	inv, err := stores.Invoices.Get(context.Background(), testutil.DefaultOrgID, invID)
	require.NoError(t, err)
	inv.Status = types.InvoiceStatusDraft
	require.NoError(t, stores.Invoices.Update(context.Background(), inv))

	_, err = svc.Create(context.Background(), invID, types.CreditNoteReasonCorrection, []service.CreditLineRequest{
		{InvoiceLineID: lineID, Amount: dec("100")},
	})
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidState(err))
}

func TestCreditNote_Issue_MarksApplied(t *testing.T) {
	svc, _, invID, lineID := newCreditNoteFixture(t, "1000")
	cn, err := svc.Create(context.Background(), invID, types.CreditNoteReasonDiscount, []service.CreditLineRequest{
		{InvoiceLineID: lineID, Amount: dec("200")},
	})
	require.NoError(t, err)

	issued, err := svc.Issue(context.Background(), cn.ID)
	require.NoError(t, err)
	require.NotNil(t, issued.AppliedAt)

	_, err = svc.Issue(context.Background(), cn.ID)
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidState(err))
}
