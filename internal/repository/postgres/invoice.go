package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leasebill/billing-engine/internal/domain/invoice"
	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/postgres"
	"github.com/leasebill/billing-engine/internal/types"
)

type invoiceRow struct {
	ID            string         `db:"id"`
	OrgID         string         `db:"org_id"`
	LeaseID       string         `db:"lease_id"`
	InvoiceNumber string         `db:"invoice_number"`
	PeriodStart   time.Time      `db:"period_start"`
	PeriodEnd     time.Time      `db:"period_end"`
	Subtotal      decimal.Decimal `db:"subtotal"`
	Tax           decimal.Decimal `db:"tax"`
	Total         decimal.Decimal `db:"total"`
	Paid          decimal.Decimal `db:"paid"`
	Balance       decimal.Decimal `db:"balance"`
	InvStatus     string         `db:"invoice_status"`
	IssuedAt      sql.NullTime   `db:"issued_at"`
	PaidAt        sql.NullTime   `db:"paid_at"`
	VoidedAt      sql.NullTime   `db:"voided_at"`
	VoidReason    string         `db:"void_reason"`
	Version       int            `db:"version"`
	RowStatus     string         `db:"row_status"`
}

type invoiceLineRow struct {
	ID             string          `db:"id"`
	InvoiceID      string          `db:"invoice_id"`
	Ordinal        int             `db:"ordinal"`
	ChargeTypeCode string          `db:"charge_type_code"`
	Description    string          `db:"description"`
	Amount         decimal.Decimal `db:"amount"`
	TaxAmount      decimal.Decimal `db:"tax_amount"`
	Total          decimal.Decimal `db:"total"`
	Source         string          `db:"source"`
	SourceRefID    string          `db:"source_ref_id"`
}

type invoiceStore struct {
	db *postgres.DB
}

func NewInvoiceStore(db *postgres.DB) *invoiceStore {
	return &invoiceStore{db: db}
}

func (s *invoiceStore) Get(ctx context.Context, orgID, id string) (*invoice.Invoice, error) {
	q := s.db.Querier(ctx)
	var row invoiceRow
	err := q.QueryRowxContext(ctx, `
		SELECT id, org_id, lease_id, invoice_number, period_start, period_end,
		       subtotal, tax, total, paid, balance, invoice_status,
		       issued_at, paid_at, voided_at, void_reason, version, row_status
		FROM invoices WHERE org_id = $1 AND id = $2 AND row_status = $3`,
		orgID, id, types.StatusActive).StructScan(&row)
	if err == sql.ErrNoRows {
		return nil, ierr.WithError(invoice.ErrNotFound).
			WithHintf("invoice %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to load invoice").Mark(ierr.ErrDatabase)
	}

	lines, err := s.loadLines(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDomainInvoice(row, lines), nil
}

func (s *invoiceStore) loadLines(ctx context.Context, invoiceID string) ([]invoiceLineRow, error) {
	q := s.db.Querier(ctx)
	rows, err := q.QueryxContext(ctx, `
		SELECT id, invoice_id, ordinal, charge_type_code, description, amount, tax_amount, total, source, source_ref_id
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY ordinal ASC`, invoiceID)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to load invoice lines").Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var out []invoiceLineRow
	for rows.Next() {
		var lr invoiceLineRow
		if err := rows.StructScan(&lr); err != nil {
			return nil, ierr.WithError(err).WithHint("failed to scan invoice line").Mark(ierr.ErrDatabase)
		}
		out = append(out, lr)
	}
	return out, nil
}

func (s *invoiceStore) FindByLeaseAndPeriod(ctx context.Context, orgID, leaseID string, periodStart, periodEnd time.Time) (*invoice.Invoice, bool, error) {
	q := s.db.Querier(ctx)
	var id string
	err := q.QueryRowxContext(ctx, `
		SELECT id FROM invoices
		WHERE org_id = $1 AND lease_id = $2 AND period_start = $3 AND period_end = $4 AND row_status = $5`,
		orgID, leaseID, periodStart, periodEnd, types.StatusActive).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ierr.WithError(err).WithHint("failed to probe existing invoice").Mark(ierr.ErrDatabase)
	}
	inv, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, false, err
	}
	return inv, true, nil
}

func (s *invoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	q := s.db.Querier(ctx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO invoices (id, org_id, lease_id, invoice_number, period_start, period_end,
			subtotal, tax, total, paid, balance, invoice_status, version, row_status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		inv.ID, inv.OrgID, inv.LeaseID, inv.InvoiceNumber, inv.PeriodStart, inv.PeriodEnd,
		inv.Subtotal, inv.Tax, inv.Total, inv.Paid, inv.Balance, inv.Status, inv.Version,
		types.StatusActive, inv.CreatedBy)
	if err != nil {
		return ierr.WithError(err).WithHint("failed to create invoice").Mark(ierr.ErrDatabase)
	}
	return s.replaceLines(ctx, inv)
}

func (s *invoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	q := s.db.Querier(ctx)
	res, err := q.ExecContext(ctx, `
		UPDATE invoices SET
			subtotal = $1, tax = $2, total = $3, paid = $4, balance = $5,
			invoice_status = $6, issued_at = $7, paid_at = $8, voided_at = $9,
			void_reason = $10, version = version + 1, updated_by = $11
		WHERE org_id = $12 AND id = $13 AND version = $14`,
		inv.Subtotal, inv.Tax, inv.Total, inv.Paid, inv.Balance,
		inv.Status, inv.IssuedAt, inv.PaidAt, inv.VoidedAt, inv.VoidReason, inv.UpdatedBy,
		inv.OrgID, inv.ID, inv.Version)
	if err != nil {
		return ierr.WithError(err).WithHint("failed to update invoice").Mark(ierr.ErrDatabase)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).WithHint("failed to read update result").Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("invoice version conflict").
			WithHintf("invoice %s was modified concurrently", inv.ID).
			Mark(ierr.ErrConflict)
	}
	inv.Version++
	return s.replaceLines(ctx, inv)
}

// replaceLines deletes and reinserts the full line set, which is always
// correct since C6 regenerates from scratch rather than diffing lines.
func (s *invoiceStore) replaceLines(ctx context.Context, inv *invoice.Invoice) error {
	q := s.db.Querier(ctx)
	if _, err := q.ExecContext(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, inv.ID); err != nil {
		return ierr.WithError(err).WithHint("failed to clear invoice lines").Mark(ierr.ErrDatabase)
	}
	for _, l := range inv.Lines {
		_, err := q.ExecContext(ctx, `
			INSERT INTO invoice_lines (id, invoice_id, ordinal, charge_type_code, description, amount, tax_amount, total, source, source_ref_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			l.ID, inv.ID, l.Ordinal, l.ChargeTypeCode, l.Description, l.Amount, l.TaxAmount, l.Total, l.Source, l.SourceRefID)
		if err != nil {
			return ierr.WithError(err).WithHint("failed to insert invoice line").Mark(ierr.ErrDatabase)
		}
	}
	return nil
}

func (s *invoiceStore) SoftDelete(ctx context.Context, orgID, id string) error {
	q := s.db.Querier(ctx)
	_, err := q.ExecContext(ctx, `
		UPDATE invoices SET row_status = $1 WHERE org_id = $2 AND id = $3 AND invoice_status = $4`,
		types.StatusDeleted, orgID, id, types.InvoiceStatusDraft)
	if err != nil {
		return ierr.WithError(err).WithHint("failed to soft delete invoice").Mark(ierr.ErrDatabase)
	}
	return nil
}

func toDomainInvoice(row invoiceRow, lines []invoiceLineRow) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:            row.ID,
		LeaseID:       row.LeaseID,
		InvoiceNumber: row.InvoiceNumber,
		PeriodStart:   row.PeriodStart,
		PeriodEnd:     row.PeriodEnd,
		Subtotal:      row.Subtotal,
		Tax:           row.Tax,
		Total:         row.Total,
		Paid:          row.Paid,
		Balance:       row.Balance,
		Status:        types.InvoiceStatus(row.InvStatus),
		VoidReason:    row.VoidReason,
		Version:       row.Version,
		BaseModel: types.BaseModel{
			OrgID:  row.OrgID,
			Status: types.Status(row.RowStatus),
		},
	}
	if row.IssuedAt.Valid {
		t := row.IssuedAt.Time
		inv.IssuedAt = &t
	}
	if row.PaidAt.Valid {
		t := row.PaidAt.Time
		inv.PaidAt = &t
	}
	if row.VoidedAt.Valid {
		t := row.VoidedAt.Time
		inv.VoidedAt = &t
	}
	for _, lr := range lines {
		inv.Lines = append(inv.Lines, &invoice.Line{
			ID:             lr.ID,
			Ordinal:        lr.Ordinal,
			ChargeTypeCode: lr.ChargeTypeCode,
			Description:    lr.Description,
			Amount:         lr.Amount,
			TaxAmount:      lr.TaxAmount,
			Total:          lr.Total,
			Source:         types.InvoiceLineSource(lr.Source),
			SourceRefID:    lr.SourceRefID,
		})
	}
	return inv
}
