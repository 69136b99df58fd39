package postgres

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/leasebill/billing-engine/internal/domain/creditnote"
	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/postgres"
	"github.com/leasebill/billing-engine/internal/types"
)

type creditNoteRow struct {
	ID               string          `db:"id"`
	OrgID            string          `db:"org_id"`
	InvoiceID        string          `db:"invoice_id"`
	CreditNoteNumber string          `db:"credit_note_number"`
	Reason           string          `db:"reason"`
	Total            decimal.Decimal `db:"total"`
	AppliedAt        sql.NullTime    `db:"applied_at"`
	Version          int             `db:"version"`
	RowStatus        string          `db:"row_status"`
}

type creditNoteLineRow struct {
	ID            string          `db:"id"`
	CreditNoteID  string          `db:"credit_note_id"`
	Ordinal       int             `db:"ordinal"`
	InvoiceLineID string          `db:"invoice_line_id"`
	Description   string          `db:"description"`
	Amount        decimal.Decimal `db:"amount"`
	Total         decimal.Decimal `db:"total"`
}

type creditNoteStore struct {
	db *postgres.DB
}

func NewCreditNoteStore(db *postgres.DB) *creditNoteStore {
	return &creditNoteStore{db: db}
}

func (s *creditNoteStore) Get(ctx context.Context, orgID, id string) (*creditnote.CreditNote, error) {
	q := s.db.Querier(ctx)
	var row creditNoteRow
	err := q.QueryRowxContext(ctx, `
		SELECT id, org_id, invoice_id, credit_note_number, reason, total, applied_at, version, row_status
		FROM credit_notes WHERE org_id = $1 AND id = $2`, orgID, id).StructScan(&row)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("credit note not found").
			WithHintf("credit note %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to load credit note").Mark(ierr.ErrDatabase)
	}
	lines, err := s.loadLines(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDomainCreditNote(row, lines), nil
}

func (s *creditNoteStore) loadLines(ctx context.Context, creditNoteID string) ([]creditNoteLineRow, error) {
	q := s.db.Querier(ctx)
	rows, err := q.QueryxContext(ctx, `
		SELECT id, credit_note_id, ordinal, invoice_line_id, description, amount, total
		FROM credit_note_lines WHERE credit_note_id = $1 ORDER BY ordinal ASC`, creditNoteID)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to load credit note lines").Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var out []creditNoteLineRow
	for rows.Next() {
		var lr creditNoteLineRow
		if err := rows.StructScan(&lr); err != nil {
			return nil, ierr.WithError(err).WithHint("failed to scan credit note line").Mark(ierr.ErrDatabase)
		}
		out = append(out, lr)
	}
	return out, nil
}

func (s *creditNoteStore) ListByInvoice(ctx context.Context, orgID, invoiceID string) ([]*creditnote.CreditNote, error) {
	q := s.db.Querier(ctx)
	rows, err := q.QueryxContext(ctx, `
		SELECT id, org_id, invoice_id, credit_note_number, reason, total, applied_at, version, row_status
		FROM credit_notes WHERE org_id = $1 AND invoice_id = $2 ORDER BY credit_note_number ASC`,
		orgID, invoiceID)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to list credit notes").Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var rowList []creditNoteRow
	for rows.Next() {
		var row creditNoteRow
		if err := rows.StructScan(&row); err != nil {
			return nil, ierr.WithError(err).WithHint("failed to scan credit note").Mark(ierr.ErrDatabase)
		}
		rowList = append(rowList, row)
	}

	out := make([]*creditnote.CreditNote, 0, len(rowList))
	for _, row := range rowList {
		lines, err := s.loadLines(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, toDomainCreditNote(row, lines))
	}
	return out, nil
}

func (s *creditNoteStore) Create(ctx context.Context, cn *creditnote.CreditNote) error {
	q := s.db.Querier(ctx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO credit_notes (id, org_id, invoice_id, credit_note_number, reason, total, applied_at, version, row_status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		cn.ID, cn.OrgID, cn.InvoiceID, cn.CreditNoteNumber, cn.Reason, cn.Total, cn.AppliedAt,
		cn.Version, types.StatusActive, cn.CreatedBy)
	if err != nil {
		return ierr.WithError(err).WithHint("failed to create credit note").Mark(ierr.ErrDatabase)
	}
	return s.replaceLines(ctx, cn)
}

func (s *creditNoteStore) Update(ctx context.Context, cn *creditnote.CreditNote) error {
	q := s.db.Querier(ctx)
	res, err := q.ExecContext(ctx, `
		UPDATE credit_notes SET total = $1, applied_at = $2, version = version + 1, updated_by = $3
		WHERE org_id = $4 AND id = $5 AND version = $6`,
		cn.Total, cn.AppliedAt, cn.UpdatedBy, cn.OrgID, cn.ID, cn.Version)
	if err != nil {
		return ierr.WithError(err).WithHint("failed to update credit note").Mark(ierr.ErrDatabase)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).WithHint("failed to read update result").Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("credit note version conflict").
			WithHintf("credit note %s was modified concurrently", cn.ID).
			Mark(ierr.ErrConflict)
	}
	cn.Version++
	return s.replaceLines(ctx, cn)
}

func (s *creditNoteStore) replaceLines(ctx context.Context, cn *creditnote.CreditNote) error {
	q := s.db.Querier(ctx)
	if _, err := q.ExecContext(ctx, `DELETE FROM credit_note_lines WHERE credit_note_id = $1`, cn.ID); err != nil {
		return ierr.WithError(err).WithHint("failed to clear credit note lines").Mark(ierr.ErrDatabase)
	}
	for _, l := range cn.Lines {
		_, err := q.ExecContext(ctx, `
			INSERT INTO credit_note_lines (id, credit_note_id, ordinal, invoice_line_id, description, amount, total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			l.ID, cn.ID, l.Ordinal, l.InvoiceLineID, l.Description, l.Amount, l.Total)
		if err != nil {
			return ierr.WithError(err).WithHint("failed to insert credit note line").Mark(ierr.ErrDatabase)
		}
	}
	return nil
}

func toDomainCreditNote(row creditNoteRow, lines []creditNoteLineRow) *creditnote.CreditNote {
	cn := &creditnote.CreditNote{
		ID:               row.ID,
		InvoiceID:        row.InvoiceID,
		CreditNoteNumber: row.CreditNoteNumber,
		Reason:           types.CreditNoteReason(row.Reason),
		Total:            row.Total,
		Version:          row.Version,
		BaseModel: types.BaseModel{
			OrgID:  row.OrgID,
			Status: types.Status(row.RowStatus),
		},
	}
	if row.AppliedAt.Valid {
		t := row.AppliedAt.Time
		cn.AppliedAt = &t
	}
	for _, lr := range lines {
		cn.Lines = append(cn.Lines, &creditnote.Line{
			ID:            lr.ID,
			Ordinal:       lr.Ordinal,
			InvoiceLineID: lr.InvoiceLineID,
			Description:   lr.Description,
			Amount:        lr.Amount,
			Total:         lr.Total,
		})
	}
	return cn
}
