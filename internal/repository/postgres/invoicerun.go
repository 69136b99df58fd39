package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/leasebill/billing-engine/internal/domain/invoicerun"
	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/postgres"
	"github.com/leasebill/billing-engine/internal/types"
)

type invoiceRunRow struct {
	ID              string    `db:"id"`
	OrgID           string    `db:"org_id"`
	RunAt           time.Time `db:"run_at"`
	PeriodStart     time.Time `db:"period_start"`
	PeriodEnd       time.Time `db:"period_end"`
	ProrationMethod string    `db:"proration_method"`
	IdempotencyKey  string    `db:"idempotency_key"`
	TotalLeases     int       `db:"total_leases"`
	SuccessCount    int       `db:"success_count"`
	FailureCount    int       `db:"failure_count"`
	RunStatus       string    `db:"run_status"`
	ErrorMessages   string    `db:"error_messages"`
}

type invoiceRunStore struct {
	db *postgres.DB
}

func NewInvoiceRunStore(db *postgres.DB) *invoiceRunStore {
	return &invoiceRunStore{db: db}
}

func (s *invoiceRunStore) Create(ctx context.Context, r *invoicerun.Run) error {
	q := s.db.Querier(ctx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO invoice_runs (id, org_id, run_at, period_start, period_end, proration_method,
			idempotency_key, total_leases, success_count, failure_count, run_status, error_messages,
			row_status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		r.ID, r.OrgID, r.RunAt, r.PeriodStart, r.PeriodEnd, r.ProrationMethod, r.IdempotencyKey,
		r.TotalLeases, r.SuccessCount, r.FailureCount, r.Status, strings.Join(r.ErrorMessages, "\n"),
		types.StatusActive, r.CreatedBy)
	if err != nil {
		return ierr.WithError(err).WithHint("failed to create invoice run").Mark(ierr.ErrDatabase)
	}
	return nil
}

// FindByIdempotencyKey looks up a prior run by its caller-supplied retry
// key, scoped to the org. An empty key never matches (every run with no
// key supplied is treated as distinct).
func (s *invoiceRunStore) FindByIdempotencyKey(ctx context.Context, orgID, key string) (*invoicerun.Run, bool, error) {
	if key == "" {
		return nil, false, nil
	}
	var row invoiceRunRow
	q := s.db.Querier(ctx)
	err := q.QueryRowxContext(ctx, `
		SELECT id, org_id, run_at, period_start, period_end, proration_method, idempotency_key,
			total_leases, success_count, failure_count, run_status, error_messages
		FROM invoice_runs WHERE org_id = $1 AND idempotency_key = $2`,
		orgID, key).StructScan(&row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ierr.WithError(err).WithHint("failed to look up invoice run by idempotency key").Mark(ierr.ErrDatabase)
	}
	return rowToRun(row), true, nil
}

func rowToRun(row invoiceRunRow) *invoicerun.Run {
	var errMsgs []string
	if row.ErrorMessages != "" {
		errMsgs = strings.Split(row.ErrorMessages, "\n")
	}
	return &invoicerun.Run{
		ID:              row.ID,
		RunAt:           row.RunAt,
		PeriodStart:     row.PeriodStart,
		PeriodEnd:       row.PeriodEnd,
		ProrationMethod: types.ProrationMethod(row.ProrationMethod),
		IdempotencyKey:  row.IdempotencyKey,
		TotalLeases:     row.TotalLeases,
		SuccessCount:    row.SuccessCount,
		FailureCount:    row.FailureCount,
		Status:          types.RunStatus(row.RunStatus),
		ErrorMessages:   errMsgs,
		BaseModel:       types.BaseModel{OrgID: row.OrgID},
	}
}

func (s *invoiceRunStore) Update(ctx context.Context, r *invoicerun.Run) error {
	q := s.db.Querier(ctx)
	_, err := q.ExecContext(ctx, `
		UPDATE invoice_runs SET
			total_leases = $1, success_count = $2, failure_count = $3,
			run_status = $4, error_messages = $5, updated_by = $6
		WHERE org_id = $7 AND id = $8`,
		r.TotalLeases, r.SuccessCount, r.FailureCount, r.Status,
		strings.Join(r.ErrorMessages, "\n"), r.UpdatedBy, r.OrgID, r.ID)
	if err != nil {
		return ierr.WithError(err).WithHint("failed to update invoice run").Mark(ierr.ErrDatabase)
	}
	return nil
}
