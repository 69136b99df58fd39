package postgres

import (
	"database/sql"
	"context"

	"github.com/shopspring/decimal"

	"github.com/leasebill/billing-engine/internal/domain/lease"
	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/postgres"
	"github.com/leasebill/billing-engine/internal/types"
)

type leaseRow struct {
	ID        string         `db:"id"`
	OrgID     string         `db:"org_id"`
	UnitID    string         `db:"unit_id"`
	Status    string         `db:"status"`
	StartDate sql.NullTime   `db:"start_date"`
	EndDate   sql.NullTime   `db:"end_date"`
	Version   int            `db:"version"`
	RowStatus string         `db:"row_status"`
}

type rentTermRow struct {
	ID            string          `db:"id"`
	LeaseID       string          `db:"lease_id"`
	MonthlyRent   decimal.Decimal `db:"monthly_rent"`
	EffectiveFrom sql.NullTime    `db:"effective_from"`
	EffectiveTo   sql.NullTime    `db:"effective_to"`
}

type leaseStore struct {
	db *postgres.DB
}

func NewLeaseStore(db *postgres.DB) *leaseStore {
	return &leaseStore{db: db}
}

func (s *leaseStore) Get(ctx context.Context, orgID, leaseID string) (*lease.Lease, error) {
	var row leaseRow
	q := s.db.Querier(ctx)
	err := q.QueryRowxContext(ctx, `
		SELECT id, org_id, unit_id, status, start_date, end_date, version, row_status
		FROM leases WHERE org_id = $1 AND id = $2 AND row_status = $3`,
		orgID, leaseID, types.StatusActive).StructScan(&row)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("lease not found").
			WithHintf("lease %s does not exist", leaseID).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to load lease").Mark(ierr.ErrDatabase)
	}

	var termRows []rentTermRow
	rows, err := q.QueryxContext(ctx, `
		SELECT id, lease_id, monthly_rent, effective_from, effective_to
		FROM rent_terms WHERE lease_id = $1 ORDER BY effective_from ASC`, leaseID)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to load rent terms").Mark(ierr.ErrDatabase)
	}
	defer rows.Close()
	for rows.Next() {
		var tr rentTermRow
		if err := rows.StructScan(&tr); err != nil {
			return nil, ierr.WithError(err).WithHint("failed to scan rent term").Mark(ierr.ErrDatabase)
		}
		termRows = append(termRows, tr)
	}

	return toDomainLease(row, termRows), nil
}

func (s *leaseStore) ListActive(ctx context.Context, orgID string) ([]*lease.Lease, error) {
	q := s.db.Querier(ctx)
	rows, err := q.QueryxContext(ctx, `
		SELECT id, org_id, unit_id, status, start_date, end_date, version, row_status
		FROM leases WHERE org_id = $1 AND status = $2 AND row_status = $3
		ORDER BY id ASC`, orgID, types.LeaseStatusActive, types.StatusActive)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to list active leases").Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var out []*lease.Lease
	for rows.Next() {
		var row leaseRow
		if err := rows.StructScan(&row); err != nil {
			return nil, ierr.WithError(err).WithHint("failed to scan lease").Mark(ierr.ErrDatabase)
		}
		l, err := s.Get(ctx, orgID, row.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *leaseStore) Update(ctx context.Context, l *lease.Lease) error {
	q := s.db.Querier(ctx)
	res, err := q.ExecContext(ctx, `
		UPDATE leases SET status = $1, version = version + 1
		WHERE org_id = $2 AND id = $3 AND version = $4`,
		l.Status, l.OrgID, l.ID, l.Version)
	if err != nil {
		return ierr.WithError(err).WithHint("failed to update lease").Mark(ierr.ErrDatabase)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).WithHint("failed to read update result").Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("lease version conflict").
			WithHintf("lease %s was modified concurrently", l.ID).
			Mark(ierr.ErrConflict)
	}
	l.Version++
	return nil
}

func toDomainLease(row leaseRow, terms []rentTermRow) *lease.Lease {
	l := &lease.Lease{
		ID:      row.ID,
		UnitID:  row.UnitID,
		Status:  types.LeaseStatus(row.Status),
		Version: row.Version,
		BaseModel: types.BaseModel{
			OrgID:  row.OrgID,
			Status: types.Status(row.RowStatus),
		},
	}
	if row.StartDate.Valid {
		l.StartDate = row.StartDate.Time
	}
	if row.EndDate.Valid {
		t := row.EndDate.Time
		l.EndDate = &t
	}
	for _, tr := range terms {
		term := &lease.RentTerm{
			ID:          tr.ID,
			LeaseID:     tr.LeaseID,
			MonthlyRent: tr.MonthlyRent,
		}
		if tr.EffectiveFrom.Valid {
			term.EffectiveFrom = tr.EffectiveFrom.Time
		}
		if tr.EffectiveTo.Valid {
			t := tr.EffectiveTo.Time
			term.EffectiveTo = &t
		}
		l.Terms = append(l.Terms, term)
	}
	return l
}
