package postgres

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/leasebill/billing-engine/internal/domain/recurringcharge"
	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/postgres"
	"github.com/leasebill/billing-engine/internal/types"
)

type recurringChargeRow struct {
	ID            string          `db:"id"`
	LeaseID       string          `db:"lease_id"`
	ChargeTypeID  string          `db:"charge_type_id"`
	Description   string          `db:"description"`
	MonthlyAmount decimal.Decimal `db:"monthly_amount"`
	StartDate     sql.NullTime    `db:"start_date"`
	EndDate       sql.NullTime    `db:"end_date"`
	Frequency     string          `db:"frequency"`
	Active        bool            `db:"active"`
}

type recurringChargeStore struct {
	db *postgres.DB
}

func NewRecurringChargeStore(db *postgres.DB) *recurringChargeStore {
	return &recurringChargeStore{db: db}
}

func (s *recurringChargeStore) ListActiveMonthly(ctx context.Context, orgID, leaseID string) ([]*recurringcharge.RecurringCharge, error) {
	q := s.db.Querier(ctx)
	rows, err := q.QueryxContext(ctx, `
		SELECT id, lease_id, charge_type_id, description, monthly_amount, start_date, end_date, frequency, active
		FROM recurring_charges
		WHERE org_id = $1 AND lease_id = $2 AND active = true AND frequency = $3
		ORDER BY start_date ASC`, orgID, leaseID, types.ChargeFrequencyMonthly)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to list recurring charges").Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var out []*recurringcharge.RecurringCharge
	for rows.Next() {
		var row recurringChargeRow
		if err := rows.StructScan(&row); err != nil {
			return nil, ierr.WithError(err).WithHint("failed to scan recurring charge").Mark(ierr.ErrDatabase)
		}
		rc := &recurringcharge.RecurringCharge{
			ID:            row.ID,
			LeaseID:       row.LeaseID,
			ChargeTypeID:  row.ChargeTypeID,
			Description:   row.Description,
			MonthlyAmount: row.MonthlyAmount,
			Frequency:     types.ChargeFrequency(row.Frequency),
			Active:        row.Active,
		}
		if row.StartDate.Valid {
			rc.StartDate = row.StartDate.Time
		}
		if row.EndDate.Valid {
			t := row.EndDate.Time
			rc.EndDate = &t
		}
		out = append(out, rc)
	}
	return out, nil
}
