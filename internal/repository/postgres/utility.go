package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leasebill/billing-engine/internal/domain/utility"
	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/postgres"
	"github.com/leasebill/billing-engine/internal/types"
)

type ratePlanRow struct {
	ID     string `db:"id"`
	Type   string `db:"utility_type"`
	Active bool   `db:"active"`
}

type ratePlanSlabRow struct {
	RatePlanID  string          `db:"rate_plan_id"`
	Ord         int             `db:"slab_order"`
	FromUnits   decimal.Decimal `db:"from_units"`
	ToUnits     sql.NullString  `db:"to_units"`
	RatePerUnit decimal.Decimal `db:"rate_per_unit"`
	FixedCharge decimal.Decimal `db:"fixed_charge"`
}

type ratePlanStore struct {
	db *postgres.DB
}

func NewRatePlanStore(db *postgres.DB) *ratePlanStore {
	return &ratePlanStore{db: db}
}

func (s *ratePlanStore) Get(ctx context.Context, orgID, ratePlanID string) (*utility.RatePlan, error) {
	q := s.db.Querier(ctx)
	var row ratePlanRow
	err := q.QueryRowxContext(ctx, `
		SELECT id, utility_type, active FROM utility_rate_plans WHERE org_id = $1 AND id = $2`,
		orgID, ratePlanID).StructScan(&row)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("rate plan not found").
			WithHintf("rate plan %s does not exist", ratePlanID).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to load rate plan").Mark(ierr.ErrDatabase)
	}

	rows, err := q.QueryxContext(ctx, `
		SELECT rate_plan_id, slab_order, from_units, to_units, rate_per_unit, fixed_charge
		FROM utility_rate_slabs WHERE rate_plan_id = $1 ORDER BY slab_order ASC`, ratePlanID)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to load rate slabs").Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	plan := &utility.RatePlan{
		ID:     row.ID,
		Type:   types.UtilityType(row.Type),
		Active: row.Active,
	}
	for rows.Next() {
		var sr ratePlanSlabRow
		if err := rows.StructScan(&sr); err != nil {
			return nil, ierr.WithError(err).WithHint("failed to scan rate slab").Mark(ierr.ErrDatabase)
		}
		slab := utility.Slab{
			Order:       sr.Ord,
			FromUnits:   sr.FromUnits,
			RatePerUnit: sr.RatePerUnit,
			FixedCharge: sr.FixedCharge,
		}
		if sr.ToUnits.Valid {
			d, err := decimal.NewFromString(sr.ToUnits.String)
			if err != nil {
				return nil, ierr.WithError(err).WithHint("failed to parse slab upper bound").Mark(ierr.ErrDatabase)
			}
			slab.ToUnits = &d
		}
		plan.Slabs = append(plan.Slabs, slab)
	}
	return plan, nil
}

type utilityStatementRow struct {
	ID            string          `db:"id"`
	OrgID         string          `db:"org_id"`
	LeaseID       string          `db:"lease_id"`
	UtilityType   string          `db:"utility_type"`
	PeriodStart   time.Time       `db:"period_start"`
	PeriodEnd     time.Time       `db:"period_end"`
	IsMeterBased  bool            `db:"is_meter_based"`
	UnitsConsumed decimal.Decimal `db:"units_consumed"`
	Total         decimal.Decimal `db:"total"`
	Version       int             `db:"version"`
	IsFinal       bool            `db:"is_final"`
	RowStatus     string          `db:"row_status"`
}

type utilityStatementSlabRow struct {
	StatementID string          `db:"statement_id"`
	SlabOrder   int             `db:"slab_order"`
	Units       decimal.Decimal `db:"units"`
	Amount      decimal.Decimal `db:"amount"`
}

type utilityStatementStore struct {
	db *postgres.DB
}

func NewUtilityStatementStore(db *postgres.DB) *utilityStatementStore {
	return &utilityStatementStore{db: db}
}

func (s *utilityStatementStore) Versions(ctx context.Context, orgID, leaseID string, utilityType types.UtilityType, periodStart, periodEnd time.Time) ([]*utility.Statement, error) {
	q := s.db.Querier(ctx)
	rows, err := q.QueryxContext(ctx, `
		SELECT id, org_id, lease_id, utility_type, period_start, period_end, is_meter_based,
		       units_consumed, total, version, is_final, row_status
		FROM utility_statements
		WHERE org_id = $1 AND lease_id = $2 AND utility_type = $3 AND period_start = $4 AND period_end = $5
		ORDER BY version ASC`, orgID, leaseID, utilityType, periodStart, periodEnd)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to list utility statement versions").Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var rowList []utilityStatementRow
	for rows.Next() {
		var row utilityStatementRow
		if err := rows.StructScan(&row); err != nil {
			return nil, ierr.WithError(err).WithHint("failed to scan utility statement").Mark(ierr.ErrDatabase)
		}
		rowList = append(rowList, row)
	}

	out := make([]*utility.Statement, 0, len(rowList))
	for _, row := range rowList {
		slabs, err := s.loadSlabs(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, toDomainStatement(row, slabs))
	}
	return out, nil
}

func (s *utilityStatementStore) loadSlabs(ctx context.Context, statementID string) ([]utilityStatementSlabRow, error) {
	q := s.db.Querier(ctx)
	rows, err := q.QueryxContext(ctx, `
		SELECT statement_id, slab_order, units, amount
		FROM utility_statement_slabs WHERE statement_id = $1 ORDER BY slab_order ASC`, statementID)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to load statement slab breakdown").Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var out []utilityStatementSlabRow
	for rows.Next() {
		var sr utilityStatementSlabRow
		if err := rows.StructScan(&sr); err != nil {
			return nil, ierr.WithError(err).WithHint("failed to scan statement slab").Mark(ierr.ErrDatabase)
		}
		out = append(out, sr)
	}
	return out, nil
}

// Insert rejects a second is-final statement for the same key via a
// partial unique index on (org_id, lease_id, utility_type, period_start,
// period_end) WHERE is_final, surfaced here as a unique_violation.
func (s *utilityStatementStore) Insert(ctx context.Context, st *utility.Statement) error {
	q := s.db.Querier(ctx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO utility_statements (id, org_id, lease_id, utility_type, period_start, period_end,
			is_meter_based, units_consumed, total, version, is_final, row_status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		st.ID, st.OrgID, st.LeaseID, st.Type, st.PeriodStart, st.PeriodEnd,
		st.IsMeterBased, st.UnitsConsumed, st.Total, st.Version, st.IsFinal,
		types.StatusActive, st.CreatedBy)
	if isUniqueViolation(err) {
		return ierr.WithError(err).
			WithHintf("a final utility statement already exists for lease %s", st.LeaseID).
			Mark(ierr.ErrConflict)
	}
	if err != nil {
		return ierr.WithError(err).WithHint("failed to insert utility statement").Mark(ierr.ErrDatabase)
	}
	for _, c := range st.SlabBreakdown {
		_, err := q.ExecContext(ctx, `
			INSERT INTO utility_statement_slabs (statement_id, slab_order, units, amount)
			VALUES ($1, $2, $3, $4)`, st.ID, c.SlabOrder, c.Units, c.Amount)
		if err != nil {
			return ierr.WithError(err).WithHint("failed to insert statement slab contribution").Mark(ierr.ErrDatabase)
		}
	}
	return nil
}

func toDomainStatement(row utilityStatementRow, slabs []utilityStatementSlabRow) *utility.Statement {
	st := &utility.Statement{
		ID:            row.ID,
		LeaseID:       row.LeaseID,
		Type:          types.UtilityType(row.UtilityType),
		PeriodStart:   row.PeriodStart,
		PeriodEnd:     row.PeriodEnd,
		IsMeterBased:  row.IsMeterBased,
		UnitsConsumed: row.UnitsConsumed,
		Total:         row.Total,
		Version:       row.Version,
		IsFinal:       row.IsFinal,
		BaseModel: types.BaseModel{
			OrgID:  row.OrgID,
			Status: types.Status(row.RowStatus),
		},
	}
	for _, sr := range slabs {
		st.SlabBreakdown = append(st.SlabBreakdown, utility.SlabContribution{
			SlabOrder: sr.SlabOrder,
			Units:     sr.Units,
			Amount:    sr.Amount,
		})
	}
	return st
}
