package postgres

import (
	"context"
	"database/sql"

	"github.com/leasebill/billing-engine/internal/domain/chargetype"
	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/postgres"
)

type chargeTypeRow struct {
	Code          string `db:"code"`
	Name          string `db:"name"`
	OrgID         sql.NullString `db:"org_id"`
	SystemDefined bool   `db:"system_defined"`
	Active        bool   `db:"active"`
}

type chargeTypeStore struct {
	db *postgres.DB
}

func NewChargeTypeStore(db *postgres.DB) *chargeTypeStore {
	return &chargeTypeStore{db: db}
}

// Resolve looks up an org-scoped entry for code first, falling back to a
// system-defined entry, per spec.md §4.6.
func (s *chargeTypeStore) Resolve(ctx context.Context, orgID, code string) (*chargetype.ChargeType, bool, error) {
	q := s.db.Querier(ctx)

	var row chargeTypeRow
	err := q.QueryRowxContext(ctx, `
		SELECT code, name, org_id, system_defined, active
		FROM charge_types WHERE code = $1 AND org_id = $2`, code, orgID).StructScan(&row)
	if err == nil {
		return toDomainChargeType(row), true, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, ierr.WithError(err).WithHint("failed to resolve charge type").Mark(ierr.ErrDatabase)
	}

	err = q.QueryRowxContext(ctx, `
		SELECT code, name, org_id, system_defined, active
		FROM charge_types WHERE code = $1 AND system_defined = true`, code).StructScan(&row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ierr.WithError(err).WithHint("failed to resolve charge type").Mark(ierr.ErrDatabase)
	}
	return toDomainChargeType(row), true, nil
}

func toDomainChargeType(row chargeTypeRow) *chargetype.ChargeType {
	return &chargetype.ChargeType{
		Code:          row.Code,
		Name:          row.Name,
		OrgID:         row.OrgID.String,
		SystemDefined: row.SystemDefined,
		Active:        row.Active,
	}
}
