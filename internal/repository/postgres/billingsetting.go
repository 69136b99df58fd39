package postgres

import (
	"context"
	"database/sql"

	"github.com/leasebill/billing-engine/internal/domain/billingsetting"
	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/postgres"
	"github.com/leasebill/billing-engine/internal/types"
)

type billingSettingRow struct {
	ID              string `db:"id"`
	LeaseID         string `db:"lease_id"`
	BillingDay      int    `db:"billing_day"`
	ProrationMethod string `db:"proration_method"`
	Version         int    `db:"version"`
}

type billingSettingStore struct {
	db *postgres.DB
}

func NewBillingSettingStore(db *postgres.DB) *billingSettingStore {
	return &billingSettingStore{db: db}
}

func (s *billingSettingStore) Get(ctx context.Context, orgID, leaseID string) (*billingsetting.Setting, bool, error) {
	var row billingSettingRow
	q := s.db.Querier(ctx)
	err := q.QueryRowxContext(ctx, `
		SELECT id, lease_id, billing_day, proration_method, version
		FROM lease_billing_settings WHERE org_id = $1 AND lease_id = $2`,
		orgID, leaseID).StructScan(&row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ierr.WithError(err).WithHint("failed to load billing setting").Mark(ierr.ErrDatabase)
	}
	return &billingsetting.Setting{
		ID:              row.ID,
		LeaseID:         row.LeaseID,
		BillingDay:      row.BillingDay,
		ProrationMethod: types.ProrationMethod(row.ProrationMethod),
		Version:         row.Version,
	}, true, nil
}
