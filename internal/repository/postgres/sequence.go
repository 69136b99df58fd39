package postgres

import (
	"context"

	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/postgres"
	"github.com/leasebill/billing-engine/internal/types"
)

// sequenceStore implements sequence.Store with the same atomic
// insert-or-increment idiom the teacher uses for invoice numbers
// (INSERT ... ON CONFLICT DO UPDATE ... RETURNING), generalized from a
// hardcoded invoice-only table to the spec's generic (org, document kind)
// axis.
type sequenceStore struct {
	db *postgres.DB
}

func NewSequenceStore(db *postgres.DB) *sequenceStore {
	return &sequenceStore{db: db}
}

func (s *sequenceStore) Next(ctx context.Context, orgID string, kind types.DocumentKind) (int64, error) {
	const query = `
		INSERT INTO number_sequences (org_id, document_kind, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (org_id, document_kind) DO UPDATE
		SET last_value = number_sequences.last_value + 1
		RETURNING last_value`

	var next int64
	row := s.db.Querier(ctx).QueryRowxContext(ctx, query, orgID, kind)
	if err := row.Scan(&next); err != nil {
		return 0, ierr.WithError(err).
			WithHint("number sequence increment failed").
			Mark(ierr.ErrDatabase)
	}
	return next, nil
}
