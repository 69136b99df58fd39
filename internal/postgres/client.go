// Package postgres wires the Postgres-backed implementation of C11's
// unit-of-work: a sqlx client plus the transaction/savepoint helper that
// internal/repository/postgres's per-aggregate stores run against.
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/leasebill/billing-engine/internal/logger"
)

// Config is the subset of internal/config's PostgresConfig this package
// needs, kept separate so this package has no import-cycle back to config.
type Config struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// DB wraps *sqlx.DB with the logger every query/transaction event is
// reported through.
type DB struct {
	*sqlx.DB
	logger *logger.Logger
}

// New opens a connection pool against cfg.DSN.
func New(cfg Config, log *logger.Logger) (*DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	return &DB{DB: db, logger: log}, nil
}

// Execer is the sqlx handle surface repository code needs: both *sqlx.DB
// and *sqlx.Tx satisfy it.
type Execer interface {
	sqlx.ExtContext
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

// Querier returns whatever sqlx handle is bound to ctx (a transaction, if
// one is in flight) or the base pool otherwise, so repository code never
// has to branch on transaction state itself.
func (db *DB) Querier(ctx context.Context) Execer {
	if tx, ok := GetTx(ctx); ok {
		return tx
	}
	return db.DB
}
