package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/leasebill/billing-engine/internal/types"
)

// txKey is the context key type under which the active transaction is
// stored.
type txKey struct{}

// Tx wraps sqlx.Tx to support nested transactions via savepoints, so a
// service that calls another transactional helper composes instead of
// double-beginning.
type Tx struct {
	*sqlx.Tx
	savepointID int
	ID          string
}

// GetTx retrieves the transaction carried on ctx, if any.
func GetTx(ctx context.Context) (*Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*Tx)
	return tx, ok
}

// BeginTx starts a new transaction, or a savepoint if one is already open
// on ctx.
func (db *DB) BeginTx(ctx context.Context) (context.Context, *Tx, error) {
	if tx, ok := GetTx(ctx); ok {
		tx.savepointID++
		savepoint := fmt.Sprintf("sp_%d", tx.savepointID)
		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+savepoint); err != nil {
			return ctx, nil, fmt.Errorf("create savepoint: %w", err)
		}
		return ctx, tx, nil
	}

	sqlxTx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return ctx, nil, fmt.Errorf("begin transaction: %w", err)
	}
	tx := &Tx{Tx: sqlxTx, ID: types.GenerateID("txn")}
	return context.WithValue(ctx, txKey{}, tx), tx, nil
}

// CommitTx commits the current transaction level (or releases the current
// savepoint for a nested call).
func (db *DB) CommitTx(ctx context.Context) error {
	tx, ok := GetTx(ctx)
	if !ok {
		return fmt.Errorf("no transaction in context")
	}
	if tx.savepointID > 0 {
		savepoint := fmt.Sprintf("sp_%d", tx.savepointID)
		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+savepoint); err != nil {
			return fmt.Errorf("release savepoint: %w", err)
		}
		tx.savepointID--
		return nil
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RollbackTx rolls back the current transaction level (or to the current
// savepoint for a nested call).
func (db *DB) RollbackTx(ctx context.Context) error {
	tx, ok := GetTx(ctx)
	if !ok {
		return fmt.Errorf("no transaction in context")
	}
	if tx.savepointID > 0 {
		savepoint := fmt.Sprintf("sp_%d", tx.savepointID)
		if _, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); err != nil {
			return fmt.Errorf("rollback to savepoint: %w", err)
		}
		tx.savepointID--
		return nil
	}
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction, committing on nil return and
// rolling back (and re-panicking) otherwise. Cancellation of ctx after
// partial work rolls the in-flight unit of work back; already-committed
// work is durable (spec.md §5).
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			db.logger.Errorw("panic in transaction", "tx_id", tx.ID, "panic", r)
			_ = db.RollbackTx(ctx)
			panic(r)
		}
	}()

	if err := fn(ctx); err != nil {
		if rbErr := db.RollbackTx(ctx); rbErr != nil {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := db.CommitTx(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
