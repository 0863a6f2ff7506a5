package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// defaultTxOptions pins the isolation level for multi-table writes. Sale
// submission and stock posting read balances before writing them back, so
// those reads must stay stable for the life of the transaction.
var defaultTxOptions = pgx.TxOptions{IsoLevel: pgx.RepeatableRead}

// WithTx runs fn inside a repeatable-read transaction. A nil return from fn
// commits; any error rolls back and is returned unwrapped so callers can
// still match their sentinel errors.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, defaultTxOptions)
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		// Rollback after a successful commit reports ErrTxClosed; harmless.
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}

	return nil
}
