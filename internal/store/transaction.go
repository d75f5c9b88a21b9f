package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/kanban-api/internal/platform/logger"
)

// TxFn is a function that executes within a database transaction.
// The transaction is committed if the function returns nil, or rolled back if it returns an error.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// TxRunner runs a TxFn inside a transaction. Services depend on it rather
// than on *sql.DB so tests can substitute an in-memory runner.
type TxRunner interface {
	RunInTx(ctx context.Context, fn TxFn) error
}

// ErrorMapper translates a driver error into a store error.
type ErrorMapper func(error) error

// SQLTxRunner runs transactions against a database/sql pool.
type SQLTxRunner struct {
	db     *sql.DB
	mapErr ErrorMapper
}

// NewSQLTxRunner wraps db as a TxRunner.
func NewSQLTxRunner(db *sql.DB) *SQLTxRunner {
	return &SQLTxRunner{db: db}
}

// WithErrorMapper sets the mapper applied to commit errors, so deferred
// constraint violations surface as store errors rather than bare driver
// errors.
func (r *SQLTxRunner) WithErrorMapper(mapErr ErrorMapper) *SQLTxRunner {
	r.mapErr = mapErr
	return r
}

// RunInTx implements TxRunner.
func (r *SQLTxRunner) RunInTx(ctx context.Context, fn TxFn) error {
	return runInTransaction(ctx, r.db, fn, r.mapErr)
}

// RunInTransaction executes the given function within a read committed
// transaction. If the function returns an error or panics, the transaction
// is rolled back; otherwise it is committed.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	return runInTransaction(ctx, db, fn, nil)
}

func runInTransaction(ctx context.Context, db *sql.DB, fn TxFn, mapErr ErrorMapper) error {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		log.Error("failed to begin transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: begin: %w", ErrTransactionFailed, err)
	}

	defer func() {
		if p := recover(); p != nil {
			if txErr := tx.Rollback(); txErr != nil {
				log.Error("failed to roll back transaction after panic",
					slog.String("error", txErr.Error()),
					slog.Any("panic", p))
			} else {
				log.Error("rolled back transaction after panic",
					slog.Any("panic", p))
			}
			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rollbackErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf(
				"error rolling back transaction: %v (original error: %w)",
				rollbackErr,
				err,
			)
		}
		log.Debug("rolled back transaction due to error",
			slog.String("error", err.Error()))
		return err
	}

	if err = tx.Commit(); err != nil {
		if mapErr != nil {
			err = mapErr(err)
		}
		log.Error("failed to commit transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: commit: %w", ErrTransactionFailed, err)
	}

	log.Debug("transaction committed")
	return nil
}
