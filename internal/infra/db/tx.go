// Package db opens the PostgreSQL connection pool and provides the
// transactional store used by the persistence adapters.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"conduit/internal/observability/metrics"
	"conduit/internal/observability/tracing"
	"conduit/internal/repository"
)

// ErrUnitOfWorkPanicked is returned when the function run inside a
// transaction panics. The transaction is rolled back.
var ErrUnitOfWorkPanicked = errors.New("unit of work panicked")

// TxStore implements repository.TransactionalStore on top of *sql.DB.
// Statements issued outside WithinTx run in autocommit mode.
type TxStore struct {
	db *sql.DB
}

var _ repository.TransactionalStore = (*TxStore)(nil)

// NewTxStore wraps db. Transactions use the server's default isolation level.
func NewTxStore(db *sql.DB) *TxStore {
	return &TxStore{db: db}
}

func (s *TxStore) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}

func (s *TxStore) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// WithinTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back when fn returns an error, panics, or ctx is cancelled.
func (s *TxStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.StatementExecutor) error) (err error) {
	ctx, span := tracing.Start(ctx, "TxStore.WithinTx")
	defer func() { tracing.End(span, err) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("WithinTx: begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			err = rollback(tx, fmt.Errorf("WithinTx: %w: %v", ErrUnitOfWorkPanicked, p))
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return rollback(tx, err)
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordTransaction(false)
		return fmt.Errorf("WithinTx: commit: %w", err)
	}
	metrics.RecordTransaction(true)
	return nil
}

// rollback aborts tx and returns cause, joined with the rollback error if
// the rollback itself failed. A transaction already closed by context
// cancellation is not an additional failure.
func rollback(tx *sql.Tx, cause error) error {
	metrics.RecordTransaction(false)
	if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
		return errors.Join(cause, fmt.Errorf("WithinTx: rollback: %w", rbErr))
	}
	return cause
}
