package circuitbreaker

import (
	"context"
	"database/sql"
	"time"

	"github.com/sony/gobreaker"

	"conduit/internal/repository"
)

// DBCircuitBreaker wraps a transactional store with circuit breaker protection.
// It prevents cascading failures when the database becomes unavailable or slow.
// A transaction counts as one request; statements inside it are not counted again.
type DBCircuitBreaker struct {
	cb    *CircuitBreaker
	store repository.TransactionalStore
}

var _ repository.TransactionalStore = (*DBCircuitBreaker)(nil)

// DBConfig returns configuration optimized for database circuit breakers.
// Opens after 5 consecutive failures, 30 second timeout.
func DBConfig() Config {
	return Config{
		Name:             "database",
		MaxRequests:      3, // Allow 3 test requests in half-open state
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0, // Open on 100% failure (5+ consecutive failures)
		MinRequests:      5,   // Require 5 failures before tripping
	}
}

// NewDBCircuitBreakerWithConfig creates a new database circuit breaker with custom configuration.
func NewDBCircuitBreakerWithConfig(store repository.TransactionalStore, cfg Config) *DBCircuitBreaker {
	return &DBCircuitBreaker{
		cb:    New(cfg),
		store: store,
	}
}

// QueryContext executes a query with circuit breaker protection.
// If the circuit is open, it returns ErrOpenState immediately without hitting the database.
func (dcb *DBCircuitBreaker) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	result, err := dcb.cb.Execute(func() (interface{}, error) {
		return dcb.store.QueryContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return result.(*sql.Rows), nil
}

// ExecContext executes a statement with circuit breaker protection.
// If the circuit is open, it returns ErrOpenState immediately without hitting the database.
func (dcb *DBCircuitBreaker) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	result, err := dcb.cb.Execute(func() (interface{}, error) {
		return dcb.store.ExecContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return result.(sql.Result), nil
}

// WithinTx runs the whole transaction as one guarded request.
// If the circuit is open, fn is not called and no transaction is begun.
func (dcb *DBCircuitBreaker) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.StatementExecutor) error) error {
	_, err := dcb.cb.Execute(func() (interface{}, error) {
		return nil, dcb.store.WithinTx(ctx, fn)
	})
	return err
}

// State returns the current state of the circuit breaker.
func (dcb *DBCircuitBreaker) State() gobreaker.State {
	return dcb.cb.State()
}

// IsOpen returns true if the circuit breaker is in the open state.
func (dcb *DBCircuitBreaker) IsOpen() bool {
	return dcb.cb.IsOpen()
}
