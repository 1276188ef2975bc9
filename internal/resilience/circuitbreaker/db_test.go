package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sony/gobreaker"

	"conduit/internal/infra/db"
	"conduit/internal/repository"
)

func newGuardedStore(t *testing.T, cfg Config) (*DBCircuitBreaker, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewDBCircuitBreakerWithConfig(db.NewTxStore(conn), cfg), mock
}

func fastDBConfig() Config {
	cfg := DBConfig()
	cfg.Name = "test-db"
	cfg.Timeout = 50 * time.Millisecond
	return cfg
}

func TestNewDBCircuitBreakerWithConfig(t *testing.T) {
	conn, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = conn.Close() }()

	dcb := NewDBCircuitBreakerWithConfig(db.NewTxStore(conn), DBConfig())
	if dcb.State() != gobreaker.StateClosed {
		t.Errorf("expected initial state to be Closed, got %s", dcb.State())
	}
	if dcb.cb.Name() != "database" {
		t.Errorf("expected breaker name 'database', got %q", dcb.cb.Name())
	}
}

func TestDBCircuitBreaker_QueryContext_Success(t *testing.T) {
	dcb, mock := newGuardedStore(t, fastDBConfig())

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("hello-world").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	rows, err := dcb.QueryContext(context.Background(), "SELECT EXISTS (SELECT 1 FROM articles WHERE slug = $1)", "hello-world")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	_ = rows.Close()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDBCircuitBreaker_ExecContext_Success(t *testing.T) {
	dcb, mock := newGuardedStore(t, fastDBConfig())

	mock.ExpectExec("DELETE FROM tags").
		WillReturnResult(sqlmock.NewResult(0, 2))

	res, err := dcb.ExecContext(context.Background(), "DELETE FROM tags WHERE article_id = $1", int64(3))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if n, _ := res.RowsAffected(); n != 2 {
		t.Errorf("expected 2 rows affected, got %d", n)
	}
}

func TestDBCircuitBreaker_CircuitOpens_AfterConsecutiveFailures(t *testing.T) {
	dcb, mock := newGuardedStore(t, fastDBConfig())
	ctx := context.Background()

	expectedErr := errors.New("database connection failed")
	for i := 0; i < 5; i++ {
		mock.ExpectQuery("SELECT (.+)").WillReturnError(expectedErr)
	}
	for i := 0; i < 5; i++ {
		if _, err := dcb.QueryContext(ctx, "SELECT 1"); err == nil {
			t.Errorf("attempt %d: expected error, got nil", i+1)
		}
	}

	if !dcb.IsOpen() {
		t.Fatalf("expected circuit to be open after 5 consecutive failures, state: %s", dcb.State())
	}

	_, err := dcb.QueryContext(ctx, "SELECT 1")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDBCircuitBreaker_WithinTx_Commit(t *testing.T) {
	dcb, mock := newGuardedStore(t, fastDBConfig())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tags").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := dcb.WithinTx(context.Background(), func(ctx context.Context, tx repository.StatementExecutor) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO tags (article_id, tag) VALUES ($1, $2)", int64(1), "go")
		return err
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDBCircuitBreaker_WithinTx_OpenCircuitSkipsTransaction(t *testing.T) {
	dcb, mock := newGuardedStore(t, fastDBConfig())
	ctx := context.Background()

	beginErr := errors.New("connection refused")
	for i := 0; i < 5; i++ {
		mock.ExpectBegin().WillReturnError(beginErr)
	}
	for i := 0; i < 5; i++ {
		_ = dcb.WithinTx(ctx, func(context.Context, repository.StatementExecutor) error { return nil })
	}
	if !dcb.IsOpen() {
		t.Fatalf("expected circuit to be open, state: %s", dcb.State())
	}

	called := false
	err := dcb.WithinTx(ctx, func(context.Context, repository.StatementExecutor) error {
		called = true
		return nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
	if called {
		t.Error("unit of work must not run while the circuit is open")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDBCircuitBreaker_CircuitHalfOpen_AfterTimeout(t *testing.T) {
	dcb, mock := newGuardedStore(t, fastDBConfig())
	ctx := context.Background()

	expectedErr := errors.New("database connection failed")
	for i := 0; i < 5; i++ {
		mock.ExpectQuery("SELECT (.+)").WillReturnError(expectedErr)
	}
	for i := 0; i < 5; i++ {
		_, _ = dcb.QueryContext(ctx, "SELECT 1")
	}
	if !dcb.IsOpen() {
		t.Fatal("expected circuit to be open")
	}

	time.Sleep(100 * time.Millisecond)

	mock.ExpectQuery("SELECT (.+)").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	rows, err := dcb.QueryContext(ctx, "SELECT 1")
	if err != nil {
		t.Fatalf("expected query to succeed in half-open state, got %v", err)
	}
	_ = rows.Close()
}

func TestDBConfig(t *testing.T) {
	cfg := DBConfig()
	if cfg.Name != "database" {
		t.Errorf("expected Name='database', got %q", cfg.Name)
	}
	if cfg.FailureThreshold != 1.0 || cfg.MinRequests != 5 {
		t.Errorf("unexpected DB config: %+v", cfg)
	}
}
