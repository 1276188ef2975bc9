package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conduit/internal/config"
	"conduit/internal/resilience/retry"
)

func testDatabaseConfig() config.DatabaseConfig {
	cfg := config.DefaultDatabaseConfig()
	cfg.PingTimeout = time.Second
	return cfg
}

func TestOpen_MissingURL(t *testing.T) {
	db, err := Open(context.Background(), testDatabaseConfig())
	assert.Nil(t, db)
	assert.ErrorContains(t, err, "DATABASE_URL not set")
}

func TestPing_Success(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	err = Ping(context.Background(), db, testDatabaseConfig(), retry.DBConfig())
	assert.NoError(t, err)
}

func TestPing_ClosedDatabase(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	_ = db.Close()

	err = Ping(context.Background(), db, testDatabaseConfig(), retry.DBConfig())
	assert.ErrorContains(t, err, "ping database")
}

func TestConfigurePool(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	cfg := testDatabaseConfig()
	cfg.MaxOpenConns = 7
	configurePool(context.Background(), db, cfg)

	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
}

/* ──────────────── Integration (requires DATABASE_URL) ──────────────── */

func TestOpen_SuccessfulConnection(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg := testDatabaseConfig()
	cfg.URL = dsn
	db, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.NoError(t, db.PingContext(context.Background()))
}
