package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"

	"conduit/internal/config"
	"conduit/internal/observability/logging"
	"conduit/internal/resilience/retry"
)

// DriverName is the database/sql driver registered by pgx.
const DriverName = "pgx"

// Open creates and configures a new database connection pool and verifies it
// with a ping. Transient connection failures are retried with backoff.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, errors.New("open database: DATABASE_URL not set")
	}

	db, err := sql.Open(DriverName, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	configurePool(ctx, db, cfg)

	if err := Ping(ctx, db, cfg, retry.DBConfig()); err != nil {
		_ = db.Close()
		return nil, err
	}

	logging.FromContext(ctx).Info("database connection established successfully")
	return db, nil
}

// configurePool applies connection pool settings.
func configurePool(ctx context.Context, db *sql.DB, cfg config.DatabaseConfig) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logging.FromContext(ctx).Info("database connection pool configured",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))
}

// Ping verifies connectivity. Each attempt is bounded by cfg.PingTimeout.
func Ping(ctx context.Context, db *sql.DB, cfg config.DatabaseConfig, policy retry.Config) error {
	err := retry.WithBackoff(ctx, policy, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}
