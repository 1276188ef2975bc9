// Package config loads the runtime configuration of the article store from
// environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	envcfg "conduit/pkg/config"
)

// StoreConfig holds configuration for the article store and its database.
type StoreConfig struct {
	// Database configures the connection pool.
	Database DatabaseConfig

	// CircuitBreaker guards statements and transactions.
	CircuitBreaker CircuitBreakerConfig

	// Publish configures the publish workflow.
	Publish PublishConfig
}

// DatabaseConfig holds database connection pool configuration.
type DatabaseConfig struct {
	// URL is the PostgreSQL DSN. Required.
	URL string
	// MaxOpenConns. Default: 25
	MaxOpenConns int
	// MaxIdleConns. Default: 10
	MaxIdleConns int
	// ConnMaxLifetime. Default: 1h
	ConnMaxLifetime time.Duration
	// ConnMaxIdleTime. Default: 30m
	ConnMaxIdleTime time.Duration
	// PingTimeout bounds each startup ping attempt. Default: 5s
	PingTimeout time.Duration
}

// CircuitBreakerConfig for database resilience.
type CircuitBreakerConfig struct {
	// Enabled wraps the store in a circuit breaker. Default: true
	Enabled bool

	// MaxRequests in half-open state.
	MaxRequests uint32

	// Interval for clearing failure counts.
	Interval time.Duration

	// Timeout before transitioning from open to half-open.
	Timeout time.Duration

	// FailureThreshold ratio to trip circuit (0.0 to 1.0).
	FailureThreshold float64

	// MinRequests before calculating failure ratio.
	MinRequests uint32
}

// PublishConfig holds settings of the publish workflow.
type PublishConfig struct {
	// MaxSlugAttempts is how many slug candidates are tried. Default: 5
	MaxSlugAttempts int
}

// DefaultDatabaseConfig returns the default connection pool configuration.
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		MaxOpenConns:    25,               // Maximum number of open connections
		MaxIdleConns:    10,               // Maximum number of idle connections
		ConnMaxLifetime: 1 * time.Hour,    // Maximum lifetime of a connection
		ConnMaxIdleTime: 30 * time.Minute, // Maximum idle time of a connection
		PingTimeout:     5 * time.Second,
	}
}

// LoadStoreConfig loads store configuration from environment variables.
// Invalid individual values fall back to defaults; a missing DATABASE_URL is an error.
func LoadStoreConfig() (*StoreConfig, error) {
	def := DefaultDatabaseConfig()
	maxOpen := envcfg.GetEnvPositiveInt("DB_MAX_OPEN_CONNS", def.MaxOpenConns)
	// An unset idle limit follows a smaller open limit, as sql.DB.SetMaxIdleConns does.
	defIdle := min(def.MaxIdleConns, maxOpen)
	cfg := &StoreConfig{
		Database: DatabaseConfig{
			URL:             envcfg.GetEnvString("DATABASE_URL", ""),
			MaxOpenConns:    maxOpen,
			MaxIdleConns:    envcfg.GetEnvPositiveInt("DB_MAX_IDLE_CONNS", defIdle),
			ConnMaxLifetime: envcfg.GetEnvDuration("DB_CONN_MAX_LIFETIME", def.ConnMaxLifetime),
			ConnMaxIdleTime: envcfg.GetEnvDuration("DB_CONN_MAX_IDLE_TIME", def.ConnMaxIdleTime),
			PingTimeout:     envcfg.GetEnvDuration("DB_PING_TIMEOUT", def.PingTimeout),
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          envcfg.GetEnvBool("DB_CIRCUIT_BREAKER_ENABLED", true),
			MaxRequests:      uint32(envcfg.GetEnvPositiveInt("DB_CB_MAX_REQUESTS", 3)),
			Interval:         envcfg.GetEnvDuration("DB_CB_INTERVAL", time.Minute),
			Timeout:          envcfg.GetEnvDuration("DB_CB_TIMEOUT", 30*time.Second),
			FailureThreshold: 1.0,
			MinRequests:      5,
		},
		Publish: PublishConfig{
			MaxSlugAttempts: envcfg.GetEnvPositiveInt("SLUG_MAX_ATTEMPTS", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration correctness.
func (c *StoreConfig) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL not set")
	}
	if c.Database.MaxOpenConns <= 0 {
		return errors.New("DB_MAX_OPEN_CONNS must be positive")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS (%d) must not exceed DB_MAX_OPEN_CONNS (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Database.PingTimeout <= 0 {
		return errors.New("DB_PING_TIMEOUT must be positive")
	}
	if c.CircuitBreaker.Enabled {
		if c.CircuitBreaker.MaxRequests == 0 {
			return errors.New("DB_CB_MAX_REQUESTS must be positive")
		}
		if c.CircuitBreaker.Timeout <= 0 {
			return errors.New("DB_CB_TIMEOUT must be positive")
		}
		if c.CircuitBreaker.FailureThreshold <= 0 || c.CircuitBreaker.FailureThreshold > 1 {
			return errors.New("circuit breaker failure threshold must be in (0, 1]")
		}
	}
	if c.Publish.MaxSlugAttempts <= 0 {
		return errors.New("SLUG_MAX_ATTEMPTS must be positive")
	}
	return nil
}
