// Package config provides typed accessors for environment variables.
// Invalid values never fail the caller: the default is returned and a warning is logged.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the value of an environment variable or the default value if not set.
//
// Example:
//
//	dsn := GetEnvString("DATABASE_URL", "")
func GetEnvString(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt returns the value of an environment variable as an integer.
// Unparseable values yield defaultValue and a warning.
//
// Example:
//
//	maxOpen := GetEnvInt("DB_MAX_OPEN_CONNS", 25)
func GetEnvInt(key string, defaultValue int) int {
	valueStr := GetEnvString(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		warnFallback(key, valueStr, strconv.Itoa(defaultValue), err.Error())
		return defaultValue
	}
	return value
}

// GetEnvPositiveInt behaves like GetEnvInt but also rejects values <= 0.
func GetEnvPositiveInt(key string, defaultValue int) int {
	value := GetEnvInt(key, defaultValue)
	if value <= 0 {
		warnFallback(key, strconv.Itoa(value), strconv.Itoa(defaultValue), "value must be positive")
		return defaultValue
	}
	return value
}

// GetEnvBool returns the value of an environment variable as a boolean.
//
// Accepted values are those of strconv.ParseBool ("1", "t", "true", "0", "f", "false", ...).
//
// Example:
//
//	enabled := GetEnvBool("DB_CIRCUIT_BREAKER_ENABLED", true)
func GetEnvBool(key string, defaultValue bool) bool {
	valueStr := GetEnvString(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		warnFallback(key, valueStr, strconv.FormatBool(defaultValue), err.Error())
		return defaultValue
	}
	return value
}

// GetEnvDuration returns the value of an environment variable as a time.Duration.
// The value must be parseable by time.ParseDuration (e.g., "1m", "30s", "1h30m")
// and positive.
//
// Example:
//
//	timeout := GetEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := GetEnvString(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err == nil {
		err = ValidatePositiveDuration(value)
	}
	if err != nil {
		warnFallback(key, valueStr, defaultValue.String(), err.Error())
		return defaultValue
	}
	return value
}

func warnFallback(key, value, defaultValue, reason string) {
	slog.Warn("invalid value for environment variable, using default",
		slog.String("key", key),
		slog.String("value", value),
		slog.String("default", defaultValue),
		slog.String("error", reason))
}
