// Package observability provides the observability infrastructure of the article store
// including structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics for store operations and database statements
//   - tracing: OpenTelemetry tracer shared by the persistence layer
//
// Example usage:
//
//	import (
//	    "conduit/internal/observability/logging"
//	    "conduit/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger(os.Stderr)
//	    logger.Info("application started")
//
//	    metrics.RecordStoreOperation("create", nil)
//	}
package observability
