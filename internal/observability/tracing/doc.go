// Package tracing provides OpenTelemetry tracing integration.
//
// The persistence layer opens one span per store operation and one per
// transaction. Spans are exported by whatever TracerProvider is installed
// globally with otel.SetTracerProvider; without one they are no-ops.
//
// Example usage:
//
//	import "conduit/internal/observability/tracing"
//
//	func store(ctx context.Context) (err error) {
//	    ctx, span := tracing.Start(ctx, "ArticleRepo.Create")
//	    defer func() { tracing.End(span, err) }()
//	    // ... run statements ...
//	}
package tracing
