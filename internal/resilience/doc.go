// Package resilience provides fault tolerance patterns for the database layer.
//
// The package supports:
//   - Circuit breakers guarding statements and transactions
//   - Retry logic with exponential backoff and jitter for connection setup
//
// Statements issued by the article store are never retried; a failed create or
// exists surfaces to the caller as-is.
//
// Usage Example:
//
//	guarded := circuitbreaker.NewDBCircuitBreakerWithConfig(txStore,
//	    circuitbreaker.FromStoreConfig("articles-db", cfg.CircuitBreaker))
//	exists, err := postgres.NewArticleRepo(guarded).Exists(ctx, slug)
//
//	err := retry.WithBackoff(ctx, retry.DBConfig(), func() error {
//	    return db.PingContext(ctx)
//	})
package resilience
