// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the metrics of the article store:
//   - Store operation outcomes (create, exists, find_by_slug)
//   - Transaction outcomes (commit, rollback)
//   - Database statement durations
//   - Tag fan-out per created article
//
// All collectors are registered on the default registry through promauto.
package metrics
