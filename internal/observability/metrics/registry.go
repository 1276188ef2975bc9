// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store metrics track article persistence outcomes
var (
	// StoreOperationsTotal counts store operations by operation and result
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_store_operations_total",
			Help: "Total number of article store operations",
		},
		[]string{"operation", "result"}, // result: success, not_found, unexpected
	)

	// ArticleTagsPerCreate measures how many tag rows a create writes
	ArticleTagsPerCreate = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "article_store_tags_per_create",
			Help:    "Number of tag associations written per created article",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBTransactionsTotal counts finished transactions by outcome
	DBTransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_transactions_total",
			Help: "Total number of database transactions by outcome",
		},
		[]string{"outcome"}, // outcome: commit, rollback
	)
)

// RecordOperationDuration records the duration of a named operation
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
