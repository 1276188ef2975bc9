package metrics

import (
	"errors"

	"conduit/internal/domain/entity"
)

// Store operation results.
const (
	ResultSuccess    = "success"
	ResultNotFound   = "not_found"
	ResultUnexpected = "unexpected"
)

// Transaction outcomes.
const (
	OutcomeCommit   = "commit"
	OutcomeRollback = "rollback"
)

// RecordStoreOperation counts one store operation, classified by its error.
func RecordStoreOperation(operation string, err error) {
	StoreOperationsTotal.WithLabelValues(operation, resultOf(err)).Inc()
}

// RecordTagsWritten records the tag fan-out of a successful create.
func RecordTagsWritten(count int) {
	ArticleTagsPerCreate.Observe(float64(count))
}

// RecordTransaction counts a finished transaction.
func RecordTransaction(committed bool) {
	outcome := OutcomeCommit
	if !committed {
		outcome = OutcomeRollback
	}
	DBTransactionsTotal.WithLabelValues(outcome).Inc()
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, entity.ErrNotFound):
		return ResultNotFound
	default:
		return ResultUnexpected
	}
}
