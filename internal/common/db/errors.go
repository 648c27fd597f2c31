package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/AlibekovAA/bearer-auth/internal/observability/metrics"
)

const usersTable = "users"

// HandleQueryError records the query duration and maps notFound sentinels of
// the underlying driver to notFoundErr. Other failures are counted and wrapped.
func HandleQueryError(driver string, err error, notFound []error, notFoundErr error, operation string, startTime time.Time) error {
	MeasureQueryDuration(driver, operation, startTime)

	if err == nil {
		return nil
	}
	for _, nf := range notFound {
		if errors.Is(err, nf) {
			return notFoundErr
		}
	}
	metrics.DBQueryErrors.WithLabelValues(driver, operation, usersTable, fmt.Sprintf("%T", err)).Inc()
	return fmt.Errorf("failed to %s: %w", operation, err)
}

func HandleExecError(driver string, err error, operation string, startTime time.Time) error {
	return HandleQueryError(driver, err, nil, nil, operation, startTime)
}

func MeasureQueryDuration(driver, operation string, startTime time.Time) {
	metrics.DBQueryDurationSeconds.WithLabelValues(driver, operation, usersTable).Observe(time.Since(startTime).Seconds())
}
