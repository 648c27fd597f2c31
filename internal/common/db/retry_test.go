package db

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jackc/pgconn"

	"github.com/AlibekovAA/bearer-auth/internal/common/logger"
)

var fastRetry = RetryConfig{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     2 * time.Millisecond,
	Multiplier:   2,
}

func TestRetryWithBackoff_RetriesRetryableErrors(t *testing.T) {
	log := logger.NewWithWriter(io.Discard, "test", "error")
	serializationErr := &pgconn.PgError{Code: "40001"}

	calls := 0
	err := RetryWithBackoff(context.Background(), log, fastRetry, IsRetryablePgError, func() error {
		calls++
		if calls < 3 {
			return serializationErr
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryWithBackoff_StopsOnPermanentError(t *testing.T) {
	log := logger.NewWithWriter(io.Discard, "test", "error")
	uniqueErr := &pgconn.PgError{Code: "23505"}

	calls := 0
	err := RetryWithBackoff(context.Background(), log, fastRetry, IsRetryablePgError, func() error {
		calls++
		return uniqueErr
	})

	if !errors.Is(err, uniqueErr) {
		t.Fatalf("expected unique violation to be returned, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single call, got %d", calls)
	}
}

func TestRetryWithBackoff_GivesUp(t *testing.T) {
	log := logger.NewWithWriter(io.Discard, "test", "error")
	connErr := &pgconn.PgError{Code: "08006"}

	calls := 0
	err := RetryWithBackoff(context.Background(), log, fastRetry, IsRetryablePgError, func() error {
		calls++
		return connErr
	})

	if !errors.Is(err, connErr) {
		t.Fatalf("expected last error to be wrapped, got %v", err)
	}
	if calls != fastRetry.MaxAttempts {
		t.Errorf("expected %d calls, got %d", fastRetry.MaxAttempts, calls)
	}
}

func TestIsRetryablePgError(t *testing.T) {
	if IsRetryablePgError(nil) {
		t.Error("nil is not retryable")
	}
	if IsRetryablePgError(context.DeadlineExceeded) {
		t.Error("deadline exceeded is not retryable")
	}
	if !IsRetryablePgError(&pgconn.PgError{Code: "40P01"}) {
		t.Error("deadlock should be retryable")
	}
}
