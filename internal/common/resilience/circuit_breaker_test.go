package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AlibekovAA/bearer-auth/internal/common/clock"
	commonerrors "github.com/AlibekovAA/bearer-auth/internal/common/errors"
)

var errBoom = errors.New("connection refused")

func newTestBreaker(clk clock.Clock) *CircuitBreaker {
	return NewCircuitBreaker(CircuitBreakerConfig{
		Threshold:      2,
		Timeout:        time.Second,
		ResetAfter:     10 * time.Second,
		Name:           "test",
		ExpectedErrors: []error{commonerrors.ErrUserNotFound},
		Clock:          clk,
	})
}

func failing(context.Context) error { return errBoom }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	cb := newTestBreaker(clk)

	for i := 0; i < 2; i++ {
		if err := cb.Call(context.Background(), failing); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: expected underlying error, got %v", i, err)
		}
	}

	called := false
	err := cb.Call(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, commonerrors.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if called {
		t.Error("fn must not run while the circuit is open")
	}
}

func TestCircuitBreaker_ClosesAfterReset(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	cb := newTestBreaker(clk)

	_ = cb.Call(context.Background(), failing)
	_ = cb.Call(context.Background(), failing)
	if !cb.IsOpen() {
		t.Fatal("expected circuit to be open")
	}

	clk.Advance(11 * time.Second)
	if cb.IsOpen() {
		t.Fatal("expected circuit to close after reset interval")
	}
	if err := cb.Call(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCircuitBreaker_ExpectedErrorsDoNotTrip(t *testing.T) {
	cb := newTestBreaker(nil)
	notFound := func(context.Context) error {
		return commonerrors.ErrUserNotFound.WithCause(errors.New("no rows"))
	}

	for i := 0; i < 5; i++ {
		if err := cb.Call(context.Background(), notFound); !errors.Is(err, commonerrors.ErrUserNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	}
	if cb.IsOpen() {
		t.Error("expected errors must not open the circuit")
	}
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := newTestBreaker(nil)

	_ = cb.Call(context.Background(), failing)
	_ = cb.Call(context.Background(), func(context.Context) error { return nil })
	_ = cb.Call(context.Background(), failing)

	if cb.IsOpen() {
		t.Error("a success between failures should reset the count")
	}
}
