package crypto

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/AlibekovAA/bearer-auth/internal/common/constants"
	"github.com/AlibekovAA/bearer-auth/internal/observability/metrics"
)

// PasswordHasher hashes and verifies plaintext passwords. Compare reports a
// mismatch as (false, nil); any other failure, such as a malformed stored hash,
// is returned as an error.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, hash string, password string) (bool, error)
}

// BcryptHasher runs bcrypt on a bounded worker pool so that slow hashing never
// occupies the goroutines serving request intake.
type BcryptHasher struct {
	cost int
	pool *WorkerPool
}

func NewBcryptHasher(cost int, pool *WorkerPool) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = constants.DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost, pool: pool}
}

func (h *BcryptHasher) Cost() int {
	return h.cost
}

func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	var hash []byte
	err := h.run(ctx, "hash", func() error {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), h.cost)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Compare(ctx context.Context, hash string, password string) (bool, error) {
	var cmpErr error
	err := h.run(ctx, "compare", func() error {
		cmpErr = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		return nil
	})
	if err != nil {
		return false, err
	}

	if cmpErr == nil {
		return true, nil
	}
	if errors.Is(cmpErr, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("failed to compare password hash: %w", cmpErr)
}

func (h *BcryptHasher) run(ctx context.Context, operation string, fn func() error) error {
	task := func() error {
		start := time.Now()
		err := fn()
		metrics.PasswordHashDurationSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		return err
	}

	if h.pool == nil {
		return task()
	}
	return h.pool.Do(ctx, task)
}
