package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/bearer-auth/internal/auth/domain"
	commonerrors "github.com/AlibekovAA/bearer-auth/internal/common/errors"
)

func newUser(n int, email string) domain.User {
	return domain.User{
		ID:           domain.UserID(fmt.Sprintf("00000000-0000-4000-8000-%012d", n)),
		Name:         fmt.Sprintf("User %d", n),
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuuABCDEFGHIJKLMNOPQRSTUVWXYZ01234",
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, n, 0, time.UTC),
	}
}

func storeFactories(t *testing.T) map[string]func(t *testing.T) CredentialStore {
	t.Helper()
	return map[string]func(t *testing.T) CredentialStore{
		"memory": func(t *testing.T) CredentialStore {
			return NewMemoryRepository()
		},
		"sqlite": func(t *testing.T) CredentialStore {
			store, err := NewSqliteRepository(context.Background(), filepath.Join(t.TempDir(), "auth.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })
			return store
		},
	}
}

func TestCredentialStore_CreateAndFind(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			ctx := context.Background()

			user := newUser(1, "alice@example.com")
			require.NoError(t, store.Create(ctx, user))

			found, err := store.FindByEmail(ctx, "alice@example.com")
			require.NoError(t, err)
			assert.Equal(t, user.ID, found.ID)
			assert.Equal(t, user.Name, found.Name)
			assert.Equal(t, user.PasswordHash, found.PasswordHash)
			assert.True(t, user.CreatedAt.Equal(found.CreatedAt))
		})
	}
}

func TestCredentialStore_NotFound(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)

			_, err := store.FindByEmail(context.Background(), "nobody@example.com")
			assert.ErrorIs(t, err, commonerrors.ErrUserNotFound)
		})
	}
}

func TestCredentialStore_DuplicateEmail(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			ctx := context.Background()

			require.NoError(t, store.Create(ctx, newUser(1, "bob@example.com")))
			err := store.Create(ctx, newUser(2, "bob@example.com"))
			assert.ErrorIs(t, err, commonerrors.ErrEmailAlreadyExists)

			summaries, err := store.ListSummaries(ctx)
			require.NoError(t, err)
			assert.Len(t, summaries, 1)
		})
	}
}

func TestCredentialStore_ConcurrentCreateSameEmail(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			ctx := context.Background()

			const attempts = 8
			var (
				wg        sync.WaitGroup
				succeeded atomic.Int32
				conflicts atomic.Int32
			)
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					err := store.Create(ctx, newUser(n+1, "race@example.com"))
					switch {
					case err == nil:
						succeeded.Add(1)
					case errors.Is(err, commonerrors.ErrEmailAlreadyExists):
						conflicts.Add(1)
					}
				}(i)
			}
			wg.Wait()

			assert.Equal(t, int32(1), succeeded.Load())
			assert.Equal(t, int32(attempts-1), conflicts.Load())
		})
	}
}

func TestCredentialStore_ListSummaries(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			ctx := context.Background()

			empty, err := store.ListSummaries(ctx)
			require.NoError(t, err)
			assert.NotNil(t, empty)
			assert.Empty(t, empty)

			require.NoError(t, store.Create(ctx, newUser(1, "a@example.com")))
			require.NoError(t, store.Create(ctx, newUser(2, "b@example.com")))

			summaries, err := store.ListSummaries(ctx)
			require.NoError(t, err)
			assert.Equal(t, []domain.Summary{
				{Name: "User 1", Email: "a@example.com"},
				{Name: "User 2", Email: "b@example.com"},
			}, summaries)
		})
	}
}

func TestMemoryRepository_CancelledContext(t *testing.T) {
	store := NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Create(ctx, newUser(1, "c@example.com"))
	assert.ErrorIs(t, err, context.Canceled)
}
