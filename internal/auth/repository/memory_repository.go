package repository

import (
	"context"
	"sync"

	"github.com/AlibekovAA/bearer-auth/internal/auth/domain"
	commonerrors "github.com/AlibekovAA/bearer-auth/internal/common/errors"
)

type MemoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]domain.User
	order   []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byEmail: make(map[string]domain.User),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return commonerrors.ErrEmailAlreadyExists
	}
	r.byEmail[user.Email] = user
	r.order = append(r.order, user.Email)
	return nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, commonerrors.ErrUserNotFound
	}
	return user, nil
}

func (r *MemoryRepository) ListSummaries(ctx context.Context) ([]domain.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]domain.Summary, 0, len(r.order))
	for _, email := range r.order {
		summaries = append(summaries, r.byEmail[email].Summary())
	}
	return summaries, nil
}

func (r *MemoryRepository) Ping(context.Context) error {
	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
