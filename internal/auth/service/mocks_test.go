package service_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/AlibekovAA/bearer-auth/internal/auth/domain"
	"github.com/AlibekovAA/bearer-auth/internal/auth/service"
	"github.com/AlibekovAA/bearer-auth/internal/common/clock"
	commonerrors "github.com/AlibekovAA/bearer-auth/internal/common/errors"
	"github.com/AlibekovAA/bearer-auth/internal/common/logger"
)

const testJWTSecret = "test-secret-key-for-jwt-signing-32b"

type mockStore struct {
	findByEmailFunc   func(ctx context.Context, email string) (domain.User, error)
	createFunc        func(ctx context.Context, user domain.User) error
	listSummariesFunc func(ctx context.Context) ([]domain.Summary, error)
}

func (m *mockStore) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return domain.User{}, commonerrors.ErrUserNotFound
}

func (m *mockStore) Create(ctx context.Context, user domain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockStore) ListSummaries(ctx context.Context) ([]domain.Summary, error) {
	if m.listSummariesFunc != nil {
		return m.listSummariesFunc(ctx)
	}
	return []domain.Summary{}, nil
}

func (m *mockStore) Ping(context.Context) error { return nil }

func (m *mockStore) Close() error { return nil }

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash, password string) (bool, error)
}

func (m *mockHasher) Hash(_ context.Context, password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed:" + password, nil
}

func (m *mockHasher) Compare(_ context.Context, hash, password string) (bool, error) {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	return hash == "hashed:"+password, nil
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "00000000-0000-4000-8000-000000000001", nil
}

type mockIssuer struct {
	issueFunc func(userID domain.UserID) (string, error)
}

func (m *mockIssuer) Issue(userID domain.UserID) (string, error) {
	if m.issueFunc != nil {
		return m.issueFunc(userID)
	}
	return "token-for-" + string(userID), nil
}

type testDeps struct {
	store  *mockStore
	hasher *mockHasher
	ids    *mockIDGenerator
	issuer *mockIssuer
	clock  *clock.MockClock
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, "test", "info")
}

func setupAuthService(t *testing.T) (*service.AuthService, *testDeps) {
	t.Helper()
	deps := &testDeps{
		store:  &mockStore{},
		hasher: &mockHasher{},
		ids:    &mockIDGenerator{},
		issuer: &mockIssuer{},
		clock:  clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
	}

	svc := service.NewAuthService(
		service.AuthServiceDeps{
			Store:       deps.store,
			Hasher:      deps.hasher,
			Issuer:      deps.issuer,
			IDGenerator: deps.ids,
			Clock:       deps.clock,
			Log:         testLogger(),
		},
		service.AuthServiceConfig{
			CircuitBreakerThreshold: 3,
			CircuitBreakerTimeout:   time.Second,
			CircuitBreakerReset:     10 * time.Second,
		},
	)
	return svc, deps
}
