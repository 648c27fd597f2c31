package repository

import (
	"context"
	"fmt"

	"github.com/AlibekovAA/bearer-auth/internal/auth/domain"
	"github.com/AlibekovAA/bearer-auth/internal/common/config"
	"github.com/AlibekovAA/bearer-auth/internal/common/db"
	"github.com/AlibekovAA/bearer-auth/internal/common/logger"
)

// CredentialStore persists user credential records. Email uniqueness is
// enforced by the store itself: Create returns ErrEmailAlreadyExists when
// the email is taken, even under concurrent signups.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	Create(ctx context.Context, user domain.User) error
	ListSummaries(ctx context.Context) ([]domain.Summary, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open builds the store selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg config.AuthConfig, log *logger.Logger) (CredentialStore, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres, "":
		pool, err := db.NewPool(ctx, log, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool, log); err != nil {
				pool.Close()
				return nil, err
			}
		}
		db.StartPoolMetrics(ctx, pool, 0)
		return NewPgRepository(pool, log), nil
	case config.StoreDriverSQLite:
		return NewSqliteRepository(ctx, cfg.SQLitePath)
	case config.StoreDriverMemory:
		log.Warn("using in-memory credential store, accounts are lost on restart")
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
