package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/AlibekovAA/bearer-auth/internal/auth/domain"
	"github.com/AlibekovAA/bearer-auth/internal/common/db"
	commonerrors "github.com/AlibekovAA/bearer-auth/internal/common/errors"
)

const driverSQLite = "sqlite3"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    DATETIME NOT NULL
);`

type SqliteRepository struct {
	db *sqlx.DB
}

// NewSqliteRepository opens (or creates) the database file at path and
// ensures the users table exists.
func NewSqliteRepository(ctx context.Context, path string) (*SqliteRepository, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	conn, err := sqlx.ConnectContext(ctx, driverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	// a single writer keeps UNIQUE checks and in-memory databases consistent
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create sqlite schema: %w", err)
	}

	return &SqliteRepository{db: conn}, nil
}

func (r *SqliteRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.db.NamedExecContext(
		ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at)
		 VALUES (:id, :name, :email, :password_hash, :created_at)`,
		user,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			db.MeasureQueryDuration(driverSQLite, "create_user", start)
			return commonerrors.ErrEmailAlreadyExists.WithCause(err)
		}
	}
	return db.HandleExecError(driverSQLite, err, "create_user", start)
}

func (r *SqliteRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	start := time.Now()
	var user domain.User
	err := r.db.GetContext(
		ctx,
		&user,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`,
		email,
	)
	if err := db.HandleQueryError(driverSQLite, err, []error{sql.ErrNoRows}, commonerrors.ErrUserNotFound, "find_user_by_email", start); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *SqliteRepository) ListSummaries(ctx context.Context) ([]domain.Summary, error) {
	start := time.Now()
	summaries := []domain.Summary{}
	err := r.db.SelectContext(ctx, &summaries, `SELECT name, email FROM users ORDER BY created_at, rowid`)
	if err := db.HandleQueryError(driverSQLite, err, nil, nil, "list_users", start); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *SqliteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}
