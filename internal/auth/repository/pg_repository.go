package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/bearer-auth/internal/auth/domain"
	"github.com/AlibekovAA/bearer-auth/internal/common/db"
	commonerrors "github.com/AlibekovAA/bearer-auth/internal/common/errors"
	"github.com/AlibekovAA/bearer-auth/internal/common/logger"
)

const (
	driverPostgres = "postgres"

	pgUniqueViolation = "23505"
)

type PgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewPgRepository(pool *pgxpool.Pool, log *logger.Logger) *PgRepository {
	return &PgRepository{pool: pool, log: log}
}

func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		string(user.ID),
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			db.MeasureQueryDuration(driverPostgres, "create_user", start)
			return commonerrors.ErrEmailAlreadyExists.WithCause(err)
		}
	}
	return db.HandleExecError(driverPostgres, err, "create_user", start)
}

func (r *PgRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User
	err := db.RetryWithBackoff(ctx, r.log, db.DefaultRetryConfig, db.IsRetryablePgError, func() error {
		start := time.Now()
		row := r.pool.QueryRow(
			ctx,
			`SELECT id::text, name, email, password_hash, created_at FROM users WHERE email = $1`,
			email,
		)
		err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
		return db.HandleQueryError(driverPostgres, err, []error{pgx.ErrNoRows}, commonerrors.ErrUserNotFound, "find_user_by_email", start)
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *PgRepository) ListSummaries(ctx context.Context) ([]domain.Summary, error) {
	var summaries []domain.Summary
	err := db.RetryWithBackoff(ctx, r.log, db.DefaultRetryConfig, db.IsRetryablePgError, func() error {
		start := time.Now()
		rows, err := r.pool.Query(ctx, `SELECT name, email FROM users ORDER BY created_at, id`)
		if err != nil {
			return db.HandleQueryError(driverPostgres, err, nil, nil, "list_users", start)
		}
		defer rows.Close()

		summaries = summaries[:0]
		for rows.Next() {
			var s domain.Summary
			if err := rows.Scan(&s.Name, &s.Email); err != nil {
				return db.HandleQueryError(driverPostgres, err, nil, nil, "list_users", start)
			}
			summaries = append(summaries, s)
		}
		return db.HandleQueryError(driverPostgres, rows.Err(), nil, nil, "list_users", start)
	})
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []domain.Summary{}
	}
	return summaries, nil
}

func (r *PgRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PgRepository) Close() error {
	r.pool.Close()
	return nil
}
