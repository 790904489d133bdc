// Package postgres implements the storage contracts over PostgreSQL using
// pgx. Multi-row operations (registration, cascading deletion) run inside a
// single transaction; the schema's foreign keys carry ON DELETE CASCADE as a
// safety net behind the explicit transactional deletes.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nevermarine/city-backend/internal/domain/events"
	"github.com/nevermarine/city-backend/internal/domain/news"
	"github.com/nevermarine/city-backend/internal/domain/requests"
	"github.com/nevermarine/city-backend/internal/domain/users"
)

// Repository implements storage.Repository backed by a pgx pool.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Users() users.Repository {
	return &UserRepository{db: r.pool}
}

func (r *Repository) Requests() requests.Repository {
	return &RequestRepository{db: r.pool}
}

func (r *Repository) News() news.Repository {
	return &NewsRepository{db: r.pool}
}

func (r *Repository) Events() events.Repository {
	return &EventRepository{db: r.pool}
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func pgErrConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// queryer is the query surface shared by *pgxpool.Pool and pgx.Tx, so the
// per-domain repositories work unchanged inside or outside a transaction.
type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}
