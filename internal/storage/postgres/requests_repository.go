package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nevermarine/city-backend/internal/domain/requests"
)

type RequestRepository struct {
	db queryer
}

const requestColumns = `id, username, message, status, response, created_at, updated_at`

func scanRequest(row pgx.Row) (requests.Request, error) {
	var req requests.Request
	err := row.Scan(
		&req.ID,
		&req.Username,
		&req.Message,
		&req.Status,
		&req.Response,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	return req, err
}

func (r *RequestRepository) Create(ctx context.Context, req requests.Request) (requests.Request, error) {
	created, err := scanRequest(r.db.QueryRow(ctx, `
INSERT INTO requests (id, username, message, status)
VALUES ($1, $2, $3, $4)
RETURNING `+requestColumns,
		req.ID, req.Username, req.Message, req.Status,
	))
	if err != nil {
		if pgErrCode(err) == pgForeignKeyViolation {
			return requests.Request{}, requests.ErrOwnerNotFound
		}
		return requests.Request{}, fmt.Errorf("insert request: %w", err)
	}
	return created, nil
}

func (r *RequestRepository) Get(ctx context.Context, id string) (requests.Request, error) {
	req, err := scanRequest(r.db.QueryRow(ctx, `
SELECT `+requestColumns+`
  FROM requests
 WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return requests.Request{}, requests.ErrNotFound
		}
		return requests.Request{}, fmt.Errorf("get request: %w", err)
	}
	return req, nil
}

// List applies the visibility scope in SQL so non-admin callers never pull
// other users' rows over the wire.
func (r *RequestRepository) List(ctx context.Context, scope requests.Scope) ([]requests.Request, error) {
	var (
		rows pgx.Rows
		err  error
	)
	switch {
	case scope.All:
		rows, err = r.db.Query(ctx, `
SELECT `+requestColumns+`
  FROM requests
 ORDER BY id`)
	case scope.Username != "":
		rows, err = r.db.Query(ctx, `
SELECT `+requestColumns+`
  FROM requests
 WHERE username = $1
 ORDER BY id`,
			scope.Username)
	default:
		return []requests.Request{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	out := make([]requests.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return out, nil
}

// Update locks the row before writing so the status check and the write are
// one atomic step. A resolved request can never go back to Pending, no matter
// how concurrent updates interleave.
func (r *RequestRepository) Update(ctx context.Context, id string, params requests.UpdateParams) (requests.Request, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return requests.Request{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current requests.Status
	err = tx.QueryRow(ctx, `
SELECT status
  FROM requests
 WHERE id = $1
   FOR UPDATE`,
		id,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return requests.Request{}, requests.ErrNotFound
		}
		return requests.Request{}, fmt.Errorf("lock request: %w", err)
	}

	if current == requests.StatusResolved && params.Status != nil && *params.Status != requests.StatusResolved {
		return requests.Request{}, requests.ErrAlreadyResolved
	}

	req, err := scanRequest(tx.QueryRow(ctx, `
UPDATE requests
   SET status     = COALESCE($2, status),
       response   = COALESCE($3, response),
       updated_at = now()
 WHERE id = $1
RETURNING `+requestColumns,
		id, params.Status, params.Response,
	))
	if err != nil {
		return requests.Request{}, fmt.Errorf("update request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return requests.Request{}, fmt.Errorf("commit tx: %w", err)
	}
	return req, nil
}

func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return requests.ErrNotFound
	}
	return nil
}
