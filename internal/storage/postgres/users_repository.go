package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nevermarine/city-backend/internal/domain/users"
)

type UserRepository struct {
	db queryer
}

const userColumns = `username, full_name, email, disabled, is_admin, created_at, updated_at`

func scanUser(row pgx.Row) (users.User, error) {
	var user users.User
	err := row.Scan(
		&user.Username,
		&user.FullName,
		&user.Email,
		&user.Disabled,
		&user.Admin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

// Create inserts the user row and its credential row in one transaction.
// Uniqueness races on username or email are settled by the database
// constraints, never by a prior lookup.
func (r *UserRepository) Create(ctx context.Context, user users.User, passwordHash string) (users.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return users.User{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := scanUser(tx.QueryRow(ctx, `
INSERT INTO users (username, full_name, email, disabled, is_admin)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+userColumns,
		user.Username, user.FullName, user.Email, user.Disabled, user.Admin,
	))
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			if pgErrConstraint(err) == "users_email_key" {
				return users.User{}, users.ErrEmailTaken
			}
			return users.User{}, users.ErrUsernameTaken
		}
		return users.User{}, fmt.Errorf("insert user: %w", err)
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO credentials (username, password_hash)
VALUES ($1, $2)`,
		user.Username, passwordHash,
	); err != nil {
		return users.User{}, fmt.Errorf("insert credential: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return users.User{}, fmt.Errorf("commit tx: %w", err)
	}
	return created, nil
}

func (r *UserRepository) Get(ctx context.Context, username string) (users.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `
SELECT `+userColumns+`
  FROM users
 WHERE username = $1`,
		username,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return users.User{}, users.ErrUserNotFound
		}
		return users.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) CredentialHash(ctx context.Context, username string) (string, error) {
	var hash string
	err := r.db.QueryRow(ctx, `
SELECT password_hash
  FROM credentials
 WHERE username = $1`,
		username,
	).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", users.ErrUserNotFound
		}
		return "", fmt.Errorf("get credential: %w", err)
	}
	return hash, nil
}

func (r *UserRepository) List(ctx context.Context) ([]users.User, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+userColumns+`
  FROM users
 ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (r *UserRepository) Update(ctx context.Context, username string, params users.UpdateParams) (users.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `
UPDATE users
   SET full_name = COALESCE($2, full_name),
       email     = COALESCE($3, email),
       disabled  = COALESCE($4, disabled),
       updated_at = now()
 WHERE username = $1
RETURNING `+userColumns,
		username, params.FullName, params.Email, params.Disabled,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return users.User{}, users.ErrUserNotFound
		}
		if pgErrCode(err) == pgUniqueViolation {
			return users.User{}, users.ErrEmailTaken
		}
		return users.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Delete removes the user, its credential, and all owned requests in one
// transaction and returns the pre-delete snapshot. The explicit deletes keep
// the cascade visible in code; the schema's ON DELETE CASCADE backstops them.
func (r *UserRepository) Delete(ctx context.Context, username string) (users.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return users.User{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	user, err := scanUser(tx.QueryRow(ctx, `
SELECT `+userColumns+`
  FROM users
 WHERE username = $1
   FOR UPDATE`,
		username,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return users.User{}, users.ErrUserNotFound
		}
		return users.User{}, fmt.Errorf("lock user: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM requests WHERE username = $1`, username); err != nil {
		return users.User{}, fmt.Errorf("delete requests: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM credentials WHERE username = $1`, username); err != nil {
		return users.User{}, fmt.Errorf("delete credential: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM users WHERE username = $1`, username); err != nil {
		return users.User{}, fmt.Errorf("delete user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return users.User{}, fmt.Errorf("commit tx: %w", err)
	}
	return user, nil
}
