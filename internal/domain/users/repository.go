package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("email is already taken")
	ErrInvalidCredentials = errors.New("incorrect username or password")
)

// User is the authenticated identity record. The username is the identity key
// and never changes after registration.
type User struct {
	Username  string
	FullName  string
	Email     string
	Disabled  bool
	Admin     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpdateParams patches mutable profile fields. Nil means "leave unchanged".
// The username and the stored credential are not reachable from here.
type UpdateParams struct {
	FullName *string
	Email    *string
	Disabled *bool
}

// Repository persists users and their hashed credentials. A user row and its
// credential row are created and deleted together; implementations guarantee
// both writes land in one transaction.
type Repository interface {
	// Create stores the user and its credential atomically. Duplicate
	// usernames or emails surface as ErrUsernameTaken / ErrEmailTaken,
	// enforced by a storage-level uniqueness constraint so concurrent
	// registrations cannot both succeed.
	Create(ctx context.Context, user User, passwordHash string) (User, error)

	Get(ctx context.Context, username string) (User, error)

	// CredentialHash returns the stored password hash for username, or
	// ErrUserNotFound when no credential exists.
	CredentialHash(ctx context.Context, username string) (string, error)

	List(ctx context.Context) ([]User, error)

	Update(ctx context.Context, username string, params UpdateParams) (User, error)

	// Delete removes the user, its credential, and every request the user
	// owns in a single transaction, returning the pre-delete snapshot.
	Delete(ctx context.Context, username string) (User, error)
}
