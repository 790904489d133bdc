package requests

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("request not found")
	ErrAlreadyResolved = errors.New("request is already resolved")
	ErrOwnerNotFound   = errors.New("request owner does not exist")
)

// Status is the lifecycle state of a citizen request. The only legal
// transition is Pending to Resolved; there is no way back.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusResolved Status = "Resolved"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusResolved
}

// Request is a citizen inquiry owned by the user named in Username. Owned
// records are removed together with their owner.
type Request struct {
	ID        string
	Username  string
	Message   string
	Status    Status
	Response  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Scope restricts which requests a listing returns. The zero value matches
// nothing; use ScopeAll or ScopeOwner.
type Scope struct {
	All      bool
	Username string
}

// ScopeAll matches every request (admin visibility).
func ScopeAll() Scope {
	return Scope{All: true}
}

// ScopeOwner matches only requests owned by username.
func ScopeOwner(username string) Scope {
	return Scope{Username: username}
}

// Matches reports whether the request falls inside the scope.
func (s Scope) Matches(r Request) bool {
	if s.All {
		return true
	}
	return s.Username != "" && r.Username == s.Username
}

type UpdateParams struct {
	Status   *Status
	Response *string
}

type Repository interface {
	Create(ctx context.Context, req Request) (Request, error)
	Get(ctx context.Context, id string) (Request, error)
	List(ctx context.Context, scope Scope) ([]Request, error)
	// Update applies the changes and checks the status transition under the
	// same lock, returning ErrAlreadyResolved when the write would take a
	// resolved request back to Pending.
	Update(ctx context.Context, id string, params UpdateParams) (Request, error)
	Delete(ctx context.Context, id string) error
}
