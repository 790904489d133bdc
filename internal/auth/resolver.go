package auth

import (
	"context"
	"errors"

	"github.com/nevermarine/city-backend/internal/domain/users"
)

var (
	// ErrUnauthorized covers every credential failure a caller may see:
	// missing, malformed, mis-signed, or expired tokens, and tokens whose
	// subject no longer exists. One error, so none of those cases leak.
	ErrUnauthorized = errors.New("could not validate credentials")

	ErrInactiveAccount = errors.New("inactive account")
)

// UserStore is the slice of the user repository the resolver needs.
type UserStore interface {
	Get(ctx context.Context, username string) (users.User, error)
}

// Resolver turns a bearer token into an authenticated user. Verification is
// pure computation, but the subject must still name a live user: a token
// issued before its user was deleted fails here even with a valid signature.
type Resolver struct {
	verifier *JWTManager
	store    UserStore
}

func NewResolver(verifier *JWTManager, store UserStore) *Resolver {
	return &Resolver{verifier: verifier, store: store}
}

func (r *Resolver) Resolve(ctx context.Context, token string) (users.User, error) {
	subject, err := r.verifier.Validate(token)
	if err != nil {
		return users.User{}, ErrUnauthorized
	}

	user, err := r.store.Get(ctx, subject)
	if err != nil {
		return users.User{}, ErrUnauthorized
	}
	return user, nil
}

// ResolveActive additionally rejects disabled accounts.
func (r *Resolver) ResolveActive(ctx context.Context, token string) (users.User, error) {
	user, err := r.Resolve(ctx, token)
	if err != nil {
		return users.User{}, err
	}
	if user.Disabled {
		return users.User{}, ErrInactiveAccount
	}
	return user, nil
}
