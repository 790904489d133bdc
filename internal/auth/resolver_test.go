package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nevermarine/city-backend/internal/domain/users"
)

type fakeUserStore struct {
	users map[string]users.User
}

func (s *fakeUserStore) Get(_ context.Context, username string) (users.User, error) {
	user, ok := s.users[username]
	if !ok {
		return users.User{}, users.ErrUserNotFound
	}
	return user, nil
}

func newResolverFixture(t *testing.T) (*Resolver, *JWTManager, *fakeUserStore) {
	t.Helper()
	manager := NewJWTManager("test-secret", time.Hour, "city-backend")
	store := &fakeUserStore{users: map[string]users.User{
		"maxim":   {Username: "maxim", FullName: "Maxim Fedotov", Email: "m@x.com"},
		"darinka": {Username: "darinka", Disabled: true},
	}}
	return NewResolver(manager, store), manager, store
}

func TestResolverResolve(t *testing.T) {
	resolver, manager, _ := newResolverFixture(t)

	token, err := manager.Generate("maxim")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	user, err := resolver.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.Username != "maxim" {
		t.Fatalf("expected maxim, got %s", user.Username)
	}
}

func TestResolverRejectsGarbage(t *testing.T) {
	resolver, _, _ := newResolverFixture(t)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := resolver.Resolve(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("token %q: expected ErrUnauthorized, got %v", token, err)
		}
	}
}

func TestResolverRejectsDeletedSubject(t *testing.T) {
	resolver, manager, store := newResolverFixture(t)

	token, err := manager.Generate("maxim")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	// Signature and expiry are still fine; only the subject is gone.
	delete(store.users, "maxim")
	if _, err := resolver.Resolve(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for deleted subject, got %v", err)
	}
}

func TestResolverRejectsExpired(t *testing.T) {
	resolver, manager, _ := newResolverFixture(t)

	token, err := manager.GenerateWithTTL("maxim", time.Millisecond)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := resolver.Resolve(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestResolveActiveRejectsDisabled(t *testing.T) {
	resolver, manager, _ := newResolverFixture(t)

	token, err := manager.Generate("darinka")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := resolver.Resolve(context.Background(), token); err != nil {
		t.Fatalf("plain resolve should accept disabled users: %v", err)
	}
	if _, err := resolver.ResolveActive(context.Background(), token); !errors.Is(err, ErrInactiveAccount) {
		t.Fatalf("expected ErrInactiveAccount, got %v", err)
	}
}
