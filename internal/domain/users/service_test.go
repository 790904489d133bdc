package users_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nevermarine/city-backend/internal/audit"
	"github.com/nevermarine/city-backend/internal/domain/users"
	"github.com/nevermarine/city-backend/internal/storage/memory"
)

func newService(t *testing.T) (*users.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	logger := zerolog.Nop()
	return users.NewService(store.Users(), audit.NewLogger(logger), logger), store
}

func register(t *testing.T, service *users.Service, username, password string) users.User {
	t.Helper()
	user, err := service.Register(context.Background(), users.RegisterParams{
		Username: username,
		FullName: username,
		Email:    username + "@example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

func TestRegisterAndAuthenticate(t *testing.T) {
	service, store := newService(t)
	register(t, service, "maxim", "secret-password")

	user, err := service.Authenticate(context.Background(), "maxim", "secret-password")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Username != "maxim" {
		t.Errorf("username = %q", user.Username)
	}

	// Stored credential is a hash, never the plaintext.
	hash, err := store.Users().CredentialHash(context.Background(), "maxim")
	if err != nil {
		t.Fatalf("credential hash: %v", err)
	}
	if hash == "secret-password" {
		t.Fatal("credential stored in plaintext")
	}
}

func TestAuthenticateFailuresAreUniform(t *testing.T) {
	service, _ := newService(t)
	register(t, service, "maxim", "secret-password")

	_, wrongPass := service.Authenticate(context.Background(), "maxim", "not-it")
	_, unknownUser := service.Authenticate(context.Background(), "ghost", "not-it")

	if !errors.Is(wrongPass, users.ErrInvalidCredentials) {
		t.Errorf("wrong password: %v", wrongPass)
	}
	if !errors.Is(unknownUser, users.ErrInvalidCredentials) {
		t.Errorf("unknown user: %v", unknownUser)
	}
}

func TestDuplicateRegistration(t *testing.T) {
	service, _ := newService(t)
	register(t, service, "maxim", "secret-password")

	_, err := service.Register(context.Background(), users.RegisterParams{
		Username: "maxim",
		Email:    "other@example.com",
		Password: "whatever1",
	})
	if !errors.Is(err, users.ErrUsernameTaken) {
		t.Errorf("duplicate username: %v", err)
	}

	_, err = service.Register(context.Background(), users.RegisterParams{
		Username: "maxim2",
		Email:    "maxim@example.com",
		Password: "whatever1",
	})
	if !errors.Is(err, users.ErrEmailTaken) {
		t.Errorf("duplicate email: %v", err)
	}
}

func TestConcurrentRegistrationOneWinner(t *testing.T) {
	service, _ := newService(t)

	const attempts = 8
	results := make([]error, attempts)
	var group errgroup.Group
	for i := 0; i < attempts; i++ {
		i := i
		group.Go(func() error {
			_, err := service.Register(context.Background(), users.RegisterParams{
				Username: "maxim",
				Email:    fmt.Sprintf("maxim%d@example.com", i),
				Password: "secret-password",
			})
			results[i] = err
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		t.Fatalf("group: %v", err)
	}

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else if !errors.Is(err, users.ErrUsernameTaken) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
}

func TestDeleteReturnsSnapshotAndRemovesCredential(t *testing.T) {
	service, store := newService(t)
	register(t, service, "maxim", "secret-password")

	snapshot, err := service.Delete(context.Background(), "maxim")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if snapshot.Username != "maxim" {
		t.Errorf("snapshot = %+v", snapshot)
	}

	if _, err := store.Users().Get(context.Background(), "maxim"); !errors.Is(err, users.ErrUserNotFound) {
		t.Errorf("user still present: %v", err)
	}
	if _, err := store.Users().CredentialHash(context.Background(), "maxim"); !errors.Is(err, users.ErrUserNotFound) {
		t.Errorf("credential still present: %v", err)
	}

	if _, err := service.Authenticate(context.Background(), "maxim", "secret-password"); !errors.Is(err, users.ErrInvalidCredentials) {
		t.Errorf("deleted user can still authenticate: %v", err)
	}
}

func TestUpdatePatchesProfile(t *testing.T) {
	service, _ := newService(t)
	register(t, service, "maxim", "secret-password")

	newName := "Maxim Maximov"
	user, err := service.Update(context.Background(), "maxim", users.UpdateParams{FullName: &newName})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if user.FullName != newName {
		t.Errorf("full_name = %q", user.FullName)
	}
	if user.Email != "maxim@example.com" {
		t.Errorf("email changed unexpectedly: %q", user.Email)
	}
}

func TestFailedLoginIsAudited(t *testing.T) {
	store := memory.NewStore()
	var auditBuf bytes.Buffer
	service := users.NewService(store.Users(), audit.NewLogger(zerolog.New(&auditBuf)), zerolog.Nop())

	register(t, service, "maxim", "correct-horse")
	auditBuf.Reset()

	if _, err := service.Authenticate(context.Background(), "maxim", "wrong"); !errors.Is(err, users.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}

	out := auditBuf.String()
	if !strings.Contains(out, `"action":"user.login"`) {
		t.Errorf("missing audit action, got %s", out)
	}
	if !strings.Contains(out, `"status":"failure"`) {
		t.Errorf("missing failure status, got %s", out)
	}
}
