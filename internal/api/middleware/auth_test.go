package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nevermarine/city-backend/internal/audit"
	"github.com/nevermarine/city-backend/internal/auth"
	"github.com/nevermarine/city-backend/internal/domain/users"
)

type staticUserStore map[string]users.User

func (s staticUserStore) Get(_ context.Context, username string) (users.User, error) {
	user, ok := s[username]
	if !ok {
		return users.User{}, users.ErrUserNotFound
	}
	return user, nil
}

func newTestAuthenticator(t *testing.T) (*Authenticator, *auth.JWTManager, *bytes.Buffer) {
	t.Helper()
	manager := auth.NewJWTManager("middleware-test-secret", time.Minute, "city-backend-test")
	store := staticUserStore{
		"maxim":   {Username: "maxim"},
		"darinka": {Username: "darinka", Admin: true},
		"ghost":   {Username: "ghost", Disabled: true},
	}
	resolver := auth.NewResolver(manager, store)
	var auditBuf bytes.Buffer
	auditLogger := audit.NewLogger(zerolog.New(&auditBuf))
	return NewAuthenticator(resolver, auditLogger, "test"), manager, &auditBuf
}

func TestRequireUserPassesPrincipal(t *testing.T) {
	authn, manager, _ := newTestAuthenticator(t)

	token, err := manager.Generate("maxim")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var seen users.User
	handler := authn.RequireUser(func(w http.ResponseWriter, r *http.Request, principal users.User) {
		seen = principal
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest("GET", "/users/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if seen.Username != "maxim" {
		t.Errorf("principal = %q", seen.Username)
	}
}

func TestRequireUserRejectsMissingAndGarbage(t *testing.T) {
	authn, _, _ := newTestAuthenticator(t)

	handler := authn.RequireUser(func(w http.ResponseWriter, r *http.Request, principal users.User) {
		t.Error("handler should not run")
	})

	headers := []string{"", "Bearer", "Bearer not.a.jwt", "Basic dXNlcjpwYXNz"}
	for _, header := range headers {
		r := httptest.NewRequest("GET", "/users/me", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		handler(w, r)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, w.Code)
		}
		if got := w.Header().Get("WWW-Authenticate"); got != "Bearer" {
			t.Errorf("header %q: WWW-Authenticate = %q", header, got)
		}
	}
}

func TestRequireUserRejectsDisabledAccount(t *testing.T) {
	authn, manager, _ := newTestAuthenticator(t)

	token, err := manager.Generate("ghost")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	handler := authn.RequireUser(func(w http.ResponseWriter, r *http.Request, principal users.User) {
		t.Error("handler should not run")
	})

	r := httptest.NewRequest("GET", "/users/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	authn, manager, _ := newTestAuthenticator(t)

	handler := authn.RequireAdmin(func(w http.ResponseWriter, r *http.Request, principal users.User) {
		w.WriteHeader(http.StatusOK)
	})

	adminToken, _ := manager.Generate("darinka")
	userToken, _ := manager.Generate("maxim")

	r := httptest.NewRequest("DELETE", "/users/maxim", nil)
	r.Header.Set("Authorization", "Bearer "+adminToken)
	w := httptest.NewRecorder()
	handler(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("admin: status = %d", w.Code)
	}

	r = httptest.NewRequest("DELETE", "/users/maxim", nil)
	r.Header.Set("Authorization", "Bearer "+userToken)
	w = httptest.NewRecorder()
	handler(w, r)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-admin: status = %d, want 403", w.Code)
	}
}

func TestRejectedTokenIsAudited(t *testing.T) {
	authn, _, auditBuf := newTestAuthenticator(t)

	handler := authn.RequireUser(func(w http.ResponseWriter, r *http.Request, principal users.User) {
		t.Error("handler should not run")
	})

	r := httptest.NewRequest("GET", "/users/me", nil)
	r.Header.Set("Authorization", "Bearer not.a.jwt")
	w := httptest.NewRecorder()
	handler(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	out := auditBuf.String()
	if !strings.Contains(out, `"action":"token.rejected"`) {
		t.Errorf("missing audit action, got %s", out)
	}
	if !strings.Contains(out, `"status":"failure"`) {
		t.Errorf("missing failure status, got %s", out)
	}
}
