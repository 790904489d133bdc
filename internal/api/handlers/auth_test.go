package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevermarine/city-backend/internal/audit"
	"github.com/nevermarine/city-backend/internal/auth"
	"github.com/nevermarine/city-backend/internal/domain/users"
	"github.com/nevermarine/city-backend/internal/storage/memory"
)

func newAuthHandler(t *testing.T) (*AuthHandler, *users.Service) {
	t.Helper()
	store := memory.NewStore()
	logger := zerolog.Nop()
	usersService := users.NewService(store.Users(), audit.NewLogger(logger), logger)
	issuer := auth.NewJWTManager("handler-test-secret", time.Minute, "city-backend-test")
	return NewAuthHandler(usersService, issuer, "test"), usersService
}

func postToken(t *testing.T, handler *AuthHandler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest("POST", "/token", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	handler.Token(w, r)
	return w
}

func TestTokenIssuesBearer(t *testing.T) {
	handler, usersService := newAuthHandler(t)

	_, err := usersService.Register(t.Context(), users.RegisterParams{
		Username: "maxim",
		Email:    "maxim@example.com",
		Password: "super-secret",
	})
	require.NoError(t, err)

	w := postToken(t, handler, url.Values{
		"username": {"maxim"},
		"password": {"super-secret"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotContains(t, w.Body.String(), "super-secret")
}

func TestTokenRejectsBadCredentials(t *testing.T) {
	handler, usersService := newAuthHandler(t)

	_, err := usersService.Register(t.Context(), users.RegisterParams{
		Username: "maxim",
		Email:    "maxim@example.com",
		Password: "super-secret",
	})
	require.NoError(t, err)

	w := postToken(t, handler, url.Values{
		"username": {"maxim"},
		"password": {"wrong"},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	assert.Contains(t, w.Body.String(), "Incorrect username or password")
}

func TestTokenRequiresBothFields(t *testing.T) {
	handler, _ := newAuthHandler(t)

	for _, form := range []url.Values{
		{},
		{"username": {"maxim"}},
		{"password": {"super-secret"}},
	} {
		w := postToken(t, handler, form)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}
