package handlers

import (
	"errors"
	"net/http"

	"github.com/nevermarine/city-backend/internal/api/problem"
	"github.com/nevermarine/city-backend/internal/auth"
	"github.com/nevermarine/city-backend/internal/domain/users"
	"github.com/nevermarine/city-backend/internal/metrics"
)

// AuthHandler exchanges username/password credentials for bearer tokens.
type AuthHandler struct {
	Users  *users.Service
	Issuer *auth.JWTManager
	Env    string
}

func NewAuthHandler(usersService *users.Service, issuer *auth.JWTManager, env string) *AuthHandler {
	return &AuthHandler{Users: usersService, Issuer: issuer, Env: env}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Token handles POST /token. The body is form-encoded. Every credential
// failure gets the same 401 so the endpoint cannot be used to probe for
// usernames.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Invalid request body", err, h.Env)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Missing credentials", errors.New("username and password are required"), h.Env)
		return
	}

	user, err := h.Users.Authenticate(r.Context(), username, password)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		if errors.Is(err, users.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
				"Incorrect username or password", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal,
			"Server error", err, h.Env)
		return
	}

	token, err := h.Issuer.Generate(user.Username)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal,
			"Server error", err, h.Env)
		return
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.Inc()
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}
