package middleware

import (
	"errors"
	"net/http"

	"github.com/nevermarine/city-backend/internal/api/problem"
	"github.com/nevermarine/city-backend/internal/audit"
	"github.com/nevermarine/city-backend/internal/auth"
	"github.com/nevermarine/city-backend/internal/domain/users"
	"github.com/nevermarine/city-backend/internal/metrics"
)

// UserHandler is an http handler that additionally receives the resolved
// principal. Handlers never fish the user out of the request context; the
// middleware resolves it once and passes it explicitly.
type UserHandler func(w http.ResponseWriter, r *http.Request, principal users.User)

// Authenticator guards handlers behind bearer-token resolution.
type Authenticator struct {
	resolver    *auth.Resolver
	auditLogger *audit.Logger
	env         string
}

func NewAuthenticator(resolver *auth.Resolver, auditLogger *audit.Logger, env string) *Authenticator {
	return &Authenticator{resolver: resolver, auditLogger: auditLogger, env: env}
}

// RequireUser resolves the bearer token to an active user and hands it to
// next. Every resolution failure is a 401 with WWW-Authenticate set; the
// response never says which check failed.
func (a *Authenticator) RequireUser(next UserHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			a.unauthorized(w, r, err)
			return
		}

		principal, err := a.resolver.ResolveActive(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInactiveAccount) {
				problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden,
					"Inactive account", err, a.env)
				return
			}
			a.unauthorized(w, r, err)
			return
		}

		next(w, r, principal)
	}
}

// RequireAdmin additionally rejects non-admin principals with a 403.
func (a *Authenticator) RequireAdmin(next UserHandler) http.HandlerFunc {
	return a.RequireUser(func(w http.ResponseWriter, r *http.Request, principal users.User) {
		if !principal.Admin {
			problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden,
				"Admin privileges required", errors.New("not an admin"), a.env)
			return
		}
		next(w, r, principal)
	})
}

func (a *Authenticator) unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	metrics.AuthFailuresTotal.Inc()
	a.auditLogger.LogFailure("token.rejected", "", map[string]string{"path": r.URL.Path})
	w.Header().Set("WWW-Authenticate", "Bearer")
	problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
		"Could not validate credentials", err, a.env)
}
