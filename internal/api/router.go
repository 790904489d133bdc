package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nevermarine/city-backend/internal/api/handlers"
	"github.com/nevermarine/city-backend/internal/api/middleware"
	"github.com/nevermarine/city-backend/internal/audit"
	"github.com/nevermarine/city-backend/internal/auth"
	"github.com/nevermarine/city-backend/internal/config"
	"github.com/nevermarine/city-backend/internal/domain/events"
	"github.com/nevermarine/city-backend/internal/domain/news"
	"github.com/nevermarine/city-backend/internal/domain/requests"
	"github.com/nevermarine/city-backend/internal/domain/users"
	"github.com/nevermarine/city-backend/internal/metrics"
	"github.com/nevermarine/city-backend/internal/storage"
)

// NewRouter wires services, handlers, and the middleware chain over the given
// store. The store is injected so tests can run the full router against the
// in-memory implementation.
func NewRouter(cfg config.Config, logger zerolog.Logger, store storage.Repository, db handlers.Pinger, version string) http.Handler {
	auditLogger := audit.NewLogger(logger)

	usersService := users.NewService(store.Users(), auditLogger, logger)
	requestsService := requests.NewService(store.Requests(), auditLogger, logger)
	newsService := news.NewService(store.News(), auditLogger, logger)
	eventsService := events.NewService(store.Events(), auditLogger, logger)

	issuer := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	resolver := auth.NewResolver(issuer, store.Users())
	authn := middleware.NewAuthenticator(resolver, auditLogger, cfg.Environment)

	authHandler := handlers.NewAuthHandler(usersService, issuer, cfg.Environment)
	usersHandler := handlers.NewUsersHandler(usersService, cfg.Environment)
	requestsHandler := handlers.NewRequestsHandler(requestsService, cfg.Environment)
	newsHandler := handlers.NewNewsHandler(newsService, cfg.Environment)
	eventsHandler := handlers.NewEventsHandler(eventsService, cfg.Environment)
	healthHandler := handlers.NewHealthHandler(db, version)

	// One limiter store shared by every route. Limiting is applied per route
	// so the tier marker can wrap the limiter; the login route draws from the
	// login budget only, everything else from the public budget.
	rateLimit := middleware.RateLimit(cfg.RateLimit)
	loginLimit := func(next http.Handler) http.Handler {
		return middleware.WithRateLimitTierHandler(middleware.TierLogin)(rateLimit(next))
	}

	mux := http.NewServeMux()

	mux.Handle("/healthz", http.HandlerFunc(healthHandler.Healthz))
	mux.Handle("/readyz", http.HandlerFunc(healthHandler.Readyz))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("/token", methodMux(map[string]http.Handler{
		http.MethodPost: loginLimit(http.HandlerFunc(authHandler.Token)),
	}))

	mux.Handle("/users/create", rateLimit(methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(usersHandler.Create),
	})))
	mux.Handle("/users/me", rateLimit(methodMux(map[string]http.Handler{
		http.MethodGet: authn.RequireUser(usersHandler.Me),
	})))
	mux.Handle("/users", rateLimit(methodMux(map[string]http.Handler{
		http.MethodGet: authn.RequireUser(usersHandler.List),
	})))
	mux.Handle("/users/{username}", rateLimit(methodMux(map[string]http.Handler{
		http.MethodGet:    authn.RequireUser(usersHandler.Get),
		http.MethodPut:    authn.RequireUser(usersHandler.Update),
		http.MethodDelete: authn.RequireUser(usersHandler.Delete),
	})))

	mux.Handle("/requests", rateLimit(methodMux(map[string]http.Handler{
		http.MethodGet:  authn.RequireUser(requestsHandler.List),
		http.MethodPost: authn.RequireUser(requestsHandler.Create),
	})))
	mux.Handle("/requests/{id}", rateLimit(methodMux(map[string]http.Handler{
		http.MethodGet:    authn.RequireUser(requestsHandler.Get),
		http.MethodPut:    authn.RequireUser(requestsHandler.Update),
		http.MethodDelete: authn.RequireUser(requestsHandler.Delete),
	})))

	mux.Handle("/news", rateLimit(methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(newsHandler.List),
		http.MethodPost: authn.RequireAdmin(newsHandler.Create),
	})))
	mux.Handle("/news/{id}", rateLimit(methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(newsHandler.Get),
		http.MethodPut:    authn.RequireAdmin(newsHandler.Update),
		http.MethodDelete: authn.RequireAdmin(newsHandler.Delete),
	})))

	mux.Handle("/events", rateLimit(methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsHandler.List),
		http.MethodPost: authn.RequireAdmin(eventsHandler.Create),
	})))
	mux.Handle("/events/{id}", rateLimit(methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(eventsHandler.Get),
		http.MethodPut:    authn.RequireAdmin(eventsHandler.Update),
		http.MethodDelete: authn.RequireAdmin(eventsHandler.Delete),
	})))

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
