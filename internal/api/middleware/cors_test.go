package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nevermarine/city-backend/internal/config"
)

func corsHandler(cfg config.CORSConfig) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return CORS(cfg, zerolog.Nop())(next)
}

func TestCORSAllowsWhitelistedOrigin(t *testing.T) {
	handler := corsHandler(config.CORSConfig{
		AllowedOrigins: []string{"https://city.example"},
	})

	r := httptest.NewRequest("GET", "/news", nil)
	r.Header.Set("Origin", "https://city.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://city.example" {
		t.Errorf("allow-origin = %q", got)
	}
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	handler := corsHandler(config.CORSConfig{
		AllowedOrigins: []string{"https://city.example"},
	})

	r := httptest.NewRequest("GET", "/news", nil)
	r.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin = %q, want empty", got)
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, request should still pass through", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := corsHandler(config.CORSConfig{AllowAllOrigins: true})

	r := httptest.NewRequest("OPTIONS", "/requests", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("missing Access-Control-Allow-Methods")
	}
}

func TestCORSSkipsSameOrigin(t *testing.T) {
	handler := corsHandler(config.CORSConfig{AllowAllOrigins: true})

	r := httptest.NewRequest("GET", "/news", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin = %q, want empty for same-origin", got)
	}
}
