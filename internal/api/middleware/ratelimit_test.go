package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nevermarine/city-backend/internal/config"
)

func TestRateLimitLoginTierExhausts(t *testing.T) {
	cfg := config.RateLimitConfig{LoginPer15Minutes: 3}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := WithRateLimitTierHandler(TierLogin)(RateLimit(cfg)(next))

	for i := 0; i < 3; i++ {
		r := httptest.NewRequest("POST", "/token", nil)
		r.RemoteAddr = "10.0.0.1:5000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("attempt %d: status = %d", i, w.Code)
		}
	}

	r := httptest.NewRequest("POST", "/token", nil)
	r.RemoteAddr = "10.0.0.1:5000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestRateLimitKeyedByClient(t *testing.T) {
	cfg := config.RateLimitConfig{LoginPer15Minutes: 1}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := WithRateLimitTierHandler(TierLogin)(RateLimit(cfg)(next))

	r := httptest.NewRequest("POST", "/token", nil)
	r.RemoteAddr = "10.0.0.1:5000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("first client: status = %d", w.Code)
	}

	// A different client gets its own budget.
	r = httptest.NewRequest("POST", "/token", nil)
	r.RemoteAddr = "10.0.0.2:5000"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("second client: status = %d", w.Code)
	}
}

func TestRateLimitSkipsHealthEndpoints(t *testing.T) {
	cfg := config.RateLimitConfig{PublicPerMinute: 1}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimit(cfg)(next)

	for i := 0; i < 5; i++ {
		r := httptest.NewRequest("GET", "/healthz", nil)
		r.RemoteAddr = "10.0.0.1:5000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("healthz attempt %d: status = %d", i, w.Code)
		}
	}
}
