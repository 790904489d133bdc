package problem

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
)

func TestWriteSetsContentTypeAndStatus(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/users/ghost", nil)

	Write(w, r, 404, TypeNotFound, "User not found", errors.New("no row"), "production")

	if got := w.Header().Get("Content-Type"); got != "application/problem+json" {
		t.Fatalf("content type = %q", got)
	}
	if w.Code != 404 {
		t.Fatalf("status = %d", w.Code)
	}

	var body ProblemDetails
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Type != TypeNotFound {
		t.Errorf("type = %q", body.Type)
	}
	if body.Instance != "/users/ghost" {
		t.Errorf("instance = %q", body.Instance)
	}
}

func TestWriteHidesDetailInProduction(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	Write(w, r, 500, TypeInternal, "Internal error", errors.New("pq: connection refused"), "production")

	var body ProblemDetails
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Detail != "Internal Server Error" {
		t.Errorf("detail leaked: %q", body.Detail)
	}
}

func TestWriteExposesDetailInDevelopment(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	Write(w, r, 400, TypeValidation, "Validation failed", errors.New("username is required"), "development")

	var body ProblemDetails
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Detail != "username is required" {
		t.Errorf("detail = %q", body.Detail)
	}
}

func TestWithErrors(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/users/create", nil)

	Write(w, r, 400, TypeValidation, "Validation failed", nil, "test",
		WithErrors(map[string]interface{}{"email": "must be a valid email"}))

	var body ProblemDetails
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Errors["email"] != "must be a valid email" {
		t.Errorf("errors = %v", body.Errors)
	}
}
