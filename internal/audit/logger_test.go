package audit

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestLogSuccess(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.New(&buf))

	logger.LogSuccess("user.created", "admin", "user", "maxim", map[string]string{"email": "m@x.com"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal audit line: %v", err)
	}
	if entry["action"] != "user.created" {
		t.Errorf("expected action user.created, got %v", entry["action"])
	}
	if entry["status"] != "success" {
		t.Errorf("expected status success, got %v", entry["status"])
	}
	if entry["resource_id"] != "maxim" {
		t.Errorf("expected resource_id maxim, got %v", entry["resource_id"])
	}
	if entry["stream"] != "audit" {
		t.Errorf("expected audit stream marker, got %v", entry["stream"])
	}
	if entry["detail_email"] != "m@x.com" {
		t.Errorf("expected email detail, got %v", entry["detail_email"])
	}
}

func TestLogFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.New(&buf))

	logger.LogFailure("user.deleted", "admin", nil)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal audit line: %v", err)
	}
	if entry["status"] != "failure" {
		t.Errorf("expected status failure, got %v", entry["status"])
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.LogSuccess("noop", "nobody", "", "", nil)
}
