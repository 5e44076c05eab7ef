package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)
	logger.Debug("hidden")
	logger.Info("visible")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message logged at info level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("info message missing from output")
	}
}

func TestNewDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)
	logger.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Error("debug message missing with debug enabled")
	}
}

func TestWithOperation(t *testing.T) {
	logger := slog.Default()
	result := WithOperation(logger, "send_mail")
	if result == nil {
		t.Error("WithOperation returned nil")
	}
}

func TestWithComponent(t *testing.T) {
	logger := slog.Default()
	result := WithComponent(logger, "server")
	if result == nil {
		t.Error("WithComponent returned nil")
	}
}

func TestOperationAttr(t *testing.T) {
	attr := Operation("acquire_token")
	if attr.Key != KeyOperation {
		t.Errorf("Operation key = %q, want %q", attr.Key, KeyOperation)
	}
	if attr.Value.String() != "acquire_token" {
		t.Errorf("Operation value = %q, want %q", attr.Value.String(), "acquire_token")
	}
}

func TestRequestIDAttr(t *testing.T) {
	attr := RequestID("abc-123")
	if attr.Key != KeyRequestID {
		t.Errorf("RequestID key = %q, want %q", attr.Key, KeyRequestID)
	}
	if attr.Value.String() != "abc-123" {
		t.Errorf("RequestID value = %q, want %q", attr.Value.String(), "abc-123")
	}
}

func TestStatusAttr(t *testing.T) {
	attr := Status(StatusSuccess)
	if attr.Key != KeyStatus {
		t.Errorf("Status key = %q, want %q", attr.Key, KeyStatus)
	}
	if attr.Value.String() != StatusSuccess {
		t.Errorf("Status value = %q, want %q", attr.Value.String(), StatusSuccess)
	}
}

func TestErrAttr(t *testing.T) {
	err := errors.New("boom")
	attr := Err(err)
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "boom" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "boom")
	}
}

func TestErrAttrNil(t *testing.T) {
	attr := Err(nil)
	// A nil error should produce an empty group that slog omits
	if attr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty", attr.Key)
	}
}

func TestAnonymizeEmail(t *testing.T) {
	hash := AnonymizeEmail("user@example.com")
	if !strings.HasPrefix(hash, "user:") {
		t.Errorf("AnonymizeEmail = %q, want user: prefix", hash)
	}
	if strings.Contains(hash, "example.com") {
		t.Error("AnonymizeEmail leaked the address")
	}
	if AnonymizeEmail("user@example.com") != hash {
		t.Error("AnonymizeEmail not deterministic")
	}
	if AnonymizeEmail("") != "" {
		t.Error("AnonymizeEmail(\"\") should be empty")
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken(""); got != "<empty>" {
		t.Errorf("SanitizeToken(\"\") = %q, want <empty>", got)
	}
	got := SanitizeToken("eyJhbGciOiJSUzI1NiJ9.secret")
	if strings.Contains(got, "eyJ") {
		t.Errorf("SanitizeToken leaked token content: %q", got)
	}
	if got != "[token:27 chars]" {
		t.Errorf("SanitizeToken = %q, want [token:27 chars]", got)
	}
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"user@example.com", "example.com"},
		{"", ""},
		{"not-an-email", ""},
		{"a@b@c", ""},
	}

	for _, tt := range tests {
		if got := ExtractDomain(tt.email); got != tt.want {
			t.Errorf("ExtractDomain(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}
