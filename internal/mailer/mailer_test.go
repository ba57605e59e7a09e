package mailer

import (
	"testing"
	"time"

	"github.com/malik-javed/ez-secure-files/internal/logging"
)

func TestSendVerificationDisabled(t *testing.T) {
	m := New(Config{Enabled: false, BaseURL: "http://localhost:8080"}, logging.New(12))
	if err := m.SendVerification("user@example.com", "tok123"); err != nil {
		t.Fatalf("disabled mailer should not fail: %v", err)
	}
}

func TestSendVerificationUnconfigured(t *testing.T) {
	m := New(Config{Enabled: true, BaseURL: "http://localhost:8080"}, logging.New(12))
	if err := m.SendVerification("user@example.com", "tok123"); err == nil {
		t.Fatalf("expected error when smtp relay is not configured")
	}
}

func TestNewDefaultsTimeout(t *testing.T) {
	m := New(Config{}, logging.New(12))
	if m.cfg.Timeout != 10*time.Second {
		t.Fatalf("default timeout = %v, want 10s", m.cfg.Timeout)
	}
}
