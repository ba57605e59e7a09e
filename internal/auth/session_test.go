package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/malik-javed/ez-secure-files/internal/model"
)

func TestSessionIssueAndValidate(t *testing.T) {
	codec := NewSessionCodec("test-secret", time.Hour)

	tok, err := codec.Issue("alice@x.com", model.RoleOps)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	email, role, err := codec.Validate(tok)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if email != "alice@x.com" {
		t.Fatalf("unexpected email: got %q want %q", email, "alice@x.com")
	}
	if role != model.RoleOps {
		t.Fatalf("unexpected role: got %q want %q", role, model.RoleOps)
	}
}

func TestSessionValidateExpired(t *testing.T) {
	codec := NewSessionCodec("test-secret", -time.Minute)

	tok, err := codec.Issue("bob@x.com", model.RoleClient)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, _, err := codec.Validate(tok); !errors.Is(err, model.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for expired token, got %v", err)
	}
}

func TestSessionValidateAtExactExpiry(t *testing.T) {
	codec := NewSessionCodec("test-secret", time.Hour)

	// A token whose expiry claim is the current instant is already invalid:
	// the boundary is exclusive.
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "bob@x.com",
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now),
		},
		Role: model.RoleClient,
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, _, err := codec.Validate(signed); !errors.Is(err, model.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated at the expiry instant, got %v", err)
	}
}

func TestSessionValidateTampered(t *testing.T) {
	codec := NewSessionCodec("test-secret", time.Hour)

	tok, err := codec.Issue("bob@x.com", model.RoleClient)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// Corrupt the payload segment; the signature no longer matches.
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", tok)
	}
	bad := parts[0] + "." + parts[1][1:] + "x." + parts[2]

	if _, _, err := codec.Validate(bad); !errors.Is(err, model.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for tampered token, got %v", err)
	}
}

func TestSessionValidateWrongSecret(t *testing.T) {
	issuer := NewSessionCodec("secret-a", time.Hour)
	verifier := NewSessionCodec("secret-b", time.Hour)

	tok, err := issuer.Issue("bob@x.com", model.RoleClient)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, _, err := verifier.Validate(tok); !errors.Is(err, model.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for wrong secret, got %v", err)
	}
}

func TestSessionValidateMalformed(t *testing.T) {
	codec := NewSessionCodec("test-secret", time.Hour)
	for _, tok := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		if _, _, err := codec.Validate(tok); !errors.Is(err, model.ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated for %q, got %v", tok, err)
		}
	}
}
