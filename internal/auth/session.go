package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/malik-javed/ez-secure-files/internal/model"
)

// SessionClaims is the signed claim bundle carried by a session token:
// identity in the registered subject, plus the account role and expiry.
type SessionClaims struct {
	jwt.RegisteredClaims
	Role model.Role `json:"role"`
}

// SessionCodec issues and validates stateless HS256 session tokens. Validity
// is determined entirely by the signature and the expiry claim; no store
// lookup happens at validation time, so a token stays valid until it expires
// even if the account changes afterwards.
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionCodec builds a codec over the server secret with the configured
// token lifetime.
func NewSessionCodec(secret string, ttl time.Duration) *SessionCodec {
	return &SessionCodec{secret: []byte(secret), ttl: ttl}
}

// Issue mints a token for the given identity and role, expiring ttl from now.
func (c *SessionCodec) Issue(email string, role model.Role) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Role: role,
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Validate checks the signature and expiry and returns the embedded identity
// and role. Any failure, including a malformed token or an unexpected signing
// method, surfaces as ErrUnauthenticated.
//
// The expiry boundary is exclusive: a token is rejected from the exact
// expiry instant onward, erring toward rejecting a second early rather than
// accepting a second late. The download capability keeps its full window
// inclusive instead.
func (c *SessionCodec) Validate(tokenString string) (email string, role model.Role, err error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", model.ErrUnauthenticated, err)
	}
	if !token.Valid || claims.Subject == "" || !claims.Role.Valid() {
		return "", "", model.ErrUnauthenticated
	}
	return claims.Subject, claims.Role, nil
}
