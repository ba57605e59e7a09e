// Package auth holds the credential and token primitives: bcrypt password
// hashing, the JWT session codec, the encrypted download capability codec,
// and the role/verification access policy.
package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost balances hashing cost against login latency.
const bcryptCost = 12

// HashPassword returns the bcrypt digest of password. The digest embeds its
// own salt and cost factor.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored digest.
// bcrypt's comparison is constant-time over the derived key.
func VerifyPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
