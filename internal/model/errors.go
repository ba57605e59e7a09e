package model

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Services return these (possibly wrapped with %w)
// and the HTTP layer maps them to status codes in one place.
var (
	// ErrConflict signals a duplicate email or username at signup.
	ErrConflict = errors.New("email or username already registered")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so that login never reveals which identifiers exist.
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrUnverified means the password was correct but the account has not
	// completed email verification.
	ErrUnverified = errors.New("email not verified")

	// ErrUnauthenticated covers a missing, malformed, or expired session token.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound covers a missing file record or a missing blob.
	ErrNotFound = errors.New("not found")

	// ErrVerificationInvalid covers an unknown, mismatched, or already
	// consumed verification token.
	ErrVerificationInvalid = errors.New("invalid or expired verification token")

	// ErrAlreadyVerified is returned when resending a verification mail for
	// an account that has already verified.
	ErrAlreadyVerified = errors.New("email is already verified")

	// ErrDependency wraps notifier and blob-store I/O failures.
	ErrDependency = errors.New("dependency failure")

	// ErrInvalidInput covers malformed signup fields and rejected uploads.
	ErrInvalidInput = errors.New("invalid input")
)

// Forbidden reasons used with ForbiddenError.
const (
	ReasonUnverified = "unverified"
	ReasonWrongRole  = "wrong_role"
)

// ForbiddenError is returned by the access policy when a verified-state or
// role check fails. The reason distinguishes the two gates.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Reason)
}

// IsForbidden reports whether err is a policy rejection.
func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}
