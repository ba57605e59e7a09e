package model

import (
	"time"

	"github.com/google/uuid"
)

// Role separates uploader accounts from consumer accounts. It is assigned
// at creation and there is no operation that mutates it afterwards.
type Role string

const (
	// RoleOps accounts may upload files.
	RoleOps Role = "ops"
	// RoleClient is the default role for new signups.
	RoleClient Role = "client"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleOps || r == RoleClient
}

// Account is an identity record in the identity store. PasswordHash is the
// bcrypt digest; the plaintext password never appears on this struct.
// VerificationToken is present only while the account is unverified and is
// cleared the moment it is consumed.
type Account struct {
	ID                uuid.UUID
	Email             string
	Username          string
	PasswordHash      string
	Role              Role
	Verified          bool
	VerificationToken string
	CreatedAt         time.Time
}
