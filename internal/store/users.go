package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/malik-javed/ez-secure-files/internal/model"
)

// pgUniqueViolation is the PostgreSQL error code for a unique constraint hit.
const pgUniqueViolation = "23505"

// IdentityStore persists accounts. Find methods return (nil, nil) when no
// record matches.
type IdentityStore struct {
	db *sql.DB
}

func NewIdentityStore(db *sql.DB) *IdentityStore {
	return &IdentityStore{db: db}
}

// Insert creates an account. A duplicate email or username surfaces as
// model.ErrConflict; the constraint check happens atomically in the database,
// so concurrent signups for the same identity cannot both succeed.
func (s *IdentityStore) Insert(ctx context.Context, acc *model.Account) error {
	token := sql.NullString{String: acc.VerificationToken, Valid: acc.VerificationToken != ""}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, username, password_hash, role, email_verified, verification_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, acc.ID, acc.Email, acc.Username, acc.PasswordHash, string(acc.Role), acc.Verified, token)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return model.ErrConflict
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (s *IdentityStore) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	return s.findBy(ctx, "email", email)
}

func (s *IdentityStore) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	return s.findBy(ctx, "username", username)
}

func (s *IdentityStore) findBy(ctx context.Context, column, value string) (*model.Account, error) {
	var (
		acc   model.Account
		role  string
		token sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, username, password_hash, role, email_verified, verification_token, created_at
		FROM users WHERE `+column+` = $1
	`, value).Scan(&acc.ID, &acc.Email, &acc.Username, &acc.PasswordHash, &role, &acc.Verified, &token, &acc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account by %s: %w", column, err)
	}
	acc.Role = model.Role(role)
	acc.VerificationToken = token.String
	return &acc, nil
}

// SetVerified flips the verification state for the account with this email.
func (s *IdentityStore) SetVerified(ctx context.Context, email string, verified bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET email_verified = $1 WHERE email = $2`, verified, email)
	if err != nil {
		return fmt.Errorf("failed to update verification state: %w", err)
	}
	return nil
}

// SetVerificationToken attaches a new one-time token, or clears it when
// token is empty. Replacing the token invalidates any previously issued one.
func (s *IdentityStore) SetVerificationToken(ctx context.Context, email, token string) error {
	value := sql.NullString{String: token, Valid: token != ""}
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET verification_token = $1 WHERE email = $2`, value, email)
	if err != nil {
		return fmt.Errorf("failed to set verification token: %w", err)
	}
	return nil
}
