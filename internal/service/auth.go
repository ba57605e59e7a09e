// Package service implements the account and file flows on top of the
// stores, the notifier, and the token codecs. Collaborators are injected as
// interfaces so the flows are testable with fakes.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/malik-javed/ez-secure-files/internal/auth"
	"github.com/malik-javed/ez-secure-files/internal/logging"
	"github.com/malik-javed/ez-secure-files/internal/model"
)

// IdentityStore is the account persistence collaborator. Find methods return
// (nil, nil) when no record matches; Insert reports duplicates as
// model.ErrConflict atomically.
type IdentityStore interface {
	Insert(ctx context.Context, acc *model.Account) error
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	SetVerified(ctx context.Context, email string, verified bool) error
	SetVerificationToken(ctx context.Context, email, token string) error
}

// Notifier delivers verification mail. Implementations bound their own
// timeouts; a failure report aborts signup unless bypass is configured.
type Notifier interface {
	SendVerification(email, token string) error
}

// AuthService implements registration, verification, and login.
type AuthService struct {
	ids      IdentityStore
	notifier Notifier
	sessions *auth.SessionCodec

	// bypassVerification lets signup proceed when the verification mail
	// fails. Development-only escape hatch, off by default.
	bypassVerification bool

	log *logging.Logger
}

func NewAuthService(ids IdentityStore, notifier Notifier, sessions *auth.SessionCodec, bypassVerification bool, log *logging.Logger) *AuthService {
	return &AuthService{
		ids:                ids,
		notifier:           notifier,
		sessions:           sessions,
		bypassVerification: bypassVerification,
		log:                log,
	}
}

// Signup registers a new unverified account. The verification mail is sent
// before the account is created: if the notifier fails, no account exists
// (unless bypass is enabled). The duplicate pre-checks are a UX courtesy;
// the store's insert constraint is the real guard against races.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validateUsername(username); err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	if existing, err := s.ids.FindByEmail(ctx, email); err != nil {
		return err
	} else if existing != nil {
		return model.ErrConflict
	}
	if existing, err := s.ids.FindByUsername(ctx, username); err != nil {
		return err
	} else if existing != nil {
		return model.ErrConflict
	}

	digest, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	token, err := generateVerificationToken()
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}

	if err := s.notifier.SendVerification(email, token); err != nil {
		if !s.bypassVerification {
			return fmt.Errorf("%w: verification email: %v", model.ErrDependency, err)
		}
		s.log.Warn("verification email failed, creating account anyway (bypass enabled)",
			"email", email, "error", err)
	}

	acc := &model.Account{
		ID:                uuid.New(),
		Email:             email,
		Username:          username,
		PasswordHash:      digest,
		Role:              model.RoleClient,
		Verified:          false,
		VerificationToken: token,
	}
	if err := s.ids.Insert(ctx, acc); err != nil {
		return err
	}

	s.log.Info("account created", "email", email, "username", username)
	return nil
}

// Verify flips the account to verified on an exact (email, token) match and
// clears the token so it cannot be replayed.
func (s *AuthService) Verify(ctx context.Context, email, token string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	acc, err := s.ids.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if acc == nil || acc.Verified || token == "" || acc.VerificationToken != token {
		return model.ErrVerificationInvalid
	}

	if err := s.ids.SetVerified(ctx, email, true); err != nil {
		return err
	}
	if err := s.ids.SetVerificationToken(ctx, email, ""); err != nil {
		return err
	}

	s.log.Info("email verified", "email", email)
	return nil
}

// ResendVerification attaches a fresh token to a pending account,
// invalidating any previously issued one, and mails it.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	acc, err := s.ids.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if acc == nil {
		return model.ErrNotFound
	}
	if acc.Verified {
		return model.ErrAlreadyVerified
	}

	token, err := generateVerificationToken()
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}
	if err := s.ids.SetVerificationToken(ctx, email, token); err != nil {
		return err
	}

	if err := s.notifier.SendVerification(email, token); err != nil && !s.bypassVerification {
		return fmt.Errorf("%w: verification email: %v", model.ErrDependency, err)
	}
	return nil
}

// Login checks credentials and mints a session token. An unknown email and a
// wrong password produce the identical ErrInvalidCredentials; a correct
// password on an unverified account is the distinct ErrUnverified.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	acc, err := s.ids.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if acc == nil || !auth.VerifyPassword(password, acc.PasswordHash) {
		return "", model.ErrInvalidCredentials
	}
	if !acc.Verified {
		return "", model.ErrUnverified
	}

	return s.sessions.Issue(acc.Email, acc.Role)
}

// CurrentAccount resolves a bearer token to its account. The token is
// validated statelessly first; the store lookup only hydrates the account.
func (s *AuthService) CurrentAccount(ctx context.Context, token string) (*model.Account, error) {
	email, _, err := s.sessions.Validate(token)
	if err != nil {
		return nil, err
	}
	acc, err := s.ids.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, model.ErrUnauthenticated
	}
	return acc, nil
}

// generateVerificationToken creates a random 32-byte hex token.
func generateVerificationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
