package service

import (
	"fmt"
	"regexp"

	"github.com/malik-javed/ez-secure-files/internal/model"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	hasNumber     = regexp.MustCompile(`[0-9]`)
	hasLetter     = regexp.MustCompile(`[a-zA-Z]`)
)

func validateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("%w: invalid email address", model.ErrInvalidInput)
	}
	return nil
}

func validateUsername(username string) error {
	if len(username) < 3 || len(username) > 50 {
		return fmt.Errorf("%w: username must be 3-50 characters", model.ErrInvalidInput)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("%w: username can only contain letters, numbers, and underscores", model.ErrInvalidInput)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 || len(password) > 128 {
		return fmt.Errorf("%w: password must be 8-128 characters", model.ErrInvalidInput)
	}
	if !hasNumber.MatchString(password) || !hasLetter.MatchString(password) {
		return fmt.Errorf("%w: password must contain both letters and numbers", model.ErrInvalidInput)
	}
	return nil
}
