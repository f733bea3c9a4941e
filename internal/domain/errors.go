package domain

import (
	"errors"
	"strings"
)

// MsgInvalidLogin is shown for every failed sign-in so the form does not reveal whether the
// email or the password was wrong.
const MsgInvalidLogin = "Invalid email or password. Please try again."

// Sentinel errors shared by adapters and services.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidResponse    = errors.New("invalid response from backend")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("no active session")
)

// ValidationError is returned when user input is rejected before any network call.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// NewValidationError returns a ValidationError, or nil when problems is empty.
func NewValidationError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// AuthError is an identity provider failure translated to a fixed human-readable sentence.
// Code keeps the provider's own error code for logging.
type AuthError struct {
	Code    string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
