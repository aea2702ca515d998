// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// User input errors.
	ErrValidation = errors.New("invalid input")
	ErrNotFound   = errors.New("not found")

	// Upstream errors.
	ErrLedgerUnavailable  = errors.New("ledger store unavailable")
	ErrGatewayUnavailable = errors.New("messaging gateway unavailable")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user. The
// UserMessage is safe to send back over chat; the wrapped error carries the
// internal detail for logging only.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage extracts the chat-safe message from err, falling back to the
// provided generic apology for internal errors.
func UserMessage(err error, fallback string) string {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.UserMessage
	}
	return fallback
}
