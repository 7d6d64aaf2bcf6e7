// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// API errors.
	ErrNetwork           = errors.New("network error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrRequestFailed     = errors.New("request failed")

	// Receipt errors.
	ErrInvalidReceipt = errors.New("invalid receipt file")

	// Session errors.
	ErrNoSession      = errors.New("no active session")
	ErrStorageFailure = errors.New("session storage failure")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
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

// UserMessage returns the user-facing message carried by err, or the error
// text itself when err carries none.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var userErr *UserError
	if errors.As(err, &userErr) && userErr.UserMessage != "" {
		return userErr.UserMessage
	}
	var facing userFacing
	if errors.As(err, &facing) && facing.UserFacingMessage() != "" {
		return facing.UserFacingMessage()
	}
	return err.Error()
}

// userFacing is implemented by errors from other packages that carry their
// own display text.
type userFacing interface {
	UserFacingMessage() string
}

// IsAuthError reports whether err means the session is missing or was rejected.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNoSession)
}
