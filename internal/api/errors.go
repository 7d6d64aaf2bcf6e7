package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/smart-expense-tracker/internal/common"
	"github.com/Veraticus/smart-expense-tracker/internal/model"
)

// User-facing messages shared by several operations.
const (
	NetworkErrorMessage     = "Network error. Please check your connection and try again."
	MalformedMessage        = "Unexpected response from the server. Please try again later."
	SessionExpiredMessage   = "Your session has expired. Please log in again."
	UnauthenticatedMessage  = "Unauthenticated: Please log in to continue."
	SessionNotSavedMessage  = "Signed in, but the session could not be saved on this device."
	defaultFailureMessage   = "Request failed. Please try again."
	invalidTokenServerReply = "Invalid token."
)

// Error describes a failed API operation. Kind is one of the sentinels in
// package common and is matched by errors.Is.
type Error struct {
	Kind    error
	Err     error
	Op      string
	Message string
	Fields  []model.FieldError
	Status  int
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// UserFacingMessage returns the message meant for display.
func (e *Error) UserFacingMessage() string {
	return e.Message
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// TokenRejected reports whether err means the server refused the stored
// token, as opposed to no token being stored at all.
func TokenRejected(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && errors.Is(apiErr.Kind, common.ErrUnauthorized) && apiErr.Status != 0
}
