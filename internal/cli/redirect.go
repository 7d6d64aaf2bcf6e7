package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// LoginRedirector is the terminal's version of sending the user back to the
// login page: it tells them, once, to sign in again.
type LoginRedirector struct {
	writer io.Writer
	once   sync.Once
}

// NewLoginRedirector creates a redirector writing to w.
func NewLoginRedirector(w io.Writer) *LoginRedirector {
	return &LoginRedirector{writer: w}
}

// RedirectToLogin implements api.Redirector.
func (r *LoginRedirector) RedirectToLogin(context.Context) {
	r.once.Do(func() {
		msg := FormatWarning("Your session has expired. Please log in again with: expense auth login")
		if _, err := fmt.Fprintln(r.writer, msg); err != nil {
			slog.Debug("Failed to write login redirect", "error", err)
		}
	})
}
