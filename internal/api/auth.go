package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/Veraticus/smart-expense-tracker/internal/common"
	"github.com/Veraticus/smart-expense-tracker/internal/model"
	"github.com/Veraticus/smart-expense-tracker/internal/session"
)

// RegisterRequest creates an account.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest obtains a session.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetPasswordRequest consumes a reset code.
type ResetPasswordRequest struct {
	Code            string `json:"code"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// AuthPayload is returned by register and login.
type AuthPayload struct {
	User        model.User `json:"user"`
	AccessToken string     `json:"accessToken"`
}

// Validate implements validator.
func (p *AuthPayload) Validate() error {
	if p.AccessToken == "" {
		return errors.New("accessToken is missing")
	}
	return nil
}

// Session returns the session described by the payload.
func (p *AuthPayload) Session() model.Session {
	return model.Session{AccessToken: p.AccessToken, User: p.User}
}

// Register creates an account and, on success, stores the returned session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Envelope[AuthPayload], error) {
	env, err := send[AuthPayload](ctx, c, request{
		op:          "register",
		method:      http.MethodPost,
		path:        "/auth/register",
		body:        req,
		failure:     "Registration failed",
		requireData: true,
	})
	if err != nil {
		return env, err
	}
	return c.storeSession(ctx, "register", env)
}

// Login authenticates and, on success, stores the returned session.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*Envelope[AuthPayload], error) {
	env, err := send[AuthPayload](ctx, c, request{
		op:          "login",
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        req,
		failure:     "Login failed",
		requireData: true,
	})
	if err != nil {
		return env, err
	}
	return c.storeSession(ctx, "login", env)
}

// storeSession persists the session of a successful register or login.
func (c *Client) storeSession(ctx context.Context, op string, env *Envelope[AuthPayload]) (*Envelope[AuthPayload], error) {
	if err := c.sessions.Save(ctx, env.Data.Session()); err != nil {
		c.logger.ErrorContext(ctx, "Failed to save session", "op", op, "error", err)
		failed, ferr := failure[AuthPayload](request{op: op}, common.ErrStorageFailure, 0, SessionNotSavedMessage, nil, err)
		failed.Data = env.Data
		return failed, ferr
	}
	c.logger.InfoContext(ctx, "Signed in", "op", op, "user_id", env.Data.User.ID)
	return env, nil
}

// Logout notifies the server on a best-effort basis and always clears the
// local session. It cannot fail: network and server errors are logged and
// treated as a successful local logout.
func (c *Client) Logout(ctx context.Context) *Envelope[struct{}] {
	message := "Logged out successfully"

	if c.sessions.Authenticated() {
		env, err := send[struct{}](ctx, c, request{
			op:      "logout",
			method:  http.MethodPost,
			path:    "/auth/logout",
			auth:    authBestEffort,
			failure: "Logout failed",
		})
		switch {
		case err != nil:
			c.logger.DebugContext(ctx, "Server logout failed, clearing local session anyway", "error", err)
		case env.Message != "":
			message = env.Message
		}
	}

	if err := c.sessions.Clear(ctx, session.EventSignedOut); err != nil {
		c.logger.WarnContext(ctx, "Failed to clear stored session", "error", err)
	}

	return &Envelope[struct{}]{Success: true, Message: message, Errors: []model.FieldError{}}
}

// ForgotPassword asks the server to email a reset code.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*Envelope[struct{}], error) {
	return send[struct{}](ctx, c, request{
		op:      "forgot_password",
		method:  http.MethodPost,
		path:    "/auth/forget-password",
		body:    map[string]string{"email": email},
		failure: "Failed to send reset code",
	})
}

// ResetPassword sets a new password using an emailed code.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*Envelope[struct{}], error) {
	return send[struct{}](ctx, c, request{
		op:      "reset_password",
		method:  http.MethodPost,
		path:    "/auth/reset-password",
		body:    req,
		failure: "Failed to reset password",
	})
}
