package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/Veraticus/smart-expense-tracker/internal/model"
)

// ProfilePayload carries the signed-in user's profile.
type ProfilePayload struct {
	User model.User `json:"user"`
}

// UnmarshalJSON accepts both {"user": {...}} and a bare user object.
func (p *ProfilePayload) UnmarshalJSON(data []byte) error {
	return unwrapMember(data, "user", &p.User)
}

// Validate implements validator.
func (p *ProfilePayload) Validate() error {
	if p.User.ID == "" && p.User.Email == "" {
		return errors.New("user is missing")
	}
	return nil
}

// ProfileUpdate changes the display name and, optionally, the password.
type ProfileUpdate struct {
	Name            string `json:"name"`
	NewPassword     string `json:"newPassword,omitempty"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

// GetProfile fetches the current user. On success the cached user in the
// session is refreshed.
func (c *Client) GetProfile(ctx context.Context) (*Envelope[ProfilePayload], error) {
	env, err := send[ProfilePayload](ctx, c, request{
		op:          "get_profile",
		method:      http.MethodGet,
		path:        "/auth/profile",
		auth:        authRedirect,
		failure:     "Failed to load profile",
		requireData: true,
	})
	if err != nil {
		return env, err
	}
	c.refreshUser(ctx, env.Data.User)
	return env, nil
}

// UpdateProfile saves the profile. Password fields are only sent when set.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Envelope[ProfilePayload], error) {
	env, err := send[ProfilePayload](ctx, c, request{
		op:      "update_profile",
		method:  http.MethodPut,
		path:    "/auth/profile",
		body:    update,
		auth:    authRedirect,
		failure: "Failed to update profile",
	})
	if err != nil {
		return env, err
	}
	if env.Data != nil {
		c.refreshUser(ctx, env.Data.User)
	}
	return env, nil
}

func (c *Client) refreshUser(ctx context.Context, user model.User) {
	if err := c.sessions.UpdateUser(ctx, user); err != nil {
		c.logger.WarnContext(ctx, "Failed to refresh cached user", "error", err)
	}
}
