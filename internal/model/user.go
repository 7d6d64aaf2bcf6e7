package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

// User is the profile snapshot returned by the auth endpoints.
type User struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	IsEmailConfirmed bool   `json:"isEmailConfirmed"`
}

// UnmarshalJSON accepts both "id" and "_id" for the identifier.
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	aux := struct {
		*alias
		MongoID string `json:"_id"`
	}{alias: (*alias)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = aux.MongoID
	}
	return nil
}

// Session is the client-held proof of authentication.
type Session struct {
	AccessToken string
	User        User
}

// Valid reports whether the session carries a usable token.
func (s Session) Valid() bool {
	return strings.TrimSpace(s.AccessToken) != ""
}

// ExpiresAt decodes the exp claim of a JWT access token without verifying
// its signature. The zero time is returned for opaque or non-expiring tokens.
func (s Session) ExpiresAt() time.Time {
	if !s.Valid() {
		return time.Time{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(s.AccessToken, claims); err != nil {
		return time.Time{}
	}

	switch exp := claims["exp"].(type) {
	case float64:
		return time.Unix(int64(exp), 0)
	case int64:
		return time.Unix(exp, 0)
	default:
		return time.Time{}
	}
}

// Expired reports whether the token's exp claim is in the past relative to now.
func (s Session) Expired(now time.Time) bool {
	exp := s.ExpiresAt()
	return !exp.IsZero() && now.After(exp)
}
