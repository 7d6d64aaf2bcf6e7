package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Veraticus/smart-expense-tracker/internal/common"
	"github.com/Veraticus/smart-expense-tracker/internal/model"
	"github.com/Veraticus/smart-expense-tracker/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authReply(token string) map[string]any {
	return ok(map[string]any{
		"user": map[string]any{
			"_id":              "u1",
			"name":             "Ada",
			"email":            "ada@example.com",
			"isEmailConfirmed": true,
		},
		"accessToken": token,
	})
}

func TestLogin_StoresSessionAndAuthenticatesLaterCalls(t *testing.T) {
	var gotLogin LoginRequest
	var gotAuth string
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Empty(t, r.Header.Get("Authorization"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotLogin))
			writeJSON(t, w, http.StatusOK, authReply("fresh-token"))
		case "/api/expenses":
			gotAuth = r.Header.Get("Authorization")
			writeJSON(t, w, http.StatusOK, ok([]any{}))
		default:
			http.NotFound(w, r)
		}
	}, false)
	ctx := context.Background()

	resp, err := env.client.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "fresh-token", resp.Data.AccessToken)
	assert.Equal(t, testUser, resp.Data.User)
	assert.Equal(t, LoginRequest{Email: "ada@example.com", Password: "secret123"}, gotLogin)

	assert.Equal(t, model.Session{AccessToken: "fresh-token", User: testUser}, env.store.Current())
	token, found, err := env.storage.Get(ctx, session.KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, []session.EventType{session.EventSignedIn}, env.events)

	_, err = env.client.GetExpenses(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh-token", gotAuth)
}

func TestRegister_StoresSession(t *testing.T) {
	var got map[string]string
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/register", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(t, w, http.StatusCreated, authReply("new-token"))
	}, false)

	resp, err := env.client.Register(context.Background(), RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "secret123", ConfirmPassword: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, "new-token", resp.Data.AccessToken)
	assert.Equal(t, map[string]string{
		"name":            "Ada",
		"email":           "ada@example.com",
		"password":        "secret123",
		"confirmPassword": "secret123",
	}, got)
	assert.True(t, env.store.Authenticated())
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        any
		wantKind    error
		wantMessage string
	}{
		{
			name:        "bad credentials use server message",
			status:      http.StatusUnauthorized,
			body:        map[string]any{"success": false, "message": "Invalid email or password"},
			wantKind:    common.ErrRequestFailed,
			wantMessage: "Invalid email or password",
		},
		{
			name:        "no message falls back to default",
			status:      http.StatusUnauthorized,
			body:        map[string]any{"success": false},
			wantKind:    common.ErrRequestFailed,
			wantMessage: "Login failed",
		},
		{
			name:        "success without token",
			status:      http.StatusOK,
			body:        ok(map[string]any{"user": map[string]any{"id": "u1"}}),
			wantKind:    common.ErrMalformedResponse,
			wantMessage: MalformedMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(t, w, tt.status, tt.body)
			}, false)

			resp, err := env.client.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "nope"})

			assert.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.False(t, env.store.Authenticated())
			assert.Empty(t, env.events)
			assert.Equal(t, 0, env.redirects, "login failures never redirect")
		})
	}
}

// failingStorage rejects every write.
type failingStorage struct {
	*session.MemoryStorage
}

func (failingStorage) Set(context.Context, string, string) error { return common.ErrStorageFailure }

func TestLogin_SessionNotSaved(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, authReply("fresh-token"))
	}, false)

	store, err := session.NewStore(context.Background(), failingStorage{session.NewMemoryStorage()})
	require.NoError(t, err)
	env.client.sessions = store

	resp, err := env.client.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "secret123"})

	assert.ErrorIs(t, err, common.ErrStorageFailure)
	assert.False(t, resp.Success)
	assert.Equal(t, SessionNotSavedMessage, resp.Message)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "fresh-token", resp.Data.AccessToken)
	assert.False(t, store.Authenticated())
}

func TestLogout(t *testing.T) {
	tests := []struct {
		name        string
		signedIn    bool
		handler     http.HandlerFunc
		wantHits    int32
		wantMessage string
		wantEvents  []session.EventType
	}{
		{
			name:     "server accepts",
			signedIn: true,
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
				writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "message": "Goodbye"})
			},
			wantHits:    1,
			wantMessage: "Goodbye",
			wantEvents:  []session.EventType{session.EventSignedOut},
		},
		{
			name:     "server error",
			signedIn: true,
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(t, w, http.StatusInternalServerError, map[string]any{"success": false, "message": "db down"})
			},
			wantHits:    1,
			wantMessage: "Logged out successfully",
			wantEvents:  []session.EventType{session.EventSignedOut},
		},
		{
			name:     "token already rejected",
			signedIn: true,
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(t, w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid token."})
			},
			wantHits:    1,
			wantMessage: "Logged out successfully",
			wantEvents:  []session.EventType{session.EventSignedOut},
		},
		{
			name:     "not signed in skips the server",
			signedIn: false,
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(t, w, http.StatusOK, ok(nil))
			},
			wantHits:    0,
			wantMessage: "Logged out successfully",
			wantEvents:  []session.EventType{session.EventSignedOut},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.handler, tt.signedIn)

			resp := env.client.Logout(context.Background())

			require.NotNil(t, resp)
			assert.True(t, resp.Success)
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.Equal(t, tt.wantHits, env.hits.Load())
			assert.False(t, env.store.Authenticated())
			assertNoStoredSession(t, env.storage)
			assert.Equal(t, tt.wantEvents, env.events)
			assert.Equal(t, 0, env.redirects)
		})
	}
}

func TestLogout_NetworkFailureStillClears(t *testing.T) {
	env := &testEnv{}
	env.init(t, "http://127.0.0.1:1/api", true)

	resp := env.client.Logout(context.Background())

	assert.True(t, resp.Success)
	assertNoStoredSession(t, env.storage)
	assert.Equal(t, []session.EventType{session.EventSignedOut}, env.events)
}

func TestPasswordReset(t *testing.T) {
	var paths []string
	var bodies []map[string]string
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "message": "Done"})
	}, false)
	ctx := context.Background()

	resp, err := env.client.ForgotPassword(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Done", resp.Message)

	_, err = env.client.ResetPassword(ctx, ResetPasswordRequest{Code: "123456", NewPassword: "n3w-pass", ConfirmPassword: "n3w-pass"})
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/auth/forget-password", "/api/auth/reset-password"}, paths)
	assert.Equal(t, []map[string]string{
		{"email": "ada@example.com"},
		{"code": "123456", "newPassword": "n3w-pass", "confirmPassword": "n3w-pass"},
	}, bodies)
	assert.Empty(t, env.events)
}
