// Package api is the client for the Smart Expense Tracker REST API. Every
// operation returns a non-nil Envelope; the accompanying error is nil exactly
// when the envelope reports success, and wraps one of the sentinels in
// package common otherwise.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/smart-expense-tracker/internal/common"
	"github.com/Veraticus/smart-expense-tracker/internal/model"
	"github.com/Veraticus/smart-expense-tracker/internal/session"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is used when Config.BaseURL is empty.
const DefaultBaseURL = "http://localhost:5000/api"

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 16 << 20

// Redirector sends the user back to the login entry point after the server
// rejected the session.
type Redirector interface {
	RedirectToLogin(ctx context.Context)
}

// RedirectFunc adapts a function to the Redirector interface.
type RedirectFunc func(ctx context.Context)

// RedirectToLogin calls f(ctx).
func (f RedirectFunc) RedirectToLogin(ctx context.Context) { f(ctx) }

type nopRedirector struct{}

func (nopRedirector) RedirectToLogin(context.Context) {}

// Config configures a Client.
type Config struct {
	// HTTPClient is the base client. Its Timeout and Transport are reused
	// for authenticated requests. Defaults to a zero http.Client.
	HTTPClient *http.Client
	// Sessions supplies the bearer token and receives session changes.
	Sessions   *session.Store
	Redirector Redirector
	Logger     *slog.Logger
	BaseURL    string
}

// Client talks to the REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	authClient *http.Client
	sessions   *session.Store
	redirector Redirector
	logger     *slog.Logger
}

// NewClient creates a client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("%w: session store is required", common.ErrMissingConfig)
	}

	rawURL := strings.TrimRight(cfg.BaseURL, "/")
	if rawURL == "" {
		rawURL = DefaultBaseURL
	}
	baseURL, err := url.Parse(rawURL)
	if err != nil || baseURL.Host == "" || (baseURL.Scheme != "http" && baseURL.Scheme != "https") {
		return nil, fmt.Errorf("%w: invalid base URL %q", common.ErrInvalidConfig, cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	// Authenticated requests carry the bearer token of the current session
	authClient := *httpClient
	authClient.Transport = &oauth2.Transport{
		Source: cfg.Sessions,
		Base:   httpClient.Transport,
	}

	redirector := cfg.Redirector
	if redirector == nil {
		redirector = nopRedirector{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		authClient: &authClient,
		sessions:   cfg.Sessions,
		redirector: redirector,
		logger:     logger.With("component", "api"),
	}, nil
}

// Sessions returns the session store the client reads its token from.
func (c *Client) Sessions() *session.Store {
	return c.sessions
}

// authMode selects how a request handles the bearer token and 401 replies.
type authMode int

const (
	// authNone sends no token; a 401 is an ordinary failure.
	authNone authMode = iota
	// authRedirect sends the token; a 401 tears the session down and
	// redirects to login.
	authRedirect
	// authInline sends the token; a 401 is reported without touching the
	// session.
	authInline
	// authBestEffort sends the token when present; a 401 is an ordinary
	// failure.
	authBestEffort
)

// request describes one API call.
type request struct {
	body        any
	rawBody     io.Reader
	query       url.Values
	op          string
	method      string
	path        string
	contentType string
	failure     string
	auth        authMode
	requireData bool
}

// send performs r and normalizes the outcome into an envelope.
func send[T any](ctx context.Context, c *Client, r request) (*Envelope[T], error) {
	if r.failure == "" {
		r.failure = defaultFailureMessage
	}

	if (r.auth == authRedirect || r.auth == authInline) && !c.sessions.Authenticated() {
		return unauthorized[T](ctx, c, r, 0, common.ErrNoSession)
	}

	req, err := c.newRequest(ctx, r)
	if err != nil {
		return failure[T](r, common.ErrRequestFailed, 0, r.failure, nil, err)
	}

	client := c.httpClient
	if r.auth != authNone && c.sessions.Authenticated() {
		client = c.authClient
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		// The session was cleared while the request was being prepared
		if errors.Is(err, common.ErrNoSession) && (r.auth == authRedirect || r.auth == authInline) {
			return unauthorized[T](ctx, c, r, 0, common.ErrNoSession)
		}
		c.logger.DebugContext(ctx, "API request failed",
			"op", r.op, "method", r.method, "path", r.path, "error", err)
		return failure[T](r, common.ErrNetwork, 0, NetworkErrorMessage, nil, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return failure[T](r, common.ErrNetwork, resp.StatusCode, NetworkErrorMessage, nil, err)
	}

	c.logger.DebugContext(ctx, "API request",
		"op", r.op,
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized && (r.auth == authRedirect || r.auth == authInline) {
		return unauthorized[T](ctx, c, r, resp.StatusCode, nil)
	}

	return decodeResponse[T](r, resp.StatusCode, body)
}

// newRequest builds the HTTP request for r.
func (c *Client) newRequest(ctx context.Context, r request) (*http.Request, error) {
	u := c.baseURL.JoinPath(r.path)
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader
	contentType := r.contentType
	switch {
	case r.rawBody != nil:
		body = r.rawBody
	case r.body != nil:
		encoded, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// decodeResponse validates the body and maps it onto an envelope.
func decodeResponse[T any](r request, status int, body []byte) (*Envelope[T], error) {
	raw, err := parseEnvelope(body)
	if err != nil {
		return failure[T](r, common.ErrMalformedResponse, status, MalformedMessage, nil, err)
	}

	message := ""
	if raw.Message != nil {
		message = *raw.Message
	}

	ok := status >= 200 && status < 300
	if !ok || !*raw.Success {
		if message == "" {
			message = r.failure
		}
		return failure[T](r, common.ErrRequestFailed, status, message, raw.Errors, nil)
	}

	data, err := decodeData[T](raw.Data, r.requireData)
	if err != nil {
		return failure[T](r, common.ErrMalformedResponse, status, MalformedMessage, nil, err)
	}

	return &Envelope[T]{
		Success: true,
		Message: message,
		Data:    data,
		Errors:  raw.Errors,
	}, nil
}

// unauthorized handles a missing or rejected token according to r.auth.
func unauthorized[T any](ctx context.Context, c *Client, r request, status int, cause error) (*Envelope[T], error) {
	if r.auth == authInline {
		return failure[T](r, common.ErrUnauthorized, status, UnauthenticatedMessage, nil, cause)
	}

	c.teardown(ctx, r.op)
	return failure[T](r, common.ErrUnauthorized, status, SessionExpiredMessage, nil, cause)
}

// teardown clears the session and redirects to login.
func (c *Client) teardown(ctx context.Context, op string) {
	c.logger.InfoContext(ctx, "Session rejected, signing out", "op", op)
	if err := c.sessions.Clear(ctx, session.EventExpired); err != nil {
		c.logger.WarnContext(ctx, "Failed to clear stored session", "error", err)
	}
	c.redirector.RedirectToLogin(ctx)
}

// failure builds a failed envelope and its matching error.
func failure[T any](r request, kind error, status int, message string, fields []model.FieldError, cause error) (*Envelope[T], error) {
	env := &Envelope[T]{
		Success: false,
		Message: message,
		Errors:  fields,
	}
	if env.Errors == nil {
		env.Errors = []model.FieldError{}
	}
	return env, &Error{
		Kind:    kind,
		Err:     cause,
		Op:      r.op,
		Message: message,
		Fields:  fields,
		Status:  status,
	}
}

// localFailure reports a failure detected before any request was sent.
func localFailure[T any](op string, kind error, message string, fields []model.FieldError) (*Envelope[T], error) {
	return failure[T](request{op: op}, kind, 0, message, fields, nil)
}
