package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Veraticus/smart-expense-tracker/internal/common"
	"github.com/Veraticus/smart-expense-tracker/internal/model"
)

// GetDashboardData fetches the spending summary for year; year 0 lets the
// server pick. Unlike the other authenticated calls, a rejected or missing
// token is reported inline and the session is left alone, so the dashboard
// can show the error in place.
func (c *Client) GetDashboardData(ctx context.Context, year int) (*Envelope[model.DashboardData], error) {
	var query url.Values
	if year != 0 {
		query = url.Values{"year": []string{strconv.Itoa(year)}}
	}

	env, err := send[model.DashboardData](ctx, c, request{
		op:          "get_dashboard",
		method:      http.MethodGet,
		path:        "/expenses/dashboard",
		query:       query,
		auth:        authInline,
		failure:     "Failed to load dashboard data",
		requireData: true,
	})

	// Some deployments answer an expired token with a plain failure instead
	// of a 401.
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message == invalidTokenServerReply {
		apiErr.Kind = common.ErrUnauthorized
		apiErr.Message = UnauthenticatedMessage
		env.Message = UnauthenticatedMessage
	}
	return env, err
}
