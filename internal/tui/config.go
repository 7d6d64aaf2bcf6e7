package tui

import (
	"context"
	"slices"

	"github.com/Veraticus/smart-expense-tracker/internal/dashboard"
	"github.com/Veraticus/smart-expense-tracker/internal/service"
	"github.com/Veraticus/smart-expense-tracker/internal/session"
)

// Config holds the dashboard program's dependencies and initial state.
type Config struct {
	Context  context.Context //nolint:containedctx // bubbletea commands run outside the caller's stack
	Service  service.DashboardService
	// Sessions, when set, is cleared if the server rejects the token.
	Sessions *session.Store
	Years    []int
	Year     int
	Width    int
	Height   int
	TestMode bool
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.Context == nil {
		c.Context = context.Background()
	}
	if len(c.Years) == 0 {
		c.Years = dashboard.DefaultYearOptions()
	}
	if c.Year == 0 {
		c.Year = c.Years[0]
	}
	if !slices.Contains(c.Years, c.Year) {
		c.Years = append(slices.Clone(c.Years), c.Year)
		slices.Sort(c.Years)
	}
	if c.Width == 0 {
		c.Width = 100
	}
	return c
}
