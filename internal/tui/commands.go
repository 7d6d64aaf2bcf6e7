package tui

import (
	"errors"
	"log/slog"

	"github.com/Veraticus/smart-expense-tracker/internal/api"
	"github.com/Veraticus/smart-expense-tracker/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

const fallbackErrorMessage = "An unexpected error occurred. Please try again."

// fetchDashboard loads the selected year in the background.
func (m Model) fetchDashboard() tea.Cmd {
	svc, sessions, ctx, seq, year := m.config.Service, m.config.Sessions, m.config.Context, m.seq, m.year()
	if svc == nil {
		return nil
	}

	return func() tea.Msg {
		env, err := svc.GetDashboardData(ctx, year)
		// The dead token is dropped; the banner stays in place of a redirect
		if api.TokenRejected(err) && sessions != nil {
			if cerr := sessions.Clear(ctx, session.EventExpired); cerr != nil {
				slog.Warn("Failed to clear rejected session", "error", cerr)
			}
		}
		msg := dashboardLoadedMsg{seq: seq, year: year, err: err}
		if env != nil {
			msg.data = env.Data
			msg.message = env.Message
		}
		if err != nil && msg.message == "" {
			msg.message = failureMessage(err)
		}
		return msg
	}
}

func failureMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallbackErrorMessage
}
