package tui

import "github.com/Veraticus/smart-expense-tracker/internal/model"

// dashboardLoadedMsg carries the outcome of one fetch. seq identifies the
// request so answers for a year that is no longer selected can be dropped.
type dashboardLoadedMsg struct {
	err     error
	data    *model.DashboardData
	message string
	seq     int
	year    int
}
