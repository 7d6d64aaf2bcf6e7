package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the interactive dashboard until the user quits. It reports
// whether the session needs a fresh login when the program ended.
func Run(cfg Config) (needsLogin bool, err error) {
	m := newModel(cfg)

	opts := []tea.ProgramOption{tea.WithContext(m.config.Context)}
	if !cfg.TestMode {
		opts = append(opts, tea.WithAltScreen())
	}

	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return false, fmt.Errorf("dashboard exited: %w", err)
	}
	if fm, ok := final.(Model); ok {
		return fm.NeedsLogin(), nil
	}
	return false, nil
}
