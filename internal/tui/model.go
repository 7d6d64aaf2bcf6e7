package tui

import (
	"github.com/Veraticus/smart-expense-tracker/internal/common"
	"github.com/Veraticus/smart-expense-tracker/internal/model"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model is the interactive dashboard: a year selector over the spending
// summary, with a spinner while loading and an inline error banner.
type Model struct {
	data      *model.DashboardData
	lastError error
	errorText string
	config    Config
	keymap    KeyMap
	help      help.Model
	spinner   spinner.Model
	width     int
	height    int
	yearIndex int
	seq       int
	loading   bool
	quitting  bool
}

// newModel creates a model with the given configuration.
func newModel(cfg Config) Model {
	cfg = cfg.withDefaults()

	s := spinner.New()
	s.Spinner = spinner.Dot

	index := 0
	for i, y := range cfg.Years {
		if y == cfg.Year {
			index = i
			break
		}
	}

	return Model{
		config:    cfg,
		keymap:    DefaultKeyMap(),
		help:      help.New(),
		spinner:   s,
		width:     cfg.Width,
		height:    cfg.Height,
		yearIndex: index,
		loading:   true,
	}
}

// Init starts the first fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchDashboard())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case dashboardLoadedMsg:
		return m.handleLoaded(msg), nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keymap.PrevYear):
		if m.yearIndex == 0 {
			return m, nil
		}
		m.yearIndex--
		return m.reload()

	case key.Matches(msg, m.keymap.NextYear):
		if m.yearIndex >= len(m.config.Years)-1 {
			return m, nil
		}
		m.yearIndex++
		return m.reload()

	case key.Matches(msg, m.keymap.Refresh):
		return m.reload()
	}
	return m, nil
}

// reload starts a fetch for the selected year. Earlier fetches still in
// flight are ignored when they complete.
func (m Model) reload() (tea.Model, tea.Cmd) {
	m.seq++
	m.loading = true
	m.errorText = ""
	m.lastError = nil
	return m, tea.Batch(m.spinner.Tick, m.fetchDashboard())
}

func (m Model) handleLoaded(msg dashboardLoadedMsg) Model {
	if msg.seq != m.seq {
		return m
	}

	m.loading = false
	if msg.err != nil {
		m.data = nil
		m.lastError = msg.err
		m.errorText = msg.message
		return m
	}

	m.data = msg.data
	m.lastError = nil
	m.errorText = ""
	return m
}

// year returns the selected year.
func (m Model) year() int {
	if len(m.config.Years) == 0 {
		return 0
	}
	return m.config.Years[m.yearIndex]
}

// NeedsLogin reports whether the last fetch failed for lack of a valid
// session.
func (m Model) NeedsLogin() bool {
	return common.IsAuthError(m.lastError)
}
