package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the dashboard's keyboard shortcuts.
type KeyMap struct {
	PrevYear key.Binding
	NextYear key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		PrevYear: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("←/h", "previous year"),
		),
		NextYear: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("→/l", "next year"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevYear, k.NextYear, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevYear, k.NextYear},
		{k.Refresh, k.Help, k.Quit},
	}
}
