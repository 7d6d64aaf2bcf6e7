package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/smart-expense-tracker/internal/dashboard"
	"github.com/charmbracelet/lipgloss"
)

var (
	selectorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(dashboard.Palette[0]))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errorBannerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#EF4444")).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#EF4444")).
				Padding(0, 1)
)

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderSelector())
	b.WriteString("\n\n")

	switch {
	case m.loading:
		fmt.Fprintf(&b, "%s Loading dashboard data...\n", m.spinner.View())
	case m.errorText != "":
		b.WriteString(errorBannerStyle.Render(m.errorText))
		b.WriteString("\n")
		if m.NeedsLogin() {
			b.WriteString(dimStyle.Render("Log in with: expense auth login"))
			b.WriteString("\n")
		}
	default:
		b.WriteString(dashboard.RenderData(m.data, m.year(), m.width))
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keymap))
	return b.String()
}

func (m Model) renderSelector() string {
	left, right := "◀", "▶"
	if m.yearIndex == 0 {
		left = dimStyle.Render(left)
	}
	if m.yearIndex >= len(m.config.Years)-1 {
		right = dimStyle.Render(right)
	}
	return fmt.Sprintf("%s By Year: %s %s", left, selectorStyle.Render(fmt.Sprint(m.year())), right)
}
