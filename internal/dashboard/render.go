package dashboard

import (
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/smart-expense-tracker/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const (
	cardWidth   = 34
	labelWidth  = 16
	minBarWidth = 10
	barGlyph    = "█"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(Palette[0])).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 1).
			Width(cardWidth)

	cardTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	figureStyle = lipgloss.NewStyle().
			Bold(true)

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// FormatMoney renders an amount as dollars with thousands separators.
func FormatMoney(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// Render draws the dashboard as styled terminal text no wider than width.
func Render(summary Summary, slices []CategorySlice, points []MonthlyPoint, width int) string {
	var b strings.Builder

	title := "Dashboard"
	if summary.Year != 0 {
		title = fmt.Sprintf("Dashboard (%d)", summary.Year)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	if !summary.HasData {
		b.WriteString(subtleStyle.Render("No dashboard data available for the selected year."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(renderCards(summary, width))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Spending by Category"))
	b.WriteString("\n")
	b.WriteString(renderCategories(slices, width))

	b.WriteString(sectionStyle.Render("Monthly Comparison"))
	b.WriteString("\n")
	b.WriteString(renderMonths(points, width))

	return b.String()
}

// RenderData shapes data and renders it. year titles the dashboard when the
// server did not echo the selected year.
func RenderData(data *model.DashboardData, year, width int) string {
	summary := Summarize(data)
	if summary.Year == 0 {
		summary.Year = year
	}
	var (
		slices []CategorySlice
		points []MonthlyPoint
	)
	if data != nil {
		slices = Categories(data.CategoryBreakdown)
		points = Months(data.MonthlyComparison)
	}
	return Render(summary, slices, points, width)
}

func renderCards(s Summary, width int) string {
	top := NoTopCategory
	topDetails := []string{FormatMoney(0)}
	if s.TopCategory != nil {
		top = s.TopCategory.Name
		topDetails = []string{
			FormatMoney(s.TopCategory.Amount),
			fmt.Sprintf("%.1f%% of yearly spending", s.TopCategory.Percentage),
		}
	}

	cards := []string{
		card("Total Spending", FormatMoney(s.TotalSpending),
			fmt.Sprintf("%d expense(s) recorded this year", s.ExpenseCount)),
		card(fmt.Sprintf("Top Spending Category (%d)", s.Year), top, topDetails...),
		card("Average Monthly", FormatMoney(s.AverageMonthly), "across the selected year"),
		card("All Time", FormatMoney(s.AllTimeTotal),
			fmt.Sprintf("%d categories", s.CategoryCount),
			FormatMoney(s.CurrentMonthTotal)+" this month"),
	}

	perRow := width / (cardWidth + 2)
	if perRow < 1 {
		perRow = 1
	}

	rows := make([]string, 0, len(cards)/perRow+1)
	for i := 0; i < len(cards); i += perRow {
		end := min(i+perRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func card(title, figure string, details ...string) string {
	lines := []string{cardTitleStyle.Render(title), figureStyle.Render(figure)}
	for _, d := range details {
		lines = append(lines, subtleStyle.Render(d))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderCategories(slices []CategorySlice, width int) string {
	if len(slices) == 0 {
		return subtleStyle.Render("No category data available.") + "\n"
	}

	maxValue := 0.0
	for _, s := range slices {
		maxValue = math.Max(maxValue, s.Value)
	}

	barWidth := barSpace(width)
	var b strings.Builder
	for _, s := range slices {
		color := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color))
		fmt.Fprintf(&b, "%s %s %s %s\n",
			color.Render("■"),
			padRight(s.Name, labelWidth),
			color.Render(bar(s.Value, maxValue, barWidth)),
			subtleStyle.Render(fmt.Sprintf("%s  %.1f%% · %d expense(s)", FormatMoney(s.Value), s.Percentage, s.ExpenseCount)),
		)
	}
	return b.String()
}

func renderMonths(points []MonthlyPoint, width int) string {
	if len(points) == 0 {
		return subtleStyle.Render("No monthly data available.") + "\n"
	}

	maxValue := 0.0
	for _, p := range points {
		maxValue = math.Max(maxValue, p.Amount)
	}

	barWidth := barSpace(width)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(Palette[0]))
	var b strings.Builder
	for _, p := range points {
		fmt.Fprintf(&b, "  %s %s %s\n",
			padRight(p.Month, 8),
			style.Render(bar(p.Amount, maxValue, barWidth)),
			subtleStyle.Render(fmt.Sprintf("%s  %d expense(s)", FormatMoney(p.Amount), p.ExpenseCount)),
		)
	}
	return b.String()
}

// barSpace is what is left of width after the label and the figures.
func barSpace(width int) int {
	return max(width-labelWidth-40, minBarWidth)
}

// bar scales value against maxValue to at most width glyphs. Non-zero values
// always get at least one glyph.
func bar(value, maxValue float64, width int) string {
	if maxValue <= 0 || value <= 0 {
		return strings.Repeat(" ", width)
	}
	n := int(math.Round(value / maxValue * float64(width)))
	n = min(max(n, 1), width)
	return strings.Repeat(barGlyph, n) + strings.Repeat(" ", width-n)
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
