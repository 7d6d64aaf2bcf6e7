// Package dashboard turns the server's spending summary into series ready
// to render: colored category slices, labelled monthly totals and the
// headline cards. It does not re-aggregate anything.
package dashboard

import (
	"math"
	"strings"
	"time"

	"github.com/Veraticus/smart-expense-tracker/internal/model"
)

// Palette colors category slices in order, wrapping around.
var Palette = []string{
	"#3B82F6",
	"#10B981",
	"#F59E0B",
	"#8B5CF6",
	"#EF4444",
	"#6366F1",
	"#EC4899",
	"#14B8A6",
	"#F97316",
	"#22D3EE",
	"#F472B6",
	"#34D399",
}

// Display placeholders.
const (
	UnknownMonth  = "Unknown"
	NoTopCategory = "No data"
)

// Year selector defaults.
const (
	FirstSelectableYear = 2025
	SelectableYearCount = 16
)

// CategorySlice is one category of the breakdown chart.
type CategorySlice struct {
	Name         string
	Color        string
	Value        float64
	Percentage   float64
	ExpenseCount int
}

// MonthlyPoint is one bar of the monthly comparison chart.
type MonthlyPoint struct {
	Month        string
	Amount       float64
	ExpenseCount int
}

// TopCategory is the headline top-spending category.
type TopCategory struct {
	Name       string
	Amount     float64
	Percentage float64
}

// Summary holds the headline cards of the dashboard.
type Summary struct {
	TopCategory       *TopCategory
	Year              int
	TotalSpending     float64
	AverageMonthly    float64
	AllTimeTotal      float64
	CurrentMonthTotal float64
	ExpenseCount      int
	CategoryCount     int
	HasData           bool
}

// Categories maps the breakdown rows to chart slices. Colors follow the
// palette by position; a missing name becomes "Uncategorized" and missing
// numbers become 0.
func Categories(rows []model.CategoryTotal) []CategorySlice {
	slices := make([]CategorySlice, 0, len(rows))
	for i, row := range rows {
		slices = append(slices, CategorySlice{
			Name:         categoryName(row.Category),
			Color:        Palette[i%len(Palette)],
			Value:        row.TotalAmount.Float(),
			Percentage:   row.PercentageOfYear.Float(),
			ExpenseCount: row.ExpenseCount.Int(),
		})
	}
	return slices
}

func categoryName(name *string) string {
	if name == nil || strings.TrimSpace(*name) == "" {
		return model.UncategorizedLabel
	}
	return *name
}

// Months maps the monthly comparison rows to labelled points, keeping the
// server's order.
func Months(rows []model.MonthlyTotal) []MonthlyPoint {
	points := make([]MonthlyPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, MonthlyPoint{
			Month:        MonthLabel(row.Month.OrNaN()),
			Amount:       row.TotalAmount.Float(),
			ExpenseCount: row.ExpenseCount.Int(),
		})
	}
	return points
}

// MonthLabel returns the short English month name for 1..12 and "Unknown"
// for anything else. Fractions are truncated.
func MonthLabel(n float64) string {
	if math.IsNaN(n) || n < 1 || n > 12 {
		return UnknownMonth
	}
	return time.Month(int(n)).String()[:3]
}

// Summarize extracts the headline cards. A nil payload yields an empty
// summary with HasData false.
func Summarize(data *model.DashboardData) Summary {
	if data == nil {
		return Summary{}
	}

	s := Summary{
		HasData:           true,
		Year:              data.SelectedYear.Int(),
		TotalSpending:     data.YearlySummary.TotalAmount.Float(),
		ExpenseCount:      data.YearlySummary.ExpenseCount.Int(),
		AverageMonthly:    data.YearlySummary.AverageMonthlySpending.Float(),
		AllTimeTotal:      data.AllTimeSummary.TotalAmount.Float(),
		CurrentMonthTotal: data.AllTimeSummary.CurrentMonthTotal.Float(),
		CategoryCount:     len(data.CategoryBreakdown),
	}
	if data.AllTimeSummary.CategoryCount.Valid {
		s.CategoryCount = data.AllTimeSummary.CategoryCount.Int()
	}

	if top := data.TopCategory; top != nil {
		name := NoTopCategory
		if top.Name != nil && *top.Name != "" {
			name = *top.Name
		}
		s.TopCategory = &TopCategory{
			Name:       name,
			Amount:     top.TotalAmount.Float(),
			Percentage: top.PercentageOfYear.Float(),
		}
	}
	return s
}

// YearOptions returns n consecutive years starting at start.
func YearOptions(start, n int) []int {
	if n <= 0 {
		return []int{}
	}
	years := make([]int, n)
	for i := range years {
		years[i] = start + i
	}
	return years
}

// DefaultYearOptions returns the years offered by the year selector.
func DefaultYearOptions() []int {
	return YearOptions(FirstSelectableYear, SelectableYearCount)
}
