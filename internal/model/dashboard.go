package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a numeric aggregate field that may be missing, null, or sent as
// a numeric string.
type Number struct {
	Value float64
	Valid bool
}

// NewNumber returns a valid Number holding v.
func NewNumber(v float64) Number {
	return Number{Value: v, Valid: true}
}

// Float returns the value, or 0 when the field was missing or not numeric.
func (n Number) Float() float64 {
	if !n.Valid {
		return 0
	}
	return n.Value
}

// Int returns the value truncated to an int, or 0 when missing.
func (n Number) Int() int {
	return int(n.Float())
}

// OrNaN returns the value, or NaN when the field was missing or not numeric.
func (n Number) OrNaN() float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Value
}

// UnmarshalJSON implements json.Unmarshaler. Values that cannot be read as
// a number leave the Number invalid rather than failing the whole payload.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = NewNumber(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			*n = NewNumber(f)
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// DashboardData is the server-computed spending summary for one year.
type DashboardData struct {
	TopCategory       *TopCategory    `json:"topCategory"`
	CategoryBreakdown []CategoryTotal `json:"categoryBreakdown"`
	MonthlyComparison []MonthlyTotal  `json:"monthlyComparison"`
	YearlySummary     YearlySummary   `json:"yearlySummary"`
	AllTimeSummary    AllTimeSummary  `json:"allTimeSummary"`
	SelectedYear      Number          `json:"selectedYear"`
}

// YearlySummary aggregates the selected year.
type YearlySummary struct {
	TotalAmount            Number `json:"totalAmount"`
	ExpenseCount           Number `json:"expenseCount"`
	AverageMonthlySpending Number `json:"averageMonthlySpending"`
}

// TopCategory is the highest-spend category of the selected year.
type TopCategory struct {
	Name             *string `json:"name"`
	TotalAmount      Number  `json:"totalAmount"`
	PercentageOfYear Number  `json:"percentageOfYear"`
}

// CategoryTotal is one row of the category breakdown.
type CategoryTotal struct {
	Category         *string `json:"category"`
	TotalAmount      Number  `json:"totalAmount"`
	PercentageOfYear Number  `json:"percentageOfYear"`
	ExpenseCount     Number  `json:"expenseCount"`
}

// MonthlyTotal is one row of the month-by-month comparison.
type MonthlyTotal struct {
	Month        Number `json:"month"`
	TotalAmount  Number `json:"totalAmount"`
	ExpenseCount Number `json:"expenseCount"`
}

// AllTimeSummary aggregates every expense of the user.
type AllTimeSummary struct {
	TotalAmount       Number `json:"totalAmount"`
	CategoryCount     Number `json:"categoryCount"`
	CurrentMonthTotal Number `json:"currentMonthTotal"`
}
