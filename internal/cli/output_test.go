package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/smart-expense-tracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExpense(id, merchant string, amount float64) model.Expense {
	date, _ := model.ParseTime("2025-03-14")
	return model.Expense{
		ID:       id,
		Merchant: merchant,
		Amount:   amount,
		Currency: "usd",
		Date:     date,
		Tags:     []string{},
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1,234.50 USD", FormatAmount(1234.5, "usd"))
	assert.Equal(t, "3.00", FormatAmount(3, ""))
}

func TestRenderExpenses(t *testing.T) {
	verified := testExpense("e1", "Corner Cafe", 4.5)
	verified.Category = "Food"
	verified.IsVerified = true

	out := RenderExpenses([]model.Expense{verified, testExpense("e2", "Hardware Store", 1200)})

	for _, want := range []string{"ID", "Merchant", "e1", "Corner Cafe", "Food", "Uncategorized", "2025-03-14", "1,200.00 USD", "2 expense(s)", "total 1,204.50 USD"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderExpenses_Empty(t *testing.T) {
	assert.Contains(t, RenderExpenses(nil), "No expenses yet")
}

func TestRenderExpenses_MixedCurrenciesHaveNoTotal(t *testing.T) {
	eur := testExpense("e2", "Bakery", 3)
	eur.Currency = "EUR"

	out := RenderExpenses([]model.Expense{testExpense("e1", "Cafe", 2), eur})
	assert.Contains(t, out, "2 expense(s)")
	assert.NotContains(t, out, "total")
}

func TestRenderExpense(t *testing.T) {
	e := testExpense("e1", "Corner Cafe", 4.5)
	e.Tags = []string{"coffee", "work"}
	ocr := "CORNER CAFE\nLATTE 4.50"
	e.OCRText = &ocr

	out := RenderExpense(e)

	for _, want := range []string{"Expense e1", "Corner Cafe", "4.50 USD", "coffee, work", "Uncategorized", "LATTE 4.50"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderReceipt(t *testing.T) {
	out := RenderReceipt(model.Receipt{ID: "r1", FileName: "lunch.png", FileSize: 2048, MIMEType: "image/png", OCRStatus: model.OCRPending})

	for _, want := range []string{"Receipt r1", "lunch.png", "2.0 kB", "image/png", "pending"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderProfile(t *testing.T) {
	user := model.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}

	out := RenderProfile(user, time.Time{})
	assert.Contains(t, out, "ada@example.com")
	assert.Contains(t, out, "not confirmed")
	assert.NotContains(t, out, "expires")

	user.IsEmailConfirmed = true
	out = RenderProfile(user, time.Now().Add(2*time.Hour))
	assert.NotContains(t, out, "not confirmed")
	assert.Contains(t, out, "expires")
}

func TestRenderFieldErrors(t *testing.T) {
	out := RenderFieldErrors("Validation failed", []model.FieldError{
		{Field: "password", Message: "Password is too short"},
		{Field: "email", Message: "Email is taken"},
		{Message: "Validation failed"},
		{Message: "Try again"},
	})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Validation failed")
	assert.Contains(t, lines[1], "Try again")
	assert.Contains(t, lines[2], "email:")
	assert.Contains(t, lines[3], "password:")
}
