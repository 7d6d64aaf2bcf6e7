package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/smart-expense-tracker/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

const dateLayout = "2006-01-02"

// FormatAmount renders an amount with thousands separators and its currency.
func FormatAmount(amount float64, currency string) string {
	s := humanize.FormatFloat("#,###.##", amount)
	if currency == "" {
		return s
	}
	return s + " " + strings.ToUpper(currency)
}

func formatDate(t model.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

// RenderExpenses renders expenses as a table.
func RenderExpenses(expenses []model.Expense) string {
	if len(expenses) == 0 {
		return SubtleStyle.Render("No expenses yet. Upload a receipt with: expense receipts upload <file>")
	}

	rows := make([][]string, 0, len(expenses))
	var total float64
	currencies := map[string]bool{}
	for _, e := range expenses {
		verified := ""
		if e.IsVerified {
			verified = SuccessIcon
		}
		rows = append(rows, []string{
			e.ID,
			formatDate(e.Date),
			e.Merchant,
			e.DisplayCategory(),
			FormatAmount(e.Amount, e.Currency),
			verified,
		})
		total += e.Amount
		currencies[strings.ToUpper(e.Currency)] = true
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers("ID", "Date", "Merchant", "Category", "Amount", "Verified").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return TableHeaderStyle.Padding(0, 1)
			}
			if col == 4 {
				return style.Align(lipgloss.Right)
			}
			return style
		})

	footer := fmt.Sprintf("%d expense(s)", len(expenses))
	if len(currencies) == 1 {
		for c := range currencies {
			footer += " · total " + FormatAmount(total, c)
		}
	}
	return t.String() + "\n" + SubtleStyle.Render(footer)
}

// RenderExpense renders one expense in a box.
func RenderExpense(e model.Expense) string {
	var b strings.Builder
	line := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render(fmt.Sprintf("%-10s", label+":")), value)
	}

	line("Merchant", e.Merchant)
	line("Amount", FormatAmount(e.Amount, e.Currency))
	line("Date", formatDate(e.Date))
	line("Category", e.DisplayCategory())
	if len(e.Tags) > 0 {
		line("Tags", strings.Join(e.Tags, ", "))
	}
	verified := "no"
	if e.IsVerified {
		verified = "yes"
	}
	line("Verified", verified)
	if e.ReceiptID != nil && *e.ReceiptID != "" {
		line("Receipt", *e.ReceiptID)
	}
	if !e.UpdatedAt.IsZero() {
		line("Updated", e.UpdatedAt.Format(time.RFC822))
	}
	if e.OCRText != nil && strings.TrimSpace(*e.OCRText) != "" {
		b.WriteString("\n")
		b.WriteString(SubtleStyle.Render(strings.TrimSpace(*e.OCRText)))
	}

	return RenderBox("Expense "+e.ID, strings.TrimRight(b.String(), "\n"))
}

// RenderReceipt summarizes an uploaded receipt.
func RenderReceipt(r model.Receipt) string {
	status := string(r.OCRStatus)
	switch r.OCRStatus {
	case model.OCRCompleted:
		status = SuccessStyle.Render(status)
	case model.OCRFailed:
		status = ErrorStyle.Render(status)
	default:
		status = WarningStyle.Render(status)
	}

	content := fmt.Sprintf("%s %s\n%s %s\n%s %s\n%s %s",
		BoldStyle.Render("File:"), r.FileName,
		BoldStyle.Render("Size:"), humanize.Bytes(uint64(max(r.FileSize, 0))),
		BoldStyle.Render("Type:"), r.MIMEType,
		BoldStyle.Render("OCR: "), status,
	)
	return RenderBox("Receipt "+r.ID, content)
}

// RenderProfile renders the signed-in user. expires may be zero.
func RenderProfile(user model.User, expires time.Time) string {
	confirmed := WarningStyle.Render("not confirmed")
	if user.IsEmailConfirmed {
		confirmed = SuccessStyle.Render("confirmed")
	}

	content := fmt.Sprintf("%s %s\n%s %s (%s)",
		BoldStyle.Render("Name: "), user.Name,
		BoldStyle.Render("Email:"), user.Email, confirmed,
	)
	if !expires.IsZero() {
		content += fmt.Sprintf("\n%s %s", BoldStyle.Render("Token:"), "expires "+humanize.Time(expires))
	}
	return RenderBox("Profile", content)
}

// RenderFieldErrors renders a failure banner followed by per-field
// messages. General messages come first, then fields alphabetically.
func RenderFieldErrors(message string, fields []model.FieldError) string {
	var b strings.Builder
	if message != "" {
		b.WriteString(FormatError(message))
		b.WriteString("\n")
	}

	grouped := model.GroupFieldErrors(fields)
	names := make([]string, 0, len(grouped))
	for name := range grouped {
		if name != "general" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, msg := range grouped["general"] {
		if msg != message {
			fmt.Fprintf(&b, "  %s\n", msg)
		}
	}
	for _, name := range names {
		for _, msg := range grouped[name] {
			fmt.Fprintf(&b, "  %s %s\n", FieldStyle.Render(name+":"), msg)
		}
	}
	return b.String()
}
