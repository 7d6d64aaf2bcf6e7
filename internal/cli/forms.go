package cli

import (
	"strings"

	"github.com/Veraticus/smart-expense-tracker/internal/model"
	"github.com/badoux/checkmail"
)

// Form collects client-side field errors before a request is sent. The
// server stays authoritative; these checks only save a round trip.
type Form struct {
	errs []model.FieldError
}

func (f *Form) add(field, message string) {
	f.errs = append(f.errs, model.FieldError{Field: field, Message: message})
}

// Required flags a blank value.
func (f *Form) Required(field, label, value string) *Form {
	if strings.TrimSpace(value) == "" {
		f.add(field, label+" is required")
	}
	return f
}

// Email flags a malformed address. Blank values are left to Required.
func (f *Form) Email(field, value string) *Form {
	if value == "" {
		return f
	}
	if err := checkmail.ValidateFormat(value); err != nil {
		f.add(field, "Please enter a valid email address")
	}
	return f
}

// Match flags a confirmation that differs from the original.
func (f *Form) Match(field, value, confirmation string) *Form {
	if value != confirmation {
		f.add(field, "Passwords do not match")
	}
	return f
}

// Errors returns the collected field errors.
func (f *Form) Errors() []model.FieldError {
	return f.errs
}

// Valid reports whether no check failed.
func (f *Form) Valid() bool {
	return len(f.errs) == 0
}
