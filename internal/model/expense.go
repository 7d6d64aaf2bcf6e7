package model

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
)

// Expense is a parsed expense record owned by the signed-in user.
type Expense struct {
	Date       Time            `json:"date"`
	CreatedAt  Time            `json:"createdAt"`
	UpdatedAt  Time            `json:"updatedAt"`
	ParsedData json.RawMessage `json:"parsedData,omitempty"`
	ReceiptID  *string         `json:"receiptId,omitempty"`
	OCRText    *string         `json:"ocrText,omitempty"`
	ID         string          `json:"id"`
	Merchant   string          `json:"merchant"`
	Currency   string          `json:"currency"`
	Category   string          `json:"category"`
	Tags       []string        `json:"tags"`
	Amount     float64         `json:"amount"`
	IsVerified bool            `json:"isVerified"`
}

// UnmarshalJSON accepts both "id" and "_id" for the identifier.
func (e *Expense) UnmarshalJSON(data []byte) error {
	type alias Expense
	aux := struct {
		*alias
		MongoID string `json:"_id"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = aux.MongoID
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return nil
}

// DisplayCategory returns the category or "Uncategorized" when empty.
func (e Expense) DisplayCategory() string {
	if strings.TrimSpace(e.Category) == "" {
		return UncategorizedLabel
	}
	return e.Category
}

// UncategorizedLabel names expenses and aggregates with no category.
const UncategorizedLabel = "Uncategorized"

// ExpenseUpdate is a partial update; only non-nil fields are sent.
type ExpenseUpdate struct {
	Merchant   *string  `json:"merchant,omitempty"`
	Amount     *float64 `json:"amount,omitempty"`
	Currency   *string  `json:"currency,omitempty"`
	Date       *Time    `json:"date,omitempty"`
	Category   *string  `json:"category,omitempty"`
	IsVerified *bool    `json:"isVerified,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// ErrEmptyUpdate is returned when an update carries no fields.
var ErrEmptyUpdate = errors.New("no fields to update")

// Empty reports whether the update sets no field.
func (u ExpenseUpdate) Empty() bool {
	return u.Merchant == nil && u.Amount == nil && u.Currency == nil &&
		u.Date == nil && u.Category == nil && u.IsVerified == nil && u.Tags == nil
}

// Validate returns field errors for values the server would reject.
func (u ExpenseUpdate) Validate() []FieldError {
	var errs []FieldError
	if u.Amount != nil {
		a := *u.Amount
		if math.IsNaN(a) || math.IsInf(a, 0) || a <= 0 {
			errs = append(errs, FieldError{Field: "amount", Message: "Amount must be a positive number"})
		}
	}
	if u.Merchant != nil && strings.TrimSpace(*u.Merchant) == "" {
		errs = append(errs, FieldError{Field: "merchant", Message: "Merchant must not be empty"})
	}
	if u.Currency != nil && len(strings.TrimSpace(*u.Currency)) != 3 {
		errs = append(errs, FieldError{Field: "currency", Message: "Currency must be a 3-letter code"})
	}
	return errs
}

// FieldError is a validation message, optionally tied to an input field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// GroupFieldErrors groups messages by field; errors without a field are
// collected under "general".
func GroupFieldErrors(errs []FieldError) map[string][]string {
	grouped := make(map[string][]string, len(errs))
	for _, e := range errs {
		field := e.Field
		if field == "" {
			field = "general"
		}
		grouped[field] = append(grouped[field], e.Message)
	}
	return grouped
}
