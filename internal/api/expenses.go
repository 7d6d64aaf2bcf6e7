package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Veraticus/smart-expense-tracker/internal/common"
	"github.com/Veraticus/smart-expense-tracker/internal/model"
)

// ExpenseList is the user's expenses, newest first as sent by the server.
type ExpenseList struct {
	Expenses []model.Expense `json:"expenses"`
	Count    int             `json:"count"`
}

// UnmarshalJSON accepts {"expenses": [...], "count": n} or a bare array.
func (l *ExpenseList) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &l.Expenses); err != nil {
			return err
		}
		l.Count = len(l.Expenses)
		return nil
	}

	var aux struct {
		Expenses []model.Expense `json:"expenses"`
		Count    *int            `json:"count"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	l.Expenses = aux.Expenses
	if l.Expenses == nil {
		l.Expenses = []model.Expense{}
	}
	l.Count = len(l.Expenses)
	if aux.Count != nil {
		l.Count = *aux.Count
	}
	return nil
}

// ExpenseEnvelope wraps a single expense.
type ExpenseEnvelope struct {
	Expense model.Expense `json:"expense"`
}

// UnmarshalJSON accepts {"expense": {...}} or a bare expense object.
func (e *ExpenseEnvelope) UnmarshalJSON(data []byte) error {
	return unwrapMember(data, "expense", &e.Expense)
}

// Validate implements validator.
func (e *ExpenseEnvelope) Validate() error {
	if e.Expense.ID == "" {
		return errors.New("expense id is missing")
	}
	return nil
}

// ExpenseIDRequiredMessage is reported when an operation is given no id.
const ExpenseIDRequiredMessage = "expense id is required"

// expensePath validates id and returns the escaped resource path.
func expensePath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || id == "." || id == ".." {
		return "", fmt.Errorf("invalid expense id %q", id)
	}
	return "/expenses/" + url.PathEscape(id), nil
}

// GetExpenses lists the user's expenses.
func (c *Client) GetExpenses(ctx context.Context) (*Envelope[ExpenseList], error) {
	env, err := send[ExpenseList](ctx, c, request{
		op:      "get_expenses",
		method:  http.MethodGet,
		path:    "/expenses",
		auth:    authRedirect,
		failure: "Failed to load expenses",
	})
	if err == nil && env.Data == nil {
		env.Data = &ExpenseList{Expenses: []model.Expense{}}
	}
	return env, err
}

// GetExpenseByID fetches one expense.
func (c *Client) GetExpenseByID(ctx context.Context, id string) (*Envelope[ExpenseEnvelope], error) {
	path, err := expensePath(id)
	if err != nil {
		return localFailure[ExpenseEnvelope]("get_expense", common.ErrRequestFailed, ExpenseIDRequiredMessage, nil)
	}
	return send[ExpenseEnvelope](ctx, c, request{
		op:          "get_expense",
		method:      http.MethodGet,
		path:        path,
		auth:        authRedirect,
		failure:     "Failed to load expense",
		requireData: true,
	})
}

// UpdateExpense applies a partial update. Updates with no fields or with
// values the server would reject fail locally without a request.
func (c *Client) UpdateExpense(ctx context.Context, id string, update model.ExpenseUpdate) (*Envelope[ExpenseEnvelope], error) {
	const op = "update_expense"

	path, err := expensePath(id)
	if err != nil {
		return localFailure[ExpenseEnvelope](op, common.ErrRequestFailed, ExpenseIDRequiredMessage, nil)
	}
	if update.Empty() {
		return localFailure[ExpenseEnvelope](op, common.ErrRequestFailed, model.ErrEmptyUpdate.Error(), nil)
	}
	if fields := update.Validate(); len(fields) > 0 {
		return localFailure[ExpenseEnvelope](op, common.ErrRequestFailed, "Please correct the highlighted fields", fields)
	}

	return send[ExpenseEnvelope](ctx, c, request{
		op:      op,
		method:  http.MethodPut,
		path:    path,
		body:    update,
		auth:    authRedirect,
		failure: "Failed to update expense",
	})
}

// DeleteExpense removes one expense.
func (c *Client) DeleteExpense(ctx context.Context, id string) (*Envelope[struct{}], error) {
	path, err := expensePath(id)
	if err != nil {
		return localFailure[struct{}]("delete_expense", common.ErrRequestFailed, ExpenseIDRequiredMessage, nil)
	}
	return send[struct{}](ctx, c, request{
		op:      "delete_expense",
		method:  http.MethodDelete,
		path:    path,
		auth:    authRedirect,
		failure: "Failed to delete expense",
	})
}
