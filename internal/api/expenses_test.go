package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/Veraticus/smart-expense-tracker/internal/common"
	"github.com/Veraticus/smart-expense-tracker/internal/model"
	"github.com/Veraticus/smart-expense-tracker/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExpenses is a tiny in-memory expenses endpoint.
type fakeExpenses struct {
	items map[string]map[string]any
	mu    sync.Mutex
}

func (f *fakeExpenses) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := strings.TrimPrefix(r.URL.Path, "/api/expenses/")
	item, found := f.items[id]
	if !found {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"Expense not found"}`))
		return
	}

	switch r.Method {
	case http.MethodPut:
		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for k, v := range patch {
			item[k] = v
		}
	case http.MethodDelete:
		delete(f.items, id)
		item = nil
	}

	w.Header().Set("Content-Type", "application/json")
	data := map[string]any{}
	if item != nil {
		data["expense"] = item
	}
	_ = json.NewEncoder(w).Encode(ok(data))
}

func TestUpdateExpenseThenGet(t *testing.T) {
	fake := &fakeExpenses{items: map[string]map[string]any{"e1": expenseJSON("e1", 12)}}
	env := newTestEnv(t, fake.ServeHTTP, true)
	ctx := context.Background()

	amount := 42.5
	updated, err := env.client.UpdateExpense(ctx, "e1", model.ExpenseUpdate{Amount: &amount})
	require.NoError(t, err)
	assert.InDelta(t, 42.5, updated.Data.Expense.Amount, 1e-9)

	got, err := env.client.GetExpenseByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "e1", got.Data.Expense.ID)
	assert.InDelta(t, 42.5, got.Data.Expense.Amount, 1e-9)
	assert.Equal(t, "Corner Cafe", got.Data.Expense.Merchant, "untouched fields survive")
}

func TestUpdateExpense_SendsOnlySetFields(t *testing.T) {
	var got map[string]any
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(t, w, http.StatusOK, ok(map[string]any{"expense": expenseJSON("e1", 9)}))
	}, true)

	category := "Travel"
	verified := true
	_, err := env.client.UpdateExpense(context.Background(), "e1", model.ExpenseUpdate{
		Category:   &category,
		IsVerified: &verified,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"category": "Travel", "isVerified": true}, got)
}

func TestUpdateExpense_LocalValidation(t *testing.T) {
	negative := -3.0
	blank := "  "

	tests := []struct {
		name        string
		id          string
		update      model.ExpenseUpdate
		wantMessage string
		wantFields  map[string][]string
	}{
		{
			name:        "empty id",
			id:          "",
			update:      model.ExpenseUpdate{Merchant: &blank},
			wantMessage: ExpenseIDRequiredMessage,
			wantFields:  map[string][]string{},
		},
		{
			name:        "dot segment id",
			id:          "..",
			update:      model.ExpenseUpdate{Merchant: &blank},
			wantMessage: ExpenseIDRequiredMessage,
			wantFields:  map[string][]string{},
		},
		{
			name:        "no fields",
			id:          "e1",
			wantMessage: model.ErrEmptyUpdate.Error(),
			wantFields:  map[string][]string{},
		},
		{
			name:        "invalid values",
			id:          "e1",
			update:      model.ExpenseUpdate{Amount: &negative, Merchant: &blank},
			wantMessage: "Please correct the highlighted fields",
			wantFields: map[string][]string{
				"amount":   {"Amount must be a positive number"},
				"merchant": {"Merchant must not be empty"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(t, w, http.StatusOK, ok(nil))
			}, true)

			resp, err := env.client.UpdateExpense(context.Background(), tt.id, tt.update)

			assert.ErrorIs(t, err, common.ErrRequestFailed)
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.Equal(t, tt.wantFields, resp.FieldErrors())
			assert.Equal(t, int32(0), env.hits.Load())
		})
	}
}

func TestGetExpenses_Shapes(t *testing.T) {
	tests := []struct {
		name      string
		data      any
		wantIDs   []string
		wantCount int
	}{
		{
			name:      "wrapped with count",
			data:      map[string]any{"expenses": []any{expenseJSON("e1", 1), expenseJSON("e2", 2)}, "count": 7},
			wantIDs:   []string{"e1", "e2"},
			wantCount: 7,
		},
		{
			name:      "wrapped without count",
			data:      map[string]any{"expenses": []any{expenseJSON("e1", 1)}},
			wantIDs:   []string{"e1"},
			wantCount: 1,
		},
		{
			name:      "bare array",
			data:      []any{expenseJSON("e3", 3)},
			wantIDs:   []string{"e3"},
			wantCount: 1,
		},
		{
			name:      "no data",
			data:      nil,
			wantIDs:   []string{},
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(t, w, http.StatusOK, ok(tt.data))
			}, true)

			resp, err := env.client.GetExpenses(context.Background())
			require.NoError(t, err)
			require.NotNil(t, resp.Data)

			ids := []string{}
			for _, e := range resp.Data.Expenses {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantCount, resp.Data.Count)
		})
	}
}

func TestGetExpenseByID_EscapesID(t *testing.T) {
	var gotPath string
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		writeJSON(t, w, http.StatusOK, ok(expenseJSON("a/b c", 1)))
	}, true)

	resp, err := env.client.GetExpenseByID(context.Background(), "a/b c")
	require.NoError(t, err)

	assert.Equal(t, "/api/expenses/a%2Fb%20c", gotPath)
	assert.Equal(t, "a/b c", resp.Data.Expense.ID, "unwrapped expense is accepted too")
}

func TestGetExpenseByID_NotFound(t *testing.T) {
	fake := &fakeExpenses{items: map[string]map[string]any{}}
	env := newTestEnv(t, fake.ServeHTTP, true)

	resp, err := env.client.GetExpenseByID(context.Background(), "missing")

	assert.ErrorIs(t, err, common.ErrRequestFailed)
	assert.Equal(t, "Expense not found", resp.Message)
	assert.True(t, env.store.Authenticated())
	assert.Equal(t, 0, env.redirects)
}

func TestDeleteExpense(t *testing.T) {
	fake := &fakeExpenses{items: map[string]map[string]any{"e1": expenseJSON("e1", 5)}}
	env := newTestEnv(t, fake.ServeHTTP, true)
	ctx := context.Background()

	resp, err := env.client.DeleteExpense(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Empty(t, fake.items)

	_, err = env.client.DeleteExpense(ctx, "e1")
	assert.ErrorIs(t, err, common.ErrRequestFailed)

	_, err = env.client.DeleteExpense(ctx, " ")
	assert.ErrorIs(t, err, common.ErrRequestFailed)
	assert.Equal(t, int32(2), env.hits.Load())
}

func TestProfile(t *testing.T) {
	var updateBody map[string]any
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/profile", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			writeJSON(t, w, http.StatusOK, ok(map[string]any{"user": map[string]any{
				"id": "u1", "name": "Ada Lovelace", "email": "ada@example.com", "isEmailConfirmed": true,
			}}))
		case http.MethodPut:
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&updateBody))
			writeJSON(t, w, http.StatusOK, ok(map[string]any{
				"id": "u1", "name": "Countess", "email": "ada@example.com", "isEmailConfirmed": true,
			}))
		}
	}, true)
	ctx := context.Background()

	resp, err := env.client.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", resp.Data.User.Name)
	assert.Equal(t, "Ada Lovelace", env.store.Current().User.Name)
	assert.Equal(t, "token-123", env.store.Current().AccessToken)

	resp, err = env.client.UpdateProfile(ctx, ProfileUpdate{Name: "Countess"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Countess"}, updateBody)
	assert.Equal(t, "Countess", resp.Data.User.Name)
	assert.Equal(t, "Countess", env.store.Current().User.Name)

	_, err = env.client.UpdateProfile(ctx, ProfileUpdate{Name: "Countess", NewPassword: "n3w-pass", ConfirmPassword: "n3w-pass"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Countess", "newPassword": "n3w-pass", "confirmPassword": "n3w-pass"}, updateBody)

	assert.Equal(t, []session.EventType{
		session.EventUserUpdated,
		session.EventUserUpdated,
		session.EventUserUpdated,
	}, env.events)
}
