// Package service defines the contracts between the commands, the
// interactive dashboard and the API client.
package service

import (
	"context"

	"github.com/Veraticus/smart-expense-tracker/internal/api"
	"github.com/Veraticus/smart-expense-tracker/internal/model"
)

// AuthService manages accounts and the session.
type AuthService interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.Envelope[api.AuthPayload], error)
	Login(ctx context.Context, req api.LoginRequest) (*api.Envelope[api.AuthPayload], error)
	Logout(ctx context.Context) *api.Envelope[struct{}]
	ForgotPassword(ctx context.Context, email string) (*api.Envelope[struct{}], error)
	ResetPassword(ctx context.Context, req api.ResetPasswordRequest) (*api.Envelope[struct{}], error)
}

// ProfileService reads and updates the signed-in user.
type ProfileService interface {
	GetProfile(ctx context.Context) (*api.Envelope[api.ProfilePayload], error)
	UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*api.Envelope[api.ProfilePayload], error)
}

// ExpenseService manages parsed expense records.
type ExpenseService interface {
	GetExpenses(ctx context.Context) (*api.Envelope[api.ExpenseList], error)
	GetExpenseByID(ctx context.Context, id string) (*api.Envelope[api.ExpenseEnvelope], error)
	UpdateExpense(ctx context.Context, id string, update model.ExpenseUpdate) (*api.Envelope[api.ExpenseEnvelope], error)
	DeleteExpense(ctx context.Context, id string) (*api.Envelope[struct{}], error)
}

// ReceiptService uploads receipt images.
type ReceiptService interface {
	UploadReceipt(ctx context.Context, file api.ReceiptFile) (*api.Envelope[api.ReceiptUpload], error)
}

// DashboardService fetches the spending summary.
type DashboardService interface {
	GetDashboardData(ctx context.Context, year int) (*api.Envelope[model.DashboardData], error)
}

// Client is everything the command line needs from the API.
type Client interface {
	AuthService
	ProfileService
	ExpenseService
	ReceiptService
	DashboardService
}

var _ Client = (*api.Client)(nil)
