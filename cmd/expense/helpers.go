package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Veraticus/smart-expense-tracker/internal/api"
	"github.com/Veraticus/smart-expense-tracker/internal/cli"
	"github.com/Veraticus/smart-expense-tracker/internal/common"
	"github.com/Veraticus/smart-expense-tracker/internal/config"
	"github.com/Veraticus/smart-expense-tracker/internal/model"
	"github.com/Veraticus/smart-expense-tracker/internal/service"
	"github.com/Veraticus/smart-expense-tracker/internal/session"
	"github.com/spf13/cobra"
)

// errReported marks failures that were already shown to the user.
var errReported = errors.New("reported")

// app bundles what a command needs to talk to the API.
type app struct {
	out      io.Writer
	errOut   io.Writer
	cfg      *config.Config
	client   service.Client
	sessions *session.Store
	storage  *session.SQLiteStorage
	prompter *cli.Prompter
}

// openApp loads the configuration, opens the session database and builds
// the API client. Callers must Close the result.
func (o *rootOptions) openApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()

	cfg, err := config.Load(o.v)
	if err != nil {
		return nil, err
	}

	storage, err := session.NewSQLiteStorage(ctx, cfg.SessionPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}

	sessions, err := session.NewStore(ctx, storage)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}

	client, err := api.NewClient(api.Config{
		BaseURL:    cfg.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Sessions:   sessions,
		Redirector: cli.NewLoginRedirector(cmd.ErrOrStderr()),
		Logger:     slog.Default(),
	})
	if err != nil {
		_ = storage.Close()
		return nil, err
	}

	slog.Debug("Client ready", "base_url", cfg.BaseURL, "session_path", storage.Path())

	return &app{
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
		cfg:      cfg,
		client:   client,
		sessions: sessions,
		storage:  storage,
		prompter: cli.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()),
	}, nil
}

// Close releases the session database.
func (a *app) Close() {
	if err := a.storage.Close(); err != nil {
		slog.Error("failed to close session storage", "error", err)
	}
}

func (a *app) println(s string) {
	_, _ = fmt.Fprintln(a.out, s)
}

// fail shows a failed operation with its field errors and returns an error
// main will not print again. Session expiry was already announced by the
// login redirector.
func (a *app) fail(message string, fields []model.FieldError, err error) error {
	if !errors.Is(err, common.ErrUnauthorized) || message != api.SessionExpiredMessage {
		a.printErrors(message, fields)
	}
	return fmt.Errorf("%w: %w", errReported, err)
}

func (a *app) printErrors(message string, fields []model.FieldError) {
	_, _ = fmt.Fprint(a.errOut, cli.RenderFieldErrors(message, fields))
}

// checkForm prints client-side validation errors, if any.
func (a *app) checkForm(f *cli.Form) error {
	if f.Valid() {
		return nil
	}
	a.printErrors("Please correct the highlighted fields", f.Errors())
	return errReported
}
