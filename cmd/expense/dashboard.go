package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/smart-expense-tracker/internal/api"
	"github.com/Veraticus/smart-expense-tracker/internal/cli"
	"github.com/Veraticus/smart-expense-tracker/internal/common"
	"github.com/Veraticus/smart-expense-tracker/internal/dashboard"
	"github.com/Veraticus/smart-expense-tracker/internal/session"
	"github.com/Veraticus/smart-expense-tracker/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultDashboardWidth = 100

func dashboardCmd(opts *rootOptions) *cobra.Command {
	var (
		year        int
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show your spending dashboard",
		Long: `Show totals, top category, a category breakdown and a month-by-month
comparison for one year. Use --interactive to browse years.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("year") {
				year = a.cfg.DashboardYear
			}
			if year < 0 {
				return fmt.Errorf("%w: --year must not be negative", common.ErrInvalidConfig)
			}

			if interactive {
				needsLogin, err := tui.Run(tui.Config{
					Context:  cmd.Context(),
					Service:  a.client,
					Sessions: a.sessions,
					Year:     year,
				})
				if err != nil {
					return err
				}
				if needsLogin {
					a.println(cli.FormatInfo("Log in with: expense auth login"))
				}
				return nil
			}

			env, err := a.client.GetDashboardData(cmd.Context(), year)
			if err != nil {
				if api.TokenRejected(err) {
					// Forget the dead token without the redirect other commands get
					if cerr := a.sessions.Clear(cmd.Context(), session.EventExpired); cerr != nil {
						slog.Warn("Failed to clear rejected session", "error", cerr)
					}
				}
				a.printErrors(env.Message, env.Errors)
				if errors.Is(err, common.ErrUnauthorized) {
					a.println(cli.FormatInfo("Log in with: expense auth login"))
				}
				return errors.Join(errReported, err)
			}

			a.println(dashboard.RenderData(env.Data, year, terminalWidth()))
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year to show (default: dashboard.year from config, else the server's choice)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the dashboard interactively")

	return cmd
}

// terminalWidth returns the width of stdout, or a default when stdout is
// not a terminal.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultDashboardWidth
}
