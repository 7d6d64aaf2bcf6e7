package main

import (
	"context"
	"errors"
	"strings"

	"github.com/Veraticus/smart-expense-tracker/internal/api"
	"github.com/Veraticus/smart-expense-tracker/internal/cli"
	"github.com/Veraticus/smart-expense-tracker/internal/common"
	"github.com/Veraticus/smart-expense-tracker/internal/model"
	"github.com/Veraticus/smart-expense-tracker/internal/service"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxParallelFetches bounds concurrent requests of expenses show.
const maxParallelFetches = 4

func expensesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expenses",
		Aliases: []string{"expense", "exp"},
		Short:   "Review and correct parsed expenses",
	}

	cmd.AddCommand(expensesListCmd(opts))
	cmd.AddCommand(expensesShowCmd(opts))
	cmd.AddCommand(expensesUpdateCmd(opts))
	cmd.AddCommand(expensesDeleteCmd(opts))

	return cmd
}

func expensesListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your expenses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			env, err := a.client.GetExpenses(cmd.Context())
			if err != nil {
				return a.fail(env.Message, env.Errors, err)
			}

			a.println(cli.RenderExpenses(env.Data.Expenses))
			return nil
		},
	}
}

// fetchResult is one expense requested by expenses show.
type fetchResult struct {
	env *api.Envelope[api.ExpenseEnvelope]
	err error
}

func expensesShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>...",
		Short: "Show one or more expenses in detail",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := fetchExpenses(cmd.Context(), a.client, args)
			if err != nil {
				return err
			}

			var failed error
			for i, res := range results {
				if res.err != nil {
					failed = a.fail(args[i]+": "+res.env.Message, res.env.Errors, res.err)
					continue
				}
				a.println(cli.RenderExpense(res.env.Data.Expense))
			}
			return failed
		},
	}
}

// fetchExpenses loads ids concurrently, keeping results in argument order.
// Per-expense failures are returned in the results; a rejected session
// stops the remaining fetches.
func fetchExpenses(ctx context.Context, client service.ExpenseService, ids []string) ([]fetchResult, error) {
	results := make([]fetchResult, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			env, err := client.GetExpenseByID(gctx, id)
			results[i] = fetchResult{env: env, err: err}
			if common.IsAuthError(err) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Join(errReported, err)
	}
	return results, nil
}

// updateFlags holds the raw values of expenses update.
type updateFlags struct {
	merchant string
	currency string
	date     string
	category string
	tags     []string
	amount   float64
	verified bool
}

// build turns the flags the user set into a partial update.
func (f *updateFlags) build(cmd *cobra.Command) (model.ExpenseUpdate, []model.FieldError) {
	var (
		update model.ExpenseUpdate
		errs   []model.FieldError
	)
	flags := cmd.Flags()

	if flags.Changed("merchant") {
		update.Merchant = &f.merchant
	}
	if flags.Changed("amount") {
		update.Amount = &f.amount
	}
	if flags.Changed("currency") {
		currency := strings.ToUpper(strings.TrimSpace(f.currency))
		update.Currency = &currency
	}
	if flags.Changed("date") {
		date, err := model.ParseTime(f.date)
		if err != nil {
			errs = append(errs, model.FieldError{Field: "date", Message: "Date must look like 2025-03-14"})
		} else {
			update.Date = &date
		}
	}
	if flags.Changed("category") {
		update.Category = &f.category
	}
	if flags.Changed("tags") {
		update.Tags = f.tags
		if update.Tags == nil {
			update.Tags = []string{}
		}
	}
	if flags.Changed("verified") {
		update.IsVerified = &f.verified
	}

	return update, errs
}

func expensesUpdateCmd(opts *rootOptions) *cobra.Command {
	f := &updateFlags{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Correct the fields of a parsed expense",
		Example: `  expense expenses update 65f0c2 --amount 42.50 --category Groceries
  expense expenses update 65f0c2 --verified`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			update, fieldErrs := f.build(cmd)
			if len(fieldErrs) > 0 {
				a.printErrors("Please correct the highlighted fields", fieldErrs)
				return errReported
			}

			env, err := a.client.UpdateExpense(cmd.Context(), args[0], update)
			if err != nil {
				return a.fail(env.Message, env.Errors, err)
			}

			a.println(cli.FormatSuccess("Expense updated"))
			if env.Data != nil {
				a.println(cli.RenderExpense(env.Data.Expense))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.merchant, "merchant", "", "merchant name")
	flags.Float64Var(&f.amount, "amount", 0, "amount")
	flags.StringVar(&f.currency, "currency", "", "3-letter currency code")
	flags.StringVar(&f.date, "date", "", "expense date (YYYY-MM-DD)")
	flags.StringVar(&f.category, "category", "", "category")
	flags.StringSliceVar(&f.tags, "tags", nil, "comma-separated tags (replaces existing tags)")
	flags.BoolVar(&f.verified, "verified", false, "mark the expense as verified")

	return cmd
}

func expensesDeleteCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an expense",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if !yes {
				ok, err := a.prompter.Confirm(ctx, "Delete expense "+args[0]+"?")
				if err != nil {
					return err
				}
				if !ok {
					a.println(cli.FormatInfo("Nothing deleted"))
					return nil
				}
			}

			env, err := a.client.DeleteExpense(ctx, args[0])
			if err != nil {
				return a.fail(env.Message, env.Errors, err)
			}

			message := env.Message
			if message == "" {
				message = "Expense deleted"
			}
			a.println(cli.FormatSuccess(message))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
