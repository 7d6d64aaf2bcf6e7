package main

import (
	"github.com/Veraticus/smart-expense-tracker/internal/api"
	"github.com/Veraticus/smart-expense-tracker/internal/cli"
	"github.com/Veraticus/smart-expense-tracker/internal/model"
	"github.com/spf13/cobra"
)

func receiptsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "receipts",
		Aliases: []string{"receipt"},
		Short:   "Upload receipt images",
	}

	cmd.AddCommand(receiptUploadCmd(opts))

	return cmd
}

func receiptUploadCmd(opts *rootOptions) *cobra.Command {
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a receipt image (JPEG, PNG, WEBP or GIF, up to 10MB)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			file, err := api.OpenReceiptFile(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = file.Close() }()

			// Reject bad files before drawing a progress bar for them
			if msg := api.ValidateReceipt(file); msg != "" {
				a.printErrors(msg, nil)
				return errReported
			}

			handler := cli.NewInterruptHandler(a.errOut, "Upload canceled")
			ctx, stop := handler.HandleInterrupts(cmd.Context())
			defer stop()

			if !noProgress {
				var finish func()
				file.Content, finish = cli.UploadProgress(file.Content, file.Size, "Uploading "+file.Name, a.errOut)
				defer finish()
			}

			env, err := a.client.UploadReceipt(ctx, file)
			if handler.WasInterrupted() {
				return errReported
			}
			if err != nil {
				return a.fail(env.Message, uploadFieldErrors(env.Errors), err)
			}

			a.println(cli.FormatSuccess(cli.ReceiptIcon + " Receipt uploaded"))
			a.println(cli.RenderReceipt(env.Data.Receipt))
			if env.Data.Expense != nil {
				a.println(cli.RenderExpense(*env.Data.Expense))
			} else if !env.Data.Receipt.OCRStatus.Done() {
				a.println(cli.FormatInfo("The receipt is still being read. Check back with: expense expenses list"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "do not draw an upload progress bar")

	return cmd
}

// uploadFieldErrors drops the field error that only repeats the banner.
func uploadFieldErrors(fields []model.FieldError) []model.FieldError {
	if len(fields) == 1 && fields[0].Field == "receipt" {
		return nil
	}
	return fields
}
