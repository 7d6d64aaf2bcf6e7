package main

import (
	"time"

	"github.com/Veraticus/smart-expense-tracker/internal/api"
	"github.com/Veraticus/smart-expense-tracker/internal/cli"
	"github.com/spf13/cobra"
)

func authCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage your account and session",
	}

	cmd.AddCommand(registerCmd(opts))
	cmd.AddCommand(loginCmd(opts))
	cmd.AddCommand(logoutCmd(opts))
	cmd.AddCommand(statusCmd(opts))
	cmd.AddCommand(forgotPasswordCmd(opts))
	cmd.AddCommand(resetPasswordCmd(opts))

	return cmd
}

func registerCmd(opts *rootOptions) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			req := api.RegisterRequest{Name: name, Email: email}
			if req.Name, err = a.prompter.Ask(ctx, "Name", req.Name); err != nil {
				return err
			}
			if req.Email, err = a.prompter.Ask(ctx, "Email", req.Email); err != nil {
				return err
			}
			if req.Password, err = a.prompter.Password(ctx, "Password"); err != nil {
				return err
			}
			if req.ConfirmPassword, err = a.prompter.Password(ctx, "Confirm password"); err != nil {
				return err
			}

			form := (&cli.Form{}).
				Required("name", "Name", req.Name).
				Required("email", "Email", req.Email).
				Email("email", req.Email).
				Required("password", "Password", req.Password).
				Match("confirmPassword", req.Password, req.ConfirmPassword)
			if err := a.checkForm(form); err != nil {
				return err
			}

			env, err := a.client.Register(ctx, req)
			if err != nil {
				return a.fail(env.Message, env.Errors, err)
			}

			a.println(cli.FormatSuccess("Welcome, " + env.Data.User.Name + "! You are now signed in."))
			if !env.Data.User.IsEmailConfirmed {
				a.println(cli.FormatInfo("Check your inbox to confirm " + env.Data.User.Email + "."))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")

	return cmd
}

func loginCmd(opts *rootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			req := api.LoginRequest{Email: email}
			if req.Email, err = a.prompter.Ask(ctx, "Email", req.Email); err != nil {
				return err
			}
			if req.Password, err = a.prompter.Password(ctx, "Password"); err != nil {
				return err
			}

			form := (&cli.Form{}).
				Required("email", "Email", req.Email).
				Email("email", req.Email).
				Required("password", "Password", req.Password)
			if err := a.checkForm(form); err != nil {
				return err
			}

			env, err := a.client.Login(ctx, req)
			if err != nil {
				return a.fail(env.Message, env.Errors, err)
			}

			a.println(cli.FormatSuccess("Signed in as " + env.Data.User.Email))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")

	return cmd
}

func logoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			env := a.client.Logout(cmd.Context())
			a.println(cli.FormatSuccess(env.Message))
			return nil
		},
	}
}

func statusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is signed in on this device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			current := a.sessions.Current()
			if !current.Valid() {
				a.println(cli.FormatInfo("Not signed in. Run: expense auth login"))
				return nil
			}

			a.println(cli.RenderProfile(current.User, current.ExpiresAt()))
			if current.Expired(time.Now()) {
				a.println(cli.FormatWarning("This session has expired. Log in again with: expense auth login"))
			}
			return nil
		},
	}
}

func forgotPasswordCmd(opts *rootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Email a password reset code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if email, err = a.prompter.Ask(ctx, "Email", email); err != nil {
				return err
			}
			form := (&cli.Form{}).Required("email", "Email", email).Email("email", email)
			if err := a.checkForm(form); err != nil {
				return err
			}

			env, err := a.client.ForgotPassword(ctx, email)
			if err != nil {
				return a.fail(env.Message, env.Errors, err)
			}

			message := env.Message
			if message == "" {
				message = "If that account exists, a reset code is on its way."
			}
			a.println(cli.FormatSuccess(message))
			a.println(cli.FormatInfo("Then run: expense auth reset-password --code <code>"))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")

	return cmd
}

func resetPasswordCmd(opts *rootOptions) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password with an emailed reset code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			req := api.ResetPasswordRequest{Code: code}
			if req.Code, err = a.prompter.Ask(ctx, "Reset code", req.Code); err != nil {
				return err
			}
			if req.NewPassword, err = a.prompter.Password(ctx, "New password"); err != nil {
				return err
			}
			if req.ConfirmPassword, err = a.prompter.Password(ctx, "Confirm password"); err != nil {
				return err
			}

			form := (&cli.Form{}).
				Required("code", "Reset code", req.Code).
				Required("newPassword", "New password", req.NewPassword).
				Match("confirmPassword", req.NewPassword, req.ConfirmPassword)
			if err := a.checkForm(form); err != nil {
				return err
			}

			env, err := a.client.ResetPassword(ctx, req)
			if err != nil {
				return a.fail(env.Message, env.Errors, err)
			}

			message := env.Message
			if message == "" {
				message = "Password updated."
			}
			a.println(cli.FormatSuccess(message + " You can now log in with your new password."))
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "reset code from the email")

	return cmd
}
