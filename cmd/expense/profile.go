package main

import (
	"github.com/Veraticus/smart-expense-tracker/internal/api"
	"github.com/Veraticus/smart-expense-tracker/internal/cli"
	"github.com/spf13/cobra"
)

func profileCmd(opts *rootOptions) *cobra.Command {
	show := profileShowCmd(opts)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change your profile",
		RunE:  show.RunE,
	}

	cmd.AddCommand(show)
	cmd.AddCommand(profileUpdateCmd(opts))

	return cmd
}

func profileShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			env, err := a.client.GetProfile(cmd.Context())
			if err != nil {
				return a.fail(env.Message, env.Errors, err)
			}

			a.println(cli.RenderProfile(env.Data.User, a.sessions.Current().ExpiresAt()))
			return nil
		},
	}
}

func profileUpdateCmd(opts *rootOptions) *cobra.Command {
	var (
		name           string
		changePassword bool
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change your display name or password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			update := api.ProfileUpdate{Name: name}
			if update.Name == "" {
				if update.Name, err = a.prompter.Ask(ctx, "Name", a.sessions.Current().User.Name); err != nil {
					return err
				}
			}

			form := (&cli.Form{}).Required("name", "Name", update.Name)
			if changePassword {
				if update.NewPassword, err = a.prompter.Password(ctx, "New password"); err != nil {
					return err
				}
				if update.ConfirmPassword, err = a.prompter.Password(ctx, "Confirm password"); err != nil {
					return err
				}
				form.Required("newPassword", "New password", update.NewPassword).
					Match("confirmPassword", update.NewPassword, update.ConfirmPassword)
			}
			if err := a.checkForm(form); err != nil {
				return err
			}

			env, err := a.client.UpdateProfile(ctx, update)
			if err != nil {
				return a.fail(env.Message, env.Errors, err)
			}

			message := env.Message
			if message == "" {
				message = "Profile updated"
			}
			a.println(cli.FormatSuccess(message))
			if env.Data != nil {
				a.println(cli.RenderProfile(env.Data.User, a.sessions.Current().ExpiresAt()))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().BoolVar(&changePassword, "change-password", false, "prompt for a new password")

	return cmd
}
