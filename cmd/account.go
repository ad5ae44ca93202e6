package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"roombook/internal/validate"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage your account",
}

var accountForm validate.AccountForm

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var err error
		form := accountForm
		if form.CurrentPassword, err = readSecret(cmd, form.CurrentPassword, "Current password"); err != nil {
			return err
		}
		if form.NewPassword, err = readSecret(cmd, form.NewPassword, "New password"); err != nil {
			return err
		}
		if form.ConfirmPassword, err = readSecret(cmd, form.ConfirmPassword, "Confirm new password"); err != nil {
			return err
		}

		app, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		user, err := app.dashboard.ChangePassword(cmd.Context(), form)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s\n", user.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(passwordCmd)

	f := passwordCmd.Flags()
	f.StringVar(&accountForm.CurrentPassword, "current", "", "current password (prompted when omitted)")
	f.StringVar(&accountForm.NewPassword, "new", "", "new password (prompted when omitted)")
	f.StringVar(&accountForm.ConfirmPassword, "confirm", "", "new password again (prompted when omitted)")
}
