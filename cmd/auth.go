package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"roombook/internal/validate"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in, sign out and manage credentials",
}

var authFlags struct {
	email       string
	password    string
	confirm     string
	displayName string
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readSecret(cmd, authFlags.password, "Password")
		if err != nil {
			return err
		}
		confirm, err := readSecret(cmd, authFlags.confirm, "Confirm password")
		if err != nil {
			return err
		}
		creds, err := validate.SignUpForm{Email: authFlags.email, Password: password, ConfirmPassword: confirm}.Credentials()
		if err != nil {
			return err
		}

		app, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		if err := app.api.Register(cmd.Context(), creds); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Registration successful, you can now sign in.")
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readSecret(cmd, authFlags.password, "Password")
		if err != nil {
			return err
		}
		creds, err := validate.LoginForm{Email: authFlags.email, Password: password}.Credentials()
		if err != nil {
			return err
		}

		app, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		user, err := app.session.Login(cmd.Context(), creds)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", user.Email, orDash(user.Role))
		return nil
	},
}

var googleCmd = &cobra.Command{
	Use:   "google",
	Short: "Sign in with a Google identity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		form := validate.GoogleForm{DisplayName: authFlags.displayName, Email: authFlags.email}
		if err := form.Check(); err != nil {
			return err
		}

		app, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		user, err := app.session.LoginWithGoogle(cmd.Context(), form.DisplayName, form.Email)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", user.Email, orDash(user.Role))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		app.session.Logout(cmd.Context())
		if err := app.jar.Clear(cmd.Context(), app.api.BaseURL()); err != nil {
			logger.Warn("Failed to clear stored cookies", "error", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

type whoami struct {
	ID          string `json:"id" yaml:"id"`
	Email       string `json:"email" yaml:"email"`
	Role        string `json:"role" yaml:"role"`
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	TokenExpiry string `json:"tokenExpiry,omitempty" yaml:"tokenExpiry,omitempty"`
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		user := app.session.User()
		info := whoami{ID: user.ID, Email: user.Email, Role: user.Role, DisplayName: user.DisplayName}
		if claims, err := app.session.Claims(); err == nil && claims.ExpiresAt != nil {
			info.TokenExpiry = localTime(claims.ExpiresAt.Time)
		}

		return render(cmd, info, func(w io.Writer) {
			fmt.Fprintf(w, "ID\t%s\n", info.ID)
			fmt.Fprintf(w, "EMAIL\t%s\n", info.Email)
			fmt.Fprintf(w, "ROLE\t%s\n", orDash(info.Role))
			fmt.Fprintf(w, "NAME\t%s\n", orDash(info.DisplayName))
			fmt.Fprintf(w, "TOKEN EXPIRES\t%s\n", orDash(info.TokenExpiry))
		})
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Mint a new access token from the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		if _, err := app.session.Refresh(cmd.Context()); err != nil {
			return err
		}
		expiry := "-"
		if claims, err := app.session.Claims(); err == nil && claims.ExpiresAt != nil {
			expiry = localTime(claims.ExpiresAt.Time)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Access token refreshed, valid until %s\n", expiry)
		return nil
	},
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Request a password reset link",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		form := validate.ForgotPasswordForm{Email: authFlags.email}
		if err := form.Check(); err != nil {
			return err
		}
		app, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		if err := app.api.ForgotPassword(cmd.Context(), form.Email); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "If the email exists, a reset link has been sent.")
		return nil
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password <token>",
	Short: "Set a new password with a reset token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readSecret(cmd, authFlags.password, "New password")
		if err != nil {
			return err
		}
		confirm, err := readSecret(cmd, authFlags.confirm, "Confirm password")
		if err != nil {
			return err
		}
		form := validate.ResetPasswordForm{Token: args[0], Password: password, ConfirmPassword: confirm}
		if err := form.Check(); err != nil {
			return err
		}

		app, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		if err := app.api.ResetPassword(cmd.Context(), form.Token, form.Password); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Password reset, you can now sign in.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(registerCmd, loginCmd, googleCmd, logoutCmd, whoamiCmd, refreshCmd, forgotPasswordCmd, resetPasswordCmd)

	for _, c := range []*cobra.Command{registerCmd, loginCmd, googleCmd, forgotPasswordCmd} {
		c.Flags().StringVar(&authFlags.email, "email", "", "account email")
	}
	for _, c := range []*cobra.Command{registerCmd, loginCmd, resetPasswordCmd} {
		c.Flags().StringVar(&authFlags.password, "password", "", "password (prompted when omitted)")
	}
	for _, c := range []*cobra.Command{registerCmd, resetPasswordCmd} {
		c.Flags().StringVar(&authFlags.confirm, "confirm", "", "password confirmation (prompted when omitted)")
	}
	googleCmd.Flags().StringVar(&authFlags.displayName, "display-name", "", "name shown for the account")
}
