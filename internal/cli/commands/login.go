package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/internal/cli/userconfig"
)

// NewLoginCmd creates the login command
func NewLoginCmd(opts ...Option) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with a Folio server",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts)
			if err != nil {
				return err
			}
			return runLogin(e, email, password)
		},
	}

	addCredentialFlags(cmd, &email, &password)

	return cmd
}

func runLogin(e *env, email, password string) error {
	email, password, err := credentials(e, email, password)
	if err != nil {
		return err
	}

	e.printf("Logging in to %s...\n", e.server)

	resp, err := e.api.Login(email, password)
	if err != nil {
		e.printf("✗ Login failed: %v\n", err)
		return fmt.Errorf("login failed: %w", err)
	}

	if err := e.holder.SetToken(resp.Token); err != nil {
		return fmt.Errorf("failed to save authentication token: %w", err)
	}

	if err := userconfig.RememberServer(e.server); err != nil {
		e.printf("Warning: failed to remember server: %v\n", err)
	}

	e.printf("✓ Login successful!\n")
	e.printf("  User: %s\n", resp.User.Email)
	if !resp.ExpiresAt.IsZero() {
		e.printf("  Session expires: %s\n", resp.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}

	return nil
}

// NewSignupCmd creates the signup command
func NewSignupCmd(opts ...Option) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Long: `Create an account on a Folio server.

Signing up does not log you in. Run 'folio login' afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts)
			if err != nil {
				return err
			}
			return runSignup(e, email, password)
		},
	}

	addCredentialFlags(cmd, &email, &password)

	return cmd
}

func runSignup(e *env, email, password string) error {
	email, password, err := credentials(e, email, password)
	if err != nil {
		return err
	}

	user, err := e.api.Signup(email, password)
	if err != nil {
		e.printf("✗ Signup failed: %v\n", err)
		return fmt.Errorf("signup failed: %w", err)
	}

	e.printf("✓ Account created for %s\n", user.Email)
	e.printf("\nLog in with: folio login --email %s\n", user.Email)
	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(opts ...Option) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts)
			if err != nil {
				return err
			}

			if err := e.holder.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove authentication token: %w", err)
			}
			e.printf("Logged out of %s\n", e.server)
			return nil
		},
	}
}
