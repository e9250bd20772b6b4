package commands

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/internal/cli/client"
	"github.com/folio-dev/folio/internal/cli/session"
)

// NewStatusCmd creates the status command. It never contacts the server.
func NewStatusCmd(opts ...Option) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether you are logged in",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts)
			if err != nil {
				return err
			}

			e.printf("Server: %s\n", e.server)

			token, err := e.holder.Token()
			if err != nil {
				if !errors.Is(err, session.ErrNotLoggedIn) {
					return err
				}
				e.printf("Status: logged out\n")
				return nil
			}

			claims, err := session.ParseClaims(token)
			if err != nil {
				return err
			}
			e.printf("Status: logged in as %s\n", claims.Email)
			if claims.ExpiresAt != nil {
				e.printf("Expires: %s\n", claims.ExpiresAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(opts ...Option) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account the server sees for your session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts)
			if err != nil {
				return err
			}

			user, err := authedCall(e, e.api.Me)
			if err != nil {
				return err
			}

			e.printf("%s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
}

// authedCall runs call with the held token. A 401 means the server no
// longer accepts the token, so it is dropped.
func authedCall[T any](e *env, call func(token string) (T, error)) (T, error) {
	var zero T

	token, err := e.holder.Token()
	if err != nil {
		return zero, err
	}

	result, err := call(token)
	if client.StatusCode(err) == http.StatusUnauthorized {
		_ = e.holder.ClearToken()
		return zero, fmt.Errorf("%w: the server rejected the stored token", session.ErrNotLoggedIn)
	}
	return result, err
}
