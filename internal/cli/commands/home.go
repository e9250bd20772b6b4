package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/internal/cli/guard"
	"github.com/folio-dev/folio/internal/cli/session"
	"github.com/folio-dev/folio/internal/cli/views"
)

// NewHomeCmd creates the home command, the protected landing page
func NewHomeCmd(opts ...Option) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show the home page (requires login)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts)
			if err != nil {
				return err
			}
			return runHome(e)
		},
	}
}

func runHome(e *env) error {
	g := guard.New(e.holder)

	err := g.Render(e.out, homeView(e))
	if !errors.Is(err, guard.ErrRedirected) {
		return err
	}

	if !e.prompter.Interactive() {
		return fmt.Errorf("%w. Run 'folio login' first", guard.ErrRedirected)
	}

	if err := runLogin(e, "", ""); err != nil {
		return err
	}

	e.printf("\n")
	return g.Render(e.out, homeView(e))
}

func homeView(e *env) guard.View {
	var home views.Home
	if token, err := e.holder.Token(); err == nil {
		if claims, err := session.ParseClaims(token); err == nil {
			home.Email = claims.Email
		}
	}
	return home
}
