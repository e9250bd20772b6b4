package commands

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/internal/cli/serverselect"
	"github.com/folio-dev/folio/internal/cli/userconfig"
)

// NewUseCmd creates the use command, which saves the default server
func NewUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use [server-url]",
		Short: "Set the server used by other commands",
		Long: `Set the server used by other commands.

If no URL is given, pick from servers you have logged in to before.

Examples:
  $ folio use                          # Interactive selection
  $ folio use http://localhost:5000
  $ folio use https://folio.example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var server string
			if len(args) > 0 {
				server = args[0]
			} else {
				cfg, err := userconfig.Load()
				if err != nil {
					return err
				}
				if server, err = serverselect.PromptServerSelection(cfg); err != nil {
					return err
				}
			}
			return runUse(cmd, server)
		},
	}
}

func runUse(cmd *cobra.Command, server string) error {
	u, err := url.Parse(server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server URL %q (expected http(s)://host[:port])", server)
	}

	if err := userconfig.SetServer(server); err != nil {
		return fmt.Errorf("failed to save server: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Using server %s\n", server)
	return nil
}
