package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewUsersCmd creates the users command group
func NewUsersCmd(opts ...Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"ls"},
		Short:   "List accounts on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts)
			if err != nil {
				return err
			}
			return runListUsers(e)
		},
	}

	cmd.AddCommand(newDeleteUserCmd(opts))

	return cmd
}

func runListUsers(e *env) error {
	users, err := authedCall(e, e.api.ListUsers)
	if err != nil {
		return err
	}

	if len(users) == 0 {
		e.printf("No users found.\n")
		return nil
	}

	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tCREATED AT")
	fmt.Fprintln(w, "──\t─────\t──────────")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.Email, u.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func newDeleteUserCmd(opts []Option) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts)
			if err != nil {
				return err
			}
			return runDeleteUser(e, args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}

func runDeleteUser(e *env, id string, yes bool) error {
	if !yes {
		if !e.prompter.Interactive() {
			return fmt.Errorf("refusing to delete without confirmation (use --yes)")
		}
		ok, err := e.prompter.Confirm(fmt.Sprintf("Delete user %s", id))
		if err != nil {
			return err
		}
		if !ok {
			e.printf("Aborted.\n")
			return nil
		}
	}

	_, err := authedCall(e, func(token string) (struct{}, error) {
		return struct{}{}, e.api.DeleteUser(token, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	e.printf("✓ Deleted user %s\n", id)
	return nil
}
