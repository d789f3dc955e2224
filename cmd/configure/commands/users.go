package commands

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/benvon/datenight/internal/database"
	"github.com/spf13/cobra"
)

// NewUsersCmd creates the users command for listing accounts and toggling their access
func NewUsersCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
		Long:  "List accounts and enable or disable them. A disabled account cannot log in and its tokens stop working.",
	}
	cmd.AddCommand(newUsersListCmd(open))
	cmd.AddCommand(newUsersSetActiveCmd(open, "disable", false))
	cmd.AddCommand(newUsersSetActiveCmd(open, "enable", true))
	return cmd
}

func newUsersListCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			users, err := database.NewUserRepository(db).List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(out, "No users registered")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "EMAIL\tUSERNAME\tACTIVE\tLAST LOGIN\tCREATED")
			for _, u := range users {
				lastLogin := "never"
				if u.LastLogin != nil {
					lastLogin = u.LastLogin.UTC().Format(time.RFC3339)
				}
				fmt.Fprintf(tw, "%s\t%s\t%v\t%s\t%s\n",
					u.Email, u.Username, u.IsActive, lastLogin, u.CreatedAt.UTC().Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}

func newUsersSetActiveCmd(open Opener, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.ToLower(strings.TrimSpace(args[0]))
			db, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			err = database.NewUserRepository(db).SetActive(cmd.Context(), email, active)
			if errors.Is(err, database.ErrNotFound) {
				return fmt.Errorf("no user with email %s", email)
			}
			if err != nil {
				return fmt.Errorf("%s user: %w", use, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s %sd.\n", email, use)
			return nil
		},
	}
}
