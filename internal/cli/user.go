package cli

import (
	"fmt"

	"github.com/deepwork/internal/db"
	"github.com/spf13/cobra"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var username, password string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create an account with a bcrypt-hashed password",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := db.CreateUser(a.db, username, password)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}
	add.Flags().StringVar(&username, "username", "", "login name")
	add.Flags().StringVar(&password, "password", "", "login password")
	_ = add.MarkFlagRequired("username")
	_ = add.MarkFlagRequired("password")

	cmd.AddCommand(add)
	return cmd
}
