package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notesmith/smart-notes/internal/database"
)

// NewUsersCmd creates the users command with list, disable and enable subcommands.
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
		Long:  "List user accounts or toggle whether an account may sign in.",
	}
	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersSetActiveCmd("disable", "Disable a user account", false))
	cmd.AddCommand(newUsersSetActiveCmd("enable", "Enable a user account", true))
	return cmd
}

func newUsersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			repo := database.NewUserRepository(db)
			users, err := repo.List(context.Background())
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}

			if len(users) == 0 {
				fmt.Println("No users registered")
				return nil
			}

			fmt.Println("Users:")
			for _, u := range users {
				state := "active"
				if !u.Active {
					state = "disabled"
				}
				login := "password"
				if u.Provider != nil {
					login = *u.Provider
				}
				fmt.Printf("  - %s  %s  (%s, %s)\n", u.ID, u.Email, login, state)
			}
			return nil
		},
	}
}

func newUsersSetActiveCmd(verb, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.ToLower(strings.TrimSpace(args[0]))

			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			repo := database.NewUserRepository(db)
			ctx := context.Background()

			user, err := repo.GetByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("look up user %s: %w", email, err)
			}

			if user.Active == active {
				fmt.Printf("User %s is already %sd\n", email, verb)
				return nil
			}

			user.Active = active
			if err := repo.Update(ctx, user); err != nil {
				return fmt.Errorf("update user %s: %w", email, err)
			}

			fmt.Printf("User %s %sd\n", email, verb)
			return nil
		},
	}
}
