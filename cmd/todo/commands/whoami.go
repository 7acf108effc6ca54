package commands

import (
	"github.com/spf13/cobra"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the currently logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp()
			if err != nil {
				return err
			}
			defer app.Close()

			user, err := app.RequireUser()
			if err != nil {
				return err
			}
			cmd.Printf("User ID: %s\n", user.ID)
			if user.Email != "" {
				cmd.Printf("Email:   %s\n", user.Email)
			}
			if user.Name != nil {
				cmd.Printf("Name:    %s\n", *user.Name)
			}
			return nil
		},
	}
}
