package commands

import (
	"github.com/spf13/cobra"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if email == "" {
				email = prompt(cmd, "Email: ")
			}
			if password == "" {
				password = prompt(cmd, "Password: ")
			}

			var namePtr *string
			if name != "" {
				namePtr = &name
			}
			if err := app.Session.Register(cmd.Context(), email, password, namePtr); err != nil {
				return err
			}
			user := app.Session.User()
			cmd.Printf("Registered and logged in as %s\n", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email address")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted if omitted)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}
