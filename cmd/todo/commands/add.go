package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewAddCmd creates the add command
func NewAddCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if _, err := app.RequireUser(); err != nil {
				return err
			}

			title := strings.Join(args, " ")
			created, err := app.Tasks.Create(cmd.Context(), title, description)
			if err != nil {
				return err
			}
			cmd.Printf("Added task %d: %s\n", created.ID, created.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	return cmd
}
