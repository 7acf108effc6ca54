package commands

import (
	"github.com/spf13/cobra"

	"github.com/benvon/smart-todo-cli/internal/models"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if _, err := app.RequireUser(); err != nil {
				return err
			}
			if err := app.Tasks.Fetch(cmd.Context()); err != nil {
				return err
			}

			items := app.Tasks.Tasks()
			if len(items) == 0 {
				cmd.Println("No tasks yet. Add one with 'todo add'.")
				return nil
			}
			for _, t := range items {
				printTask(cmd, t)
			}
			return nil
		},
	}
}

func printTask(cmd *cobra.Command, t models.Task) {
	mark := " "
	if t.IsCompleted {
		mark = "x"
	}
	cmd.Printf("[%s] %d  %s\n", mark, t.ID, t.Title)
	if t.Description != nil && *t.Description != "" {
		cmd.Printf("        %s\n", *t.Description)
	}
}
