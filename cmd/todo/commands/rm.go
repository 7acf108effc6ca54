package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewRemoveCmd creates the rm command
func NewRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}

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
			if err := app.Tasks.Delete(cmd.Context(), id); err != nil {
				return err
			}
			cmd.Printf("Task %d deleted\n", id)
			return nil
		},
	}
}
