package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewDoneCmd creates the done command
func NewDoneCmd() *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as completed (or not, with --undo)",
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
			if err := app.Tasks.Toggle(cmd.Context(), id, !undo); err != nil {
				return err
			}
			if undo {
				cmd.Printf("Task %d marked as not completed\n", id)
			} else {
				cmd.Printf("Task %d completed\n", id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "mark the task as not completed")
	return cmd
}
