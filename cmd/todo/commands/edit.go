package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewEditCmd creates the edit command
func NewEditCmd() *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			if title == "" {
				return errors.New("--title is required")
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
			if err := app.Tasks.Edit(cmd.Context(), id, title, description); err != nil {
				return err
			}
			cmd.Printf("Task %d updated\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new task title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new task description")
	return cmd
}
