package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/benvon/smart-todo-cli/cmd/todo/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "todo",
		Short: "Command-line client for the Smart Todo API",
		Long:  "Manage your todo list and talk to the AI assistant from the terminal",
	}

	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewRegisterCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewAddCmd())
	rootCmd.AddCommand(commands.NewDoneCmd())
	rootCmd.AddCommand(commands.NewEditCmd())
	rootCmd.AddCommand(commands.NewRemoveCmd())
	rootCmd.AddCommand(commands.NewChatCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
