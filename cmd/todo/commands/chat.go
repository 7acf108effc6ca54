package commands

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benvon/smart-todo-cli/internal/chat"
	"github.com/benvon/smart-todo-cli/internal/events"
	"github.com/benvon/smart-todo-cli/internal/models"
)

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	var interactive, startNew bool

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the AI assistant",
		Long:  "Send a message to the assistant, or open an interactive session with -i. The assistant can manage your tasks; the local task list refreshes automatically when it does.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if _, err := app.RequireUser(); err != nil {
				return err
			}

			if startNew {
				app.Chat.StartNewConversation()
				cmd.Println("Started a new conversation")
			}

			// The task list view refetches whenever the assistant's tool
			// calls mutate tasks.
			unsubscribe := app.Bus.Subscribe(func(ev events.TaskInvalidation) {
				cmd.Printf("(%s changed your tasks, refreshing list)\n", chat.FormatToolName(ev.ToolName))
				if err := app.Tasks.Fetch(cmd.Context()); err != nil {
					cmd.PrintErrf("failed to refresh tasks: %v\n", err)
				}
			})
			defer unsubscribe()

			if interactive {
				return chatLoop(cmd, app)
			}

			if len(args) == 0 {
				return errors.New("provide a message, or use -i for an interactive session")
			}
			return sendAndPrint(cmd, app, strings.Join(args, " "))
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "interactive chat session")
	cmd.Flags().BoolVar(&startNew, "new", false, "start a new conversation first")
	return cmd
}

func chatLoop(cmd *cobra.Command, app *App) error {
	cmd.Println("Interactive chat. Type 'exit' to quit, '/new' to start over.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "/new":
			app.Chat.StartNewConversation()
			cmd.Println("Started a new conversation")
			continue
		}
		if err := sendAndPrint(cmd, app, line); err != nil {
			cmd.PrintErrf("error: %v\n", err)
		}
	}
}

func sendAndPrint(cmd *cobra.Command, app *App, message string) error {
	if err := app.Chat.SendMessage(cmd.Context(), message); err != nil {
		return err
	}

	messages := app.Chat.Messages()
	if len(messages) == 0 {
		return nil
	}
	last := messages[len(messages)-1]
	if last.Role != models.MessageRoleAssistant {
		return nil
	}
	for _, tc := range last.ToolCalls {
		cmd.Printf("  [%s]\n", chat.FormatToolName(tc.ToolName))
	}
	cmd.Println(last.Content)
	return nil
}
