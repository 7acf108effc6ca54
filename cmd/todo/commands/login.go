package commands

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/benvon/smart-todo-cli/internal/oidc"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string
	var sso bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the Smart Todo backend",
		Long:  "Authenticate with email/password, or with --sso through the configured OIDC provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if sso {
				return ssoLogin(cmd, app)
			}

			if email == "" {
				email = prompt(cmd, "Email: ")
			}
			if password == "" {
				password = prompt(cmd, "Password: ")
			}

			if err := app.Session.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			user := app.Session.User()
			cmd.Printf("Logged in as %s\n", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email address")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted if omitted)")
	cmd.Flags().BoolVar(&sso, "sso", false, "log in through the configured OIDC provider")
	return cmd
}

// ssoLogin walks the user through the authorization-code flow and hands the
// resulting token to the session store.
func ssoLogin(cmd *cobra.Command, app *App) error {
	if !app.Config.HasOIDC() {
		return errors.New("SSO is not configured (set OIDC_ISSUER and OIDC_CLIENT_ID)")
	}

	client := oidc.NewClient(
		app.Config.OIDCIssuer,
		app.Config.OIDCClientID,
		app.Config.OIDCClientSecret,
		app.Config.OIDCRedirectURI,
	)

	state := uuid.NewString()
	cmd.Printf("Open this URL in your browser and authorize access:\n\n  %s\n\n", client.AuthCodeURL(state))
	code := prompt(cmd, "Paste the authorization code: ")
	if code == "" {
		return errors.New("no authorization code provided")
	}

	token, err := client.ExchangeCode(cmd.Context(), code)
	if err != nil {
		return err
	}

	app.Session.LoginWithToken(token, nil)
	if !app.Session.IsAuthenticated() {
		return errors.New("login failed: token was rejected")
	}
	user := app.Session.User()
	cmd.Printf("Logged in as %s\n", displayName(user.Email, user.ID))
	return nil
}

func prompt(cmd *cobra.Command, label string) string {
	fmt.Fprint(cmd.OutOrStdout(), label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func displayName(email, fallback string) string {
	if email != "" {
		return email
	}
	return fallback
}
