package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthWhoamiCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a session token",
		Long: `Store a session token issued by the identity provider. Copy the
__session cookie value from a signed-in browser session, or pass it with
--token. The token is checked against the server before it is saved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = promptSecret("Session token: ")
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return fmt.Errorf("no token provided")
			}

			apiClient.SetToken(token)
			access, err := apiClient.Access(context.Background())
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if access.Verdict == "unauthenticated" {
				return fmt.Errorf("login failed: token was not accepted")
			}

			viper.Set("auth.token", token)
			viper.Set("auth.user_id", access.UserID)
			if err := writeConfig(); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			fmt.Printf("Logged in as %s\n", access.UserID)
			if !access.Allowed() {
				fmt.Println("No active subscription. Run 'docbrief billing checkout' to subscribe.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "session token")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.Set("auth.token", "")
			viper.Set("auth.user_id", "")

			if err := writeConfig(); err != nil {
				return fmt.Errorf("failed to clear credentials: %w", err)
			}

			fmt.Println("Logged out successfully")
			return nil
		},
	}
}

func newAuthWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			access, err := apiClient.Access(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get user info: %w", err)
			}

			if getOutputFormat() != "text" {
				return printOutput(cmd.OutOrStdout(), access)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User:    %s\n", access.UserID)
			fmt.Fprintf(out, "Access:  %s\n", access.Verdict)
			return nil
		},
	}
}

func promptSecret(prompt string) string {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		var line string
		_, _ = fmt.Fscanln(os.Stdin, &line)
		return line
	}
	secret, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return ""
	}
	return string(secret)
}
