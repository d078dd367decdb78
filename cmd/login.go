package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brainora/brainora/internal/session"
)

var (
	loginName  string
	loginEmail string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in so conversations persist across runs",
	Long: `Sign in with a display name and email.

Conversations are only written to disk while signed in. Signing out
removes the stored profile and all saved conversations.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginName, "name", "", "display name")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "email address")
	_ = loginCmd.MarkFlagRequired("name")
	_ = loginCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(ctx) }()

	if err := a.Store.SignIn(session.User{Name: loginName, Email: loginEmail}); err != nil {
		return fmt.Errorf("signing in: %w", err)
	}

	fmt.Printf("Signed in as %s <%s>. Conversations will now persist.\n", loginName, loginEmail)
	return nil
}
