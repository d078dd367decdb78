package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove stored conversations",
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(ctx) }()

	if _, ok := a.Store.User(); !ok {
		fmt.Println("Not signed in.")
		return nil
	}

	if err := a.Store.SignOut(); err != nil {
		return fmt.Errorf("signing out: %w", err)
	}

	fmt.Println("Signed out. Stored profile and conversations removed.")
	return nil
}
