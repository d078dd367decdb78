package cmd

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/brainora/brainora/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(ctx) }()

	if err := a.ConnectGateway(ctx); err != nil {
		return err
	}

	feed := tui.NewChangeFeed()
	controller, err := a.NewController(feed.Notify)
	if err != nil {
		return err
	}

	ui, err := tui.New(ctx, controller, feed)
	if err != nil {
		return err
	}

	p := tea.NewProgram(ui, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running chat interface: %w", err)
	}
	return nil
}
