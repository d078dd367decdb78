// Package cmd contains the Brainora CLI commands.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brainora/brainora/internal/app"
	"github.com/brainora/brainora/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "brainora",
	Short: "Brainora, a conversational AI assistant for the terminal",
	Long: `Brainora is a terminal AI assistant on the Gemini API.

It streams answers as they generate, detects image requests and renders
them through the image model, grounds live-mode answers with Google
Search citations, and keeps your conversations on disk between runs.

Running brainora with no arguments starts the interactive chat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newApp loads configuration and builds the application container.
// Callers must Close the returned App.
func newApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return app.New(ctx, cfg)
}
