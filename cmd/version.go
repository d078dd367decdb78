package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brainora/brainora/internal/config"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and configuration",
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(*cobra.Command, []string) error {
	fmt.Printf("Brainora %s\n", AppVersion)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	fmt.Println("Configuration:")
	fmt.Printf("  Pro model: %s\n", cfg.ProModel)
	fmt.Printf("  Flash model: %s\n", cfg.FlashModel)
	fmt.Printf("  Image model: %s\n", cfg.ImageModel)
	fmt.Printf("  Temperature: %.2f\n", cfg.Temperature)
	fmt.Printf("  Data dir: %s\n", cfg.DataDir)

	if key := cfg.GeminiAPIKey; len(key) >= 8 {
		fmt.Printf("  API key: %s...%s (configured)\n", key[:4], key[len(key)-4:])
	} else if key != "" {
		fmt.Println("  API key: configured")
	} else {
		fmt.Println("  API key: not set")
		fmt.Println()
		fmt.Println("Hint: export BRAINORA_GEMINI_API_KEY=your-api-key")
	}
	return nil
}
