package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/polyglotlabs/polyglot/internal/config"
)

// Version information (injected at build time via ldflags)
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and configuration information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion() error {
	fmt.Printf("PolyGlot %s\n", AppVersion)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Println("Configuration:")
	fmt.Printf("  Model: %s\n", cfg.ModelName)
	fmt.Printf("  Temperature: %.2f\n", cfg.Temperature)
	fmt.Printf("  Theme: %s\n", cfg.Theme)
	fmt.Printf("  History limit: %d\n", cfg.MaxHistoryMessages)
	if cfg.Recorder != "" {
		fmt.Printf("  Recorder: %s\n", cfg.Recorder)
	}

	// Never print the key itself.
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		fmt.Printf("  GEMINI_API_KEY: %s (configured)\n", maskKey(key))
	} else {
		fmt.Println("  GEMINI_API_KEY: Not set")
		fmt.Println()
		fmt.Println("Hint: set the GEMINI_API_KEY environment variable")
		fmt.Println("  export GEMINI_API_KEY=your-api-key")
	}

	return nil
}

// maskKey keeps the first and last four characters of a credential visible.
// Short keys are fully masked.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
