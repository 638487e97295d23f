// Package cli provides the command-line interface for scrapex.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/scrapex/scrapex/internal/config"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "scrapex",
	Short:   "Collect posts from X search and profile feeds",
	Long:    `scrapex drives a Chrome session through an X feed, collecting posts until a time limit, content exhaustion, or an operator abort, and writes one JSON file per run with duplicates filtered against prior runs.`,
	Version: "0.1.0",
}

// Execute runs the CLI. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	config.RegisterGlobalFlags(rootCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
