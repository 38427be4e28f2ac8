package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/larachristiea/bumerangue/internal/config"
	"github.com/larachristiea/bumerangue/internal/logger"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "bumerangue",
	Short: "Recover overpaid PIS/COFINS from NFe sales records",
	Long: `Bumerangue estimates the PIS/COFINS credit a Simples Nacional
retailer can recover for a filing period.

It parses a directory of NFe XML documents, applies cancellation
events, classifies each line item as single-phase or regular, and nets
the declared contributions against what was actually due on the
regular revenue. The resulting credit is restated to a target period
with the monthly SELIC index.

Examples:
  # Process a period's XML directory
  bumerangue process ./xml/2024-01 --period 2024-01 --target 2025-06

  # Print the rate bracket table
  bumerangue tables

  # Start the HTTP API
  bumerangue serve --address :8080`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, table)")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	loaded, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}
	cfg = loaded

	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := logger.Setup(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: logger setup failed: %v\n", err)
		os.Exit(1)
	}
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
