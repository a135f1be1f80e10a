package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "costline",
	Short: "Costline - webhook-driven construction cost estimator",
	Long: `Costline is a cost estimation service for construction takeoffs.

It reconciles priced estimates against a takeoff service: every change
notification triggers a full-state pull of the affected page, a
hierarchical cost aggregation against the current pricing rules, and an
atomic publish of the fresh estimate.

The service provides:
  - A webhook endpoint for takeoff change notifications
  - Per-page trigger coalescing so redundant runs never pile up
  - Attachment-aware quantity aggregation with exact decimal pricing
  - Hot-reloaded pricing rules and Prometheus metrics`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
