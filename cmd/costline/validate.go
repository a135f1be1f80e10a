package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"costline-hq/costline/pkg/cli"
	"costline-hq/costline/pkg/config"
	"costline-hq/costline/pkg/pricing"
)

var validateFlags struct {
	format string
}

// validationResult summarizes a configuration check for output.
type validationResult struct {
	ConfigFile   string   `json:"configFile"`
	Valid        bool     `json:"valid"`
	Errors       []string `json:"errors,omitempty"`
	RulesPath    string   `json:"rulesPath,omitempty"`
	PricingRules int      `json:"pricingRules"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and pricing rules",
	Long: `Validate the configuration file and the pricing rules it references
without starting the server.

The command loads the config, applies defaults and environment overrides,
runs all validation checks, and parses the pricing rules file. All
problems are reported at once rather than stopping at the first.

Examples:
  # Validate the default config
  costline validate

  # Validate a specific config file
  costline validate --config /etc/costline/config.yaml

  # Machine-readable output
  costline validate --format json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	result := validationResult{ConfigFile: cfgFile, Valid: true}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Errors {
				result.Errors = append(result.Errors, fe.Error())
			}
		} else {
			result.Errors = append(result.Errors, err.Error())
		}
		result.Valid = false
	}

	if cfg != nil {
		result.RulesPath = cfg.Pricing.RulesPath
		reg, err := pricing.LoadFile(cfg.Pricing.RulesPath)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("pricing rules: %v", err))
			result.Valid = false
		} else {
			result.PricingRules = reg.Len()
		}
	}

	if validateFlags.format == string(cli.FormatJSON) {
		formatter := cli.NewFormatter(cli.FormatJSON)
		if err := formatter.FormatTo(os.Stdout, result); err != nil {
			return cli.NewCommandError("validate", err)
		}
	} else {
		printValidationResult(result)
	}

	if !result.Valid {
		return cli.NewCommandError("validate", fmt.Errorf("%d problem(s) found", len(result.Errors)))
	}
	return nil
}

func printValidationResult(result validationResult) {
	fmt.Printf("Config file: %s\n", result.ConfigFile)
	if result.Valid {
		fmt.Println("✓ Configuration valid")
		fmt.Printf("✓ Pricing rules loaded (%d rules from %s)\n", result.PricingRules, result.RulesPath)
		return
	}
	fmt.Println("✗ Validation failed:")
	for _, msg := range result.Errors {
		fmt.Printf("  - %s\n", msg)
	}
}
