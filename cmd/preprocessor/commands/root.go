// Package commands implements the preprocessor CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/openmaine/budget-preprocessor/internal/pipeline"
)

var (
	cfgFile string
	verbose bool
	noColor bool

	budgetOnly    bool
	revenueOnly   bool
	positionsOnly bool
	validateOnly  bool
)

var rootCmd = &cobra.Command{
	Use:   "preprocessor",
	Short: "Convert state budget PDFs into validated structured artifacts",
	Long: `The preprocessor reads biennial budget, revenue forecast, and position
count PDFs, parses their tables, validates the results against aggregates
re-derived from the source documents, and writes Parquet and JSON artifacts
for the downstream dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPipeline,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.Flags().BoolVar(&budgetOnly, "budget-pdfs", false, "process budget PDFs only")
	rootCmd.Flags().BoolVar(&revenueOnly, "revenue-pdfs", false, "process revenue PDFs only")
	rootCmd.Flags().BoolVar(&positionsOnly, "positions", false, "process position count PDFs only")
	rootCmd.Flags().BoolVar(&validateOnly, "validate", false, "validate existing artifacts without writing")
	rootCmd.MarkFlagsMutuallyExclusive("budget-pdfs", "revenue-pdfs", "positions", "validate")
}

func selectedMode() pipeline.Mode {
	switch {
	case budgetOnly:
		return pipeline.ModeBudget
	case revenueOnly:
		return pipeline.ModeRevenue
	case positionsOnly:
		return pipeline.ModePositions
	case validateOnly:
		return pipeline.ModeValidateOnly
	default:
		return pipeline.ModeAll
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
