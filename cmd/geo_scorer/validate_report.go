package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/geo-scorer/internal/schemas"
)

var (
	validateFile  string
	validateQuick bool
)

var validateReportCmd = &cobra.Command{
	Use:   "validate-report",
	Short: "Validate a report JSON file against the embedded schema",
	Example: `  geo_scorer score -f page.html --json | jq .report > report.json
  geo_scorer validate-report --file report.json`,
	RunE: runValidateReport,
}

func init() {
	validateReportCmd.Flags().StringVarP(&validateFile, "file", "f", "", "Path to the JSON document")
	validateReportCmd.Flags().BoolVar(&validateQuick, "quick", false, "Validate a quick score instead of a full report")
	_ = validateReportCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(validateReportCmd)
}

func runValidateReport(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(validateFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", validateFile, err)
	}

	if validateQuick {
		err = schemas.ValidateQuickScore(data)
	} else {
		err = schemas.ValidateReport(data)
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Validation passed")
	return nil
}
