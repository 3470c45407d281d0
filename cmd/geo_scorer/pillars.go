package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/geo-scorer/internal/observability"
	"github.com/jonathan/geo-scorer/internal/scoring"
)

var pillarsJSON bool

var pillarsCmd = &cobra.Command{
	Use:   "pillars",
	Short: "List the scoring pillars, optionally for one tier",
	Example: `  geo_scorer pillars
  geo_scorer pillars --tier pro`,
	RunE: runPillars,
}

func init() {
	pillarsCmd.Flags().StringP("tier", "t", "", "Only list pillars active for this tier")
	pillarsCmd.Flags().BoolVar(&pillarsJSON, "json", false, "Print JSON")
	rootCmd.AddCommand(pillarsCmd)
}

func runPillars(cmd *cobra.Command, _ []string) error {
	tier, err := tierFlag(cmd)
	if err != nil {
		return err
	}

	infos := scoring.Registry()
	if tier != "" {
		active := infos[:0]
		for _, info := range infos {
			if tier.Includes(info.Tier) {
				active = append(active, info)
			}
		}
		infos = active
	}

	if pillarsJSON {
		return printJSON(cmd.OutOrStdout(), infos)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintPillars(infos)
	return nil
}
