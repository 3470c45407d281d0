package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/geo-scorer/internal/observability"
)

var quickInput inputFlags

var quickCmd = &cobra.Command{
	Use:   "quick",
	Short: "Print the score, grade and per-pillar points without recommendations",
	Example: `  geo_scorer quick --file page.html
  cat page.md | geo_scorer quick -f - --tier pro --json`,
	RunE: runQuick,
}

func init() {
	quickInput.register(quickCmd, true)
	rootCmd.AddCommand(quickCmd)
}

func runQuick(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	quickInput.apply(cmd, cfg)
	req, err := quickInput.request(cfg, cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	content, pc, err := resolve(ctx, a, req)
	if err != nil {
		return err
	}
	quick, err := a.runner.Engine().QuickScore(ctx, content, pc, req.Tier)
	if err != nil {
		return err
	}

	if quickInput.jsonOut {
		return printJSON(cmd.OutOrStdout(), quick)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintQuickScore(quick)
	return nil
}
