package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/geo-scorer/internal/observability"
	"github.com/jonathan/geo-scorer/internal/types"
)

var (
	partialInput   inputFlags
	partialPillars []string
)

var partialCmd = &cobra.Command{
	Use:   "partial",
	Short: "Score a chosen subset of pillars",
	Long: `Scores only the named pillars, regardless of tier. Unknown pillar keys are an
error; run "geo_scorer pillars" for the list.`,
	Example: `  geo_scorer partial --file page.html --pillars structure,readability
  geo_scorer partial --url https://example.com --pillars bot_access --json`,
	RunE: runPartial,
}

func init() {
	partialInput.register(partialCmd, false)
	partialCmd.Flags().StringSliceVarP(&partialPillars, "pillars", "p", nil, "Comma-separated pillar keys")
	_ = partialCmd.MarkFlagRequired("pillars")
	rootCmd.AddCommand(partialCmd)
}

func parsePillarKeys(raw []string) ([]types.PillarKey, error) {
	keys := make([]types.PillarKey, 0, len(raw))
	for _, r := range raw {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		keys = append(keys, types.PillarKey(r))
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("at least one pillar key is required")
	}
	return keys, nil
}

func runPartial(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	keys, err := parsePillarKeys(partialPillars)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	partialInput.apply(cmd, cfg)
	req, err := partialInput.request(cfg, cmd.InOrStdin())
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
	reports, err := a.runner.Engine().ScorePartial(ctx, content, keys, pc)
	if err != nil {
		return err
	}

	if partialInput.jsonOut {
		return printJSON(cmd.OutOrStdout(), types.PartialScoreResponse{Pillars: reports})
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintPartial(reports)
	return nil
}
