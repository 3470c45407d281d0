package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/geo-scorer/internal/crawling"
	"github.com/jonathan/geo-scorer/internal/fetch"
	"github.com/jonathan/geo-scorer/internal/observability"
	"github.com/jonathan/geo-scorer/internal/pillars"
	"github.com/jonathan/geo-scorer/internal/types"
)

var (
	auditTier        string
	auditEntity      string
	auditMaxPages    int
	auditConcurrency int
	auditRPS         float64
	auditClassifyLLM bool
	auditJSON        bool
)

var auditCmd = &cobra.Command{
	Use:   "audit <url>",
	Short: "Quick-score a sample of pages across a site",
	Long: `Fetches the seed URL, discovers same-site links, picks a mix of page kinds
(articles, docs, FAQ, product, about) and quick-scores each page. Prints the
site average and the pillars that are weakest across the sample.`,
	Example: `  geo_scorer audit https://example.com --max-pages 8
  geo_scorer audit https://example.com --classify-llm --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().StringVarP(&auditTier, "tier", "t", "", "Tier: free, pro or agency (defaults to the config tier)")
	auditCmd.Flags().StringVar(&auditEntity, "entity", "", "Entity name the site is about")
	auditCmd.Flags().IntVar(&auditMaxPages, "max-pages", crawling.DefaultMaxPages, "Maximum pages to score, seed included")
	auditCmd.Flags().IntVar(&auditConcurrency, "concurrency", crawling.DefaultConcurrency, "Pages scored in parallel")
	auditCmd.Flags().Float64Var(&auditRPS, "rps", crawling.DefaultRequestsPerSecond, "Page fetches per second")
	auditCmd.Flags().BoolVar(&auditClassifyLLM, "classify-llm", false, "Classify discovered pages with the LLM (requires GEMINI_API_KEY)")
	auditCmd.Flags().BoolVar(&auditJSON, "json", false, "Print JSON instead of formatted boxes")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	seed := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("tier") {
		cfg.Tier = auditTier
	}
	if cmd.Flags().Changed("entity") {
		cfg.Entity = auditEntity
	}
	tier, err := cfg.ParsedTier()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, appOptions{needLLM: auditClassifyLLM})
	if err != nil {
		return err
	}
	defer a.Close()

	engine := a.runner.Engine()
	score := func(ctx context.Context, url, content string) (*types.QuickScore, error) {
		pc := &pillars.Context{URL: url, Entity: cfg.Entity}
		return engine.QuickScore(ctx, content, pc, tier)
	}
	fetchPage := func(ctx context.Context, url string) (string, error) {
		res, err := fetch.URL(ctx, url, a.fetch)
		if err != nil {
			return "", err
		}
		return res.Body, nil
	}

	audit, err := crawling.Audit(ctx, seed, score, &crawling.Options{
		MaxPages:          auditMaxPages,
		Concurrency:       auditConcurrency,
		RequestsPerSecond: auditRPS,
		Fetch:             fetchPage,
		Classifier:        a.llm,
		Logger:            a.logger,
	})
	if err != nil {
		return err
	}

	if auditJSON {
		return printJSON(cmd.OutOrStdout(), audit)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintAudit(audit)
	return nil
}
