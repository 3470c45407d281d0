package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/geo-scorer/internal/extract"
	"github.com/jonathan/geo-scorer/internal/ingestion"
	"github.com/jonathan/geo-scorer/internal/llm"
	"github.com/jonathan/geo-scorer/internal/observability"
	"github.com/jonathan/geo-scorer/internal/pipeline"
	"github.com/jonathan/geo-scorer/internal/types"
)

const corpusEmbedRunes = 8000

var (
	scoreInput     inputFlags
	scoreBenchmark bool
	scoreSuggest   bool
	scoreSkipCache bool
	scoreCorpusDir string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Produce a full AI visibility report",
	Long:  `Scores content across every pillar the tier includes and prints the grade,
the per-pillar breakdown and prioritized recommendations.

With --benchmark and --corpus-dir, the files in the directory are embedded as a
comparison corpus; with --suggest, Gemini proposes concrete edits for the weakest
pillars. Both need GEMINI_API_KEY.`,
	Example: `  geo_scorer score --file page.html --url https://example.com/guide --tier pro
  geo_scorer score --url https://example.com/guide --json
  geo_scorer score -f draft.md --tier agency --benchmark --corpus-dir ./competitors`,
	RunE: runScore,
}

func init() {
	scoreInput.register(scoreCmd, true)
	scoreCmd.Flags().BoolVar(&scoreBenchmark, "benchmark", false, "Compare against the corpus in --corpus-dir")
	scoreCmd.Flags().BoolVar(&scoreSuggest, "suggest", false, "Ask the LLM for suggested edits")
	scoreCmd.Flags().BoolVar(&scoreSkipCache, "skip-cache", false, "Ignore cached reports")
	scoreCmd.Flags().StringVar(&scoreCorpusDir, "corpus-dir", "", "Directory of html, markdown or text files forming the benchmark corpus")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scoreInput.apply(cmd, cfg)
	if scoreBenchmark && scoreCorpusDir == "" {
		return fmt.Errorf("--benchmark requires --corpus-dir")
	}
	if scoreCorpusDir != "" && cfg.CorpusID == "" {
		cfg.CorpusID = filepath.Base(filepath.Clean(scoreCorpusDir))
	}

	req, err := scoreInput.request(cfg, cmd.InOrStdin())
	if err != nil {
		return err
	}
	req.Benchmark = scoreBenchmark
	req.Suggest = scoreSuggest
	req.SkipCache = scoreSkipCache

	a, err := newApp(ctx, cfg, appOptions{needLLM: scoreBenchmark || scoreSuggest})
	if err != nil {
		return err
	}
	defer a.Close()

	if scoreBenchmark {
		n, err := indexCorpus(ctx, a, cfg.CorpusID, scoreCorpusDir, req.Tier)
		if err != nil {
			return err
		}
		a.logger.Info("indexed benchmark corpus", "corpus_id", cfg.CorpusID, "documents", n)
	}

	if cfg.Verbose {
		req.OnProgress = func(e pipeline.ProgressEvent) {
			fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", e.Step, e.Message)
		}
	}
	res, err := a.runner.Run(ctx, *req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if scoreInput.jsonOut {
		return printJSON(out, res)
	}
	printer := observability.NewPrinter(out)
	printer.PrintReport(res.Report)
	printer.PrintRecommendations(res.Report.Recommendations)
	printer.PrintBenchmark(res.Benchmark)
	printer.PrintSuggestions(res.Suggestions)
	if res.Cached {
		fmt.Fprintf(out, "(cached report %s)\n", res.Fingerprint)
	}
	return nil
}

// indexCorpus scores and embeds every readable file in dir.
func indexCorpus(ctx context.Context, a *app, corpusID, dir string, tier types.Tier) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read corpus directory: %w", err)
	}
	engine := a.runner.Engine()
	indexed := 0
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		src, err := ingestion.FromFile(path, "")
		if err != nil {
			a.logger.Warn("skipping corpus file", "path", path, "error", err)
			continue
		}
		report, err := engine.Score(ctx, src.Content, nil, tier)
		if err != nil {
			return indexed, err
		}
		// Embed the same parsed text the benchmarker embeds for the scored page.
		text := llm.Truncate(extract.Parse(src.Content).Text, corpusEmbedRunes)
		if err := a.index.AddText(ctx, corpusID, path, text, report); err != nil {
			return indexed, err
		}
		indexed++
	}
	if indexed == 0 {
		return 0, fmt.Errorf("no readable documents in %s", dir)
	}
	return indexed, nil
}
