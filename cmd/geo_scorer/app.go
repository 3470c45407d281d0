package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/geo-scorer/internal/config"
	"github.com/jonathan/geo-scorer/internal/db"
	"github.com/jonathan/geo-scorer/internal/enhance"
	"github.com/jonathan/geo-scorer/internal/fetch"
	"github.com/jonathan/geo-scorer/internal/ingestion"
	"github.com/jonathan/geo-scorer/internal/llm"
	"github.com/jonathan/geo-scorer/internal/pillars"
	"github.com/jonathan/geo-scorer/internal/pipeline"
	"github.com/jonathan/geo-scorer/internal/scoring"
)

// loadConfig reads --config, then applies persistent flag overrides, the
// environment and defaults, in that order of precedence, and validates.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = databaseURL
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg = cfg.MergeWithDefaults(config.Default())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// app holds the collaborators shared by the commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *db.DB
	llm    llm.Client
	runner *pipeline.Runner
	index  *enhance.MemoryIndex
	fetch  *fetch.Options
}

type appOptions struct {
	// needLLM connects the Gemini client for suggestions and benchmarking.
	needLLM bool
}

func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	a := &app{cfg: cfg, logger: newLogger(cfg)}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		a.db = database
	}

	timeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	fetchOpts := fetch.DefaultOptions()
	fetchOpts.Timeout = timeout
	if cfg.UserAgent != "" {
		fetchOpts.UserAgent = cfg.UserAgent
	}
	a.fetch = fetchOpts
	cacheTTL := time.Duration(cfg.CacheTTLHours) * time.Hour

	var fetcher pillars.Fetcher = fetch.NewClient(fetchOpts)
	if a.db != nil {
		fetcher = fetch.NewCachedFetcher(a.db, fetcher, &fetch.CachedFetcherConfig{CacheTTL: cacheTTL, Logger: a.logger})
	}

	engine, err := scoring.NewEngine(pillars.Network{Fetcher: fetcher, Timeout: timeout, Logger: a.logger}, a.logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build scoring engine: %w", err)
	}

	runnerOpts := pipeline.Options{
		Engine:    engine,
		Load:      pipeline.URLLoader(&ingestion.URLOptions{Fetch: fetchOpts, UseBrowser: cfg.UseBrowser, Logger: a.logger}),
		ReportTTL: cacheTTL,
		Logger:    a.logger,
	}
	if a.db != nil {
		runnerOpts.Store = a.db
	}

	if opts.needLLM {
		if cfg.APIKey == "" {
			a.Close()
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable or api_key config is required for suggestions and benchmarking")
		}
		llmCfg := cfg.LLM
		if llmCfg == nil {
			llmCfg = llm.DefaultConfig()
		}
		client, err := llm.NewClient(ctx, llmCfg, cfg.APIKey)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		a.llm = client
		a.index = enhance.NewMemoryIndex(client)
		runnerOpts.Benchmarker = enhance.NewBenchmarker(a.index, enhance.DefaultNeighbors, a.logger)
		runnerOpts.Suggester = enhance.NewSuggester(client, enhance.SuggesterOptions{Logger: a.logger})
	}

	a.runner, err = pipeline.NewRunner(runnerOpts)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the database pool and LLM client.
func (a *app) Close() {
	if a.llm != nil {
		_ = a.llm.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
