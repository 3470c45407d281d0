package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/geo-scorer/internal/config"
	"github.com/jonathan/geo-scorer/internal/ingestion"
	"github.com/jonathan/geo-scorer/internal/pillars"
	"github.com/jonathan/geo-scorer/internal/pipeline"
	"github.com/jonathan/geo-scorer/internal/types"
)

// inputFlags are the content and context flags shared by the scoring commands.
type inputFlags struct {
	file     string
	url      string
	format   string
	entity   string
	corpusID string
	tier     string
	jsonOut  bool
}

func (f *inputFlags) register(cmd *cobra.Command, withTier bool) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", `Path to the content to score ("-" reads stdin)`)
	cmd.Flags().StringVarP(&f.url, "url", "u", "", "Page URL; fetched when --file is not given, and used for robots.txt and llms.txt")
	cmd.Flags().StringVar(&f.format, "format", "", "Content format: html, markdown or text (auto-detected when empty)")
	cmd.Flags().StringVar(&f.entity, "entity", "", "Entity name the page is about")
	cmd.Flags().StringVar(&f.corpusID, "corpus", "", "Corpus identifier for benchmarking")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Print JSON instead of formatted boxes")
	if withTier {
		cmd.Flags().StringVarP(&f.tier, "tier", "t", "", "Tier: free, pro or agency (defaults to the config tier)")
	}
}

// apply folds file-config values under explicitly set flags.
func (f *inputFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.URL = f.url
	}
	if flags.Changed("entity") {
		cfg.Entity = f.entity
	}
	if flags.Changed("corpus") {
		cfg.CorpusID = f.corpusID
	}
	if flags.Lookup("tier") != nil && flags.Changed("tier") {
		cfg.Tier = f.tier
	}
}

// request builds a pipeline request. Content comes from --file when given;
// otherwise the runner loads cfg.URL.
func (f *inputFlags) request(cfg *config.Config, stdin io.Reader) (*pipeline.Request, error) {
	tier, err := cfg.ParsedTier()
	if err != nil {
		return nil, err
	}
	req := &pipeline.Request{
		URL:  cfg.URL,
		Tier: tier,
		Context: &pillars.Context{
			URL:      cfg.URL,
			Entity:   cfg.Entity,
			CorpusID: cfg.CorpusID,
		},
	}

	if f.file == "" {
		if cfg.URL == "" {
			return nil, fmt.Errorf("either --file or --url must be provided")
		}
		return req, nil
	}

	format, err := ingestion.ParseFormat(f.format)
	if err != nil {
		return nil, err
	}
	var src *ingestion.Source
	if f.file == "-" {
		src, err = ingestion.FromReader(stdin, format)
	} else {
		src, err = ingestion.FromFile(f.file, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	req.Content = src.Content
	return req, nil
}

// resolve loads the content for commands that bypass the runner's cache.
func resolve(ctx context.Context, a *app, req *pipeline.Request) (string, *pillars.Context, error) {
	content, pc, _, err := a.runner.Resolve(ctx, req)
	return content, pc, err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func tierFlag(cmd *cobra.Command) (types.Tier, error) {
	raw, err := cmd.Flags().GetString("tier")
	if err != nil || raw == "" {
		return "", err
	}
	return types.ParseTier(raw)
}
