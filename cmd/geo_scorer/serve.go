package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/geo-scorer/internal/config"
	"github.com/jonathan/geo-scorer/internal/server"
	"github.com/jonathan/geo-scorer/internal/server/ratelimit"
)

var (
	serveAddr    string
	serveEnhance bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scoring REST API server",
	Long:  `Starts an HTTP server exposing /score, /score/stream, /score/quick,
/score/partial, /pillars, /reports/{fingerprint} and /health.

Callers are Free tier unless they present a bearer token signed with JWT_SECRET
or an X-API-Key listed under server.api_keys (or GEO_API_KEYS_FILE).`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (default :8080)")
	serveCmd.Flags().BoolVar(&serveEnhance, "enhance", false, "Enable LLM suggestions (requires GEMINI_API_KEY)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{needLLM: serveEnhance})
	if err != nil {
		return err
	}
	defer a.Close()

	opts := server.Options{
		Addr:         cfg.Server.Addr,
		Runner:       a.runner,
		Limiter:      ratelimit.NewLimiter(ratelimit.LoadConfig().WithScoreLimit(cfg.Server.RequestsPerMinute, cfg.Server.Burst)),
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Logger:       a.logger,
	}
	if a.db != nil {
		opts.Reports = a.db
		opts.Health = a.db
	}

	if os.Getenv("JWT_SECRET") != "" {
		jwtCfg, err := config.NewJWTConfig()
		if err != nil {
			return fmt.Errorf("failed to create JWT config: %w", err)
		}
		opts.Tokens = server.NewJWTService(jwtCfg).AsTokenValidator()
	}
	if len(cfg.Server.APIKeys) > 0 {
		passwords, err := config.NewPasswordConfig()
		if err != nil {
			return fmt.Errorf("failed to create password config: %w", err)
		}
		opts.Keys = server.NewAPIKeyResolver(passwords, cfg.Server.APIKeys)
	}
	a.logger.Info("entitlement", "jwt", opts.Tokens != nil, "api_keys", opts.Keys != nil, "report_cache", a.db != nil)

	srv, err := server.New(opts)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(ctx)
}

