package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jinbangyi/apikey-usage-inspector/internal/adapter"
	"github.com/jinbangyi/apikey-usage-inspector/internal/config"
	"github.com/jinbangyi/apikey-usage-inspector/internal/emit"
	"github.com/jinbangyi/apikey-usage-inspector/internal/httpx"
	"github.com/jinbangyi/apikey-usage-inspector/internal/inspect"
	"github.com/jinbangyi/apikey-usage-inspector/internal/provider"
	"github.com/jinbangyi/apikey-usage-inspector/internal/session"
)

var (
	cfgFile string
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "usage-inspector",
		Short: "API Key Usage Inspector",
		Long:  `Polls usage/quota statistics from configured API providers and pushes them to a Prometheus Pushgateway.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspectCmd.RunE(cmd, args)
		},
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/usage-inspector/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(validateCmd)

	rootCmd.Flags().BoolP("json", "j", false, "Output the batch as JSON")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

type runtime struct {
	cfg          *config.Config
	store        *config.Store
	orchestrator *inspect.Orchestrator
	emitter      *emit.Emitter
	log          *slog.Logger
}

func setup() (*runtime, error) {
	log := newLogger()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := config.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build credential store: %w", err)
	}

	httpc := httpx.New(httpx.Options{
		DNSOverride: cfg.Settings.DNSOverride,
		Relay:       cfg.Settings.Relay,
		Timeout:     cfg.Settings.Timeout,
	})

	sessions := session.NewManager(log)
	registry := provider.NewRegistry()
	solver := session.NewHTTPSolver(cfg.Settings.Captcha.Endpoint, httpc)
	adapter.RegisterAll(registry, sessions, httpc, solver)

	return &runtime{
		cfg:          cfg,
		store:        store,
		orchestrator: inspect.New(store, sessions, registry, cfg.Settings.Concurrency, log),
		emitter:      emit.New(cfg.Settings.Push.URL, cfg.Settings.Push.Job, cfg.Settings.Push.Enabled, log),
		log:          log,
	}, nil
}
