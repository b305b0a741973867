package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/savetree-1/docflow/internal/config"
	"github.com/savetree-1/docflow/internal/hardrules"
	"github.com/savetree-1/docflow/internal/workflow"
)

type options struct {
	configPath string
	logLevel   string
}

// offlineConfig is the subset of config.toml the CLI reads.
type offlineConfig struct {
	HardRulesPath  string                 `toml:"hard_rules_path"`
	Providers      config.ProvidersConfig `toml:"providers"`
	Classification workflow.Config        `toml:"classification"`
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "docflow",
		Short:        "Classify documents and test routing rules offline",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file with [providers] and [classification] tables")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newClassifyCmd(opts),
		newRulesCmd(opts),
	)

	return root
}

func (o *options) logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (o *options) load() (*offlineConfig, error) {
	cfg := &offlineConfig{}

	if o.configPath != "" {
		data, err := os.ReadFile(o.configPath)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Providers.Finalize(); err != nil {
		return nil, fmt.Errorf("providers: %w", err)
	}
	if err := cfg.Classification.Finalize(nil); err != nil {
		return nil, fmt.Errorf("classification: %w", err)
	}

	return cfg, nil
}

func loadHardRules(path string) (*hardrules.Matcher, error) {
	if path == "" {
		return hardrules.Default()
	}
	return hardrules.LoadFile(path)
}
