package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dense-analysis/pie/pkg/config"
	"github.com/dense-analysis/pie/pkg/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pie",
	Short: "Find probable duplicate issues across issue trackers",
	Long: `pie ingests issues, comments and lifecycle events from issue trackers,
embeds their text into vectors and reports pairs of open issues whose titles
and descriptions are close enough to be probable duplicates.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")

		var err error
		cfg, err = config.Load(path, Version)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = logging.NewLogger(cfg.Env, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		logger.Debug("Configuration loaded",
			zap.String("env", cfg.Env),
			zap.String("version", cfg.Version),
			zap.String("database", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)),
			zap.String("embedding_url", cfg.Embedding.BaseURL),
			zap.String("embedding_model", cfg.Embedding.Model),
			zap.Int("repos", len(cfg.GitHub.Repos)))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the configuration file (YAML, TOML or JSON)")
	rootCmd.Version = Version
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
