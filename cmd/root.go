// Package cmd defines and implements the CLI commands for the radar executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/competitor-radar/internal/app"
	"github.com/JakeFAU/competitor-radar/internal/config"
	"github.com/JakeFAU/competitor-radar/internal/delivery"
	"github.com/JakeFAU/competitor-radar/internal/logging"
	"github.com/JakeFAU/competitor-radar/internal/pipeline"
	"github.com/JakeFAU/competitor-radar/internal/storage/memory"
)

// appKeyType is the key for storing the App in the command context.
type appKeyType string

const appKey appKeyType = "app"

// App is the service container the commands use.
type App interface {
	Close() error
	GetLogger() *zap.Logger
	GetConfig() config.Config
	GetPipeline() *pipeline.Pipeline
	GetDeliverer() *delivery.Deliverer
	GetReports() *memory.ReportStore
}

// newApp is the application factory. Tests replace it to inject fakes.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (App, error) {
	return app.NewApp(ctx, cfg, logger)
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "radar",
		Short: "Competitive intelligence reports for small e-commerce sites.",
		Long: `radar scrapes your storefront and up to five competitors, compares them
with an LLM and produces a structured report with prioritized action items.
Run a one-off scan from the terminal or serve the HTTP API.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			appInstance, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				_ = logger.Sync()
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			appInstance, ok := cmd.Context().Value(appKey).(App)
			if !ok || appInstance == nil {
				return
			}
			_ = appInstance.Close()
			// Sync fails on stderr ttys; nothing useful to do about it.
			_ = appInstance.GetLogger().Sync()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, TOML or JSON)")
	cmd.AddCommand(newScanCmd(), newServeCmd())
	return cmd
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
