// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/competitor-radar/internal/ai"
	"github.com/JakeFAU/competitor-radar/internal/analyzer"
	"github.com/JakeFAU/competitor-radar/internal/clock/system"
	"github.com/JakeFAU/competitor-radar/internal/config"
	"github.com/JakeFAU/competitor-radar/internal/delivery"
	"github.com/JakeFAU/competitor-radar/internal/extractor"
	collyfetcher "github.com/JakeFAU/competitor-radar/internal/fetcher/colly"
	"github.com/JakeFAU/competitor-radar/internal/id/uuid"
	"github.com/JakeFAU/competitor-radar/internal/logging"
	"github.com/JakeFAU/competitor-radar/internal/pipeline"
	"github.com/JakeFAU/competitor-radar/internal/publisher"
	"github.com/JakeFAU/competitor-radar/internal/radar"
	"github.com/JakeFAU/competitor-radar/internal/storage"
	"github.com/JakeFAU/competitor-radar/internal/storage/memory"
	"github.com/JakeFAU/competitor-radar/internal/synthesizer"
	"github.com/JakeFAU/competitor-radar/internal/telemetry"
)

// App holds the shared, long-lived services: the pipeline, the report
// cache and the hand-off chain. It is built once at startup and closed on exit.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	pipeline  *pipeline.Pipeline
	deliverer *delivery.Deliverer
	reports   *memory.ReportStore
	closers   []func() error
}

// Option overrides a service that NewApp would otherwise build from config.
type Option func(*overrides)

type overrides struct {
	fetcher radar.Fetcher
	client  ai.Client
	clock   radar.Clock
}

// WithFetcher replaces the colly fetcher.
func WithFetcher(f radar.Fetcher) Option {
	return func(o *overrides) { o.fetcher = f }
}

// WithAIClient replaces the OpenAI client.
func WithAIClient(c ai.Client) Option {
	return func(o *overrides) { o.client = c }
}

// WithClock replaces the system clock.
func WithClock(c radar.Clock) Option {
	return func(o *overrides) { o.clock = c }
}

// NewApp wires every service from cfg. It fails fast if a configured backend
// cannot be initialized, releasing anything already opened.
func NewApp(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	logger = logging.OrNop(logger)
	var o overrides
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{cfg: cfg, logger: logger}

	tp, err := telemetry.InitTracerProvider(ctx, telemetry.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.closers = append(a.closers, func() error { return tp.Shutdown(context.Background()) })

	logger.Info("initializing application services",
		zap.String("model", cfg.AI.Model),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.String("pubsub_backend", cfg.PubSub.Backend),
	)

	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = collyfetcher.New(collyfetcher.Config{
			UserAgent: cfg.Fetcher.UserAgent,
			Timeout:   cfg.FetchTimeout(),
		})
	}

	client := o.client
	if client == nil {
		openaiClient, err := ai.New(ai.Config{
			APIKey:         cfg.AI.APIKey,
			BaseURL:        cfg.AI.BaseURL,
			Model:          cfg.AI.Model,
			MaxRetries:     cfg.AI.MaxRetries,
			RequestTimeout: cfg.AIRequestTimeout(),
		}, logger)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("init ai client: %w", err)
		}
		client = openaiClient
	}

	clock := o.clock
	if clock == nil {
		clock = system.New()
	}

	p, err := pipeline.New(pipeline.Deps{
		Fetcher:     fetcher,
		Extractor:   extractor.New(),
		Analyzer:    analyzer.New(client, logger),
		Synthesizer: synthesizer.New(client, logger),
		Clock:       clock,
		IDs:         uuid.NewUUIDGenerator(),
		Tracing:     tp,
	}, logger)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("init pipeline: %w", err)
	}
	a.pipeline = p

	a.reports, err = memory.NewReportStore(cfg.Reports.CacheSize)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("init report cache: %w", err)
	}

	archive, closeArchive, err := storage.NewArchive(ctx, cfg.Storage)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("init report archive: %w", err)
	}
	a.closers = append(a.closers, closeArchive)

	pub, closePublisher, err := publisher.New(ctx, cfg.PubSub)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("init publisher: %w", err)
	}
	a.closers = append(a.closers, closePublisher)

	a.deliverer = delivery.New(a.reports, archive, pub, delivery.Config{
		Prefix:      cfg.Storage.Prefix,
		ContentType: cfg.Storage.ContentType,
		Topic:       cfg.PubSub.TopicName,
	}, logger)

	logger.Info("application services initialized")
	return a, nil
}

// GetLogger returns the shared zap logger.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetConfig returns the configuration the App was built from.
func (a *App) GetConfig() config.Config {
	return a.cfg
}

// GetPipeline returns the scan pipeline.
func (a *App) GetPipeline() *pipeline.Pipeline {
	return a.pipeline
}

// GetDeliverer returns the report hand-off chain.
func (a *App) GetDeliverer() *delivery.Deliverer {
	return a.deliverer
}

// GetReports returns the in-process report cache.
func (a *App) GetReports() *memory.ReportStore {
	return a.reports
}

// Close releases backend clients. It is safe to call more than once.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("error closing application services", zap.Error(err))
		return err
	}
	return nil
}
