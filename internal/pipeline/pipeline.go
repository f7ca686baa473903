package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/competitor-radar/internal/logging"
	"github.com/JakeFAU/competitor-radar/internal/metrics"
	"github.com/JakeFAU/competitor-radar/internal/radar"
)

// Run outcomes used as metric labels.
const (
	outcomeSuccess            = "success"
	outcomeInvalidRequest     = "invalid_request"
	outcomeSubjectUnavailable = "subject_unavailable"
	outcomeNoCompetitors      = "no_competitors"
	outcomeError              = "error"
)

const tracerName = "github.com/JakeFAU/competitor-radar/internal/pipeline"

// Deps bundles the collaborators of a Pipeline.
type Deps struct {
	Fetcher     radar.Fetcher
	Extractor   radar.Extractor
	Analyzer    radar.CompetitorAnalyzer
	Synthesizer radar.Synthesizer
	Clock       radar.Clock
	IDs         radar.IDGenerator
	// Tracing is optional; the global provider is used when nil.
	Tracing trace.TracerProvider
}

// Pipeline runs radar requests. It is safe for concurrent use as long as its
// dependencies are.
type Pipeline struct {
	fetcher     radar.Fetcher
	extractor   radar.Extractor
	analyzer    radar.CompetitorAnalyzer
	synthesizer radar.Synthesizer
	clock       radar.Clock
	ids         radar.IDGenerator
	tracer      trace.Tracer
	logger      *zap.Logger
}

// New validates deps and returns a Pipeline.
func New(deps Deps, logger *zap.Logger) (*Pipeline, error) {
	switch {
	case deps.Fetcher == nil:
		return nil, errors.New("pipeline: fetcher is required")
	case deps.Extractor == nil:
		return nil, errors.New("pipeline: extractor is required")
	case deps.Analyzer == nil:
		return nil, errors.New("pipeline: analyzer is required")
	case deps.Synthesizer == nil:
		return nil, errors.New("pipeline: synthesizer is required")
	case deps.Clock == nil:
		return nil, errors.New("pipeline: clock is required")
	case deps.IDs == nil:
		return nil, errors.New("pipeline: id generator is required")
	}
	tp := deps.Tracing
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Pipeline{
		fetcher:     deps.Fetcher,
		extractor:   deps.Extractor,
		analyzer:    deps.Analyzer,
		synthesizer: deps.Synthesizer,
		clock:       deps.Clock,
		ids:         deps.IDs,
		tracer:      tp.Tracer(tracerName),
		logger:      logging.OrNop(logger).Named("pipeline"),
	}, nil
}

// scrapeResult is one fetch+extract branch. Exactly one of the fields is set.
type scrapeResult struct {
	snapshot radar.Snapshot
	err      error
}

// Run executes the full pipeline for req.
func (p *Pipeline) Run(ctx context.Context, req Request) (*radar.RadarReport, error) {
	ctx, span := p.tracer.Start(ctx, "radar.run")
	defer span.End()

	start := p.clock.Now()
	report, err := p.run(ctx, req, start)
	outcome := outcomeLabel(err)
	metrics.ObservePipelineRun(outcome, p.clock.Now().Sub(start))

	span.SetAttributes(attribute.String("radar.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	} else {
		span.SetAttributes(
			attribute.String("radar.report_id", report.ID),
			attribute.Int("radar.competitors", len(report.Competitors)),
		)
	}
	return report, err
}

func (p *Pipeline) run(ctx context.Context, req Request, start time.Time) (*radar.RadarReport, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}
	log := p.logger.With(zap.String("subject", req.SubjectURL))

	log.Info("scraping sites", zap.Int("competitors", len(req.CompetitorURLs)))
	subject, competitors, err := p.scrapeAll(ctx, req, log)
	if err != nil {
		log.Error("pipeline aborted", zap.Error(err))
		return nil, err
	}

	log.Info("analyzing competitors", zap.Int("competitors", len(competitors)))
	analyses := p.analyzeAll(ctx, subject, competitors)

	log.Info("synthesizing insights")
	strategic := p.synthesize(ctx, subject, analyses)

	id, err := p.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate report id: %w", err)
	}
	finished := p.clock.Now()
	report := &radar.RadarReport{
		ID:                id,
		YourURL:           req.SubjectURL,
		YourSnapshot:      subject,
		Competitors:       analyses,
		StrategicInsights: strategic.Value,
		InsightSource:     strategic.Source,
		ExecutionTime:     finished.Sub(start).Milliseconds(),
		AnalyzedAt:        finished,
	}
	log.Info("report assembled",
		zap.String("report_id", id),
		zap.Int("competitors", len(analyses)),
		zap.String("insight_source", string(strategic.Source)),
		zap.Int64("execution_ms", report.ExecutionTime),
	)
	return report, nil
}

// scrapeAll fetches the subject and every competitor concurrently and applies
// the partial-failure gate. Surviving competitors keep request order.
func (p *Pipeline) scrapeAll(ctx context.Context, req Request, log *zap.Logger) (radar.Snapshot, []radar.Snapshot, error) {
	urls := append([]string{req.SubjectURL}, req.CompetitorURLs...)
	results := make([]scrapeResult, len(urls))

	var g errgroup.Group
	for i, u := range urls {
		role := metrics.RoleCompetitor
		if i == 0 {
			role = metrics.RoleSubject
		}
		g.Go(func() error {
			results[i] = p.scrape(ctx, u, role)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // branches record failures in results

	if err := results[0].err; err != nil {
		return radar.Snapshot{}, nil, fmt.Errorf("%w: %w", radar.ErrSubjectUnavailable, err)
	}

	competitors := make([]radar.Snapshot, 0, len(req.CompetitorURLs))
	var failures []error
	for _, res := range results[1:] {
		if res.err != nil {
			log.Warn("competitor scrape failed, dropping", zap.Error(res.err))
			failures = append(failures, res.err)
			continue
		}
		competitors = append(competitors, res.snapshot)
	}
	if len(competitors) == 0 {
		return radar.Snapshot{}, nil, fmt.Errorf("%w: %w", radar.ErrNoCompetitors, errors.Join(failures...))
	}
	return results[0].snapshot, competitors, nil
}

func (p *Pipeline) scrape(ctx context.Context, pageURL, role string) scrapeResult {
	ctx, span := p.tracer.Start(ctx, "radar.scrape", trace.WithAttributes(
		attribute.String("url.full", pageURL),
		attribute.String("radar.role", role),
	))
	defer span.End()

	started := time.Now()
	resp, err := p.fetcher.Fetch(ctx, radar.FetchRequest{URL: pageURL})
	metrics.ObserveScrape(role, radar.FetchErrorLabel(err), len(resp.Body), time.Since(started))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, radar.FetchErrorLabel(err))
		return scrapeResult{err: err}
	}
	span.SetAttributes(attribute.Int("radar.body_bytes", len(resp.Body)))
	return scrapeResult{snapshot: p.extractor.Extract(pageURL, string(resp.Body), p.clock.Now())}
}

// analyzeAll runs one analysis per competitor concurrently. Analyzer
// failures are absorbed by the analyzer itself, so every slot is filled.
func (p *Pipeline) analyzeAll(ctx context.Context, subject radar.Snapshot, competitors []radar.Snapshot) []radar.CompetitorAnalysis {
	analyses := make([]radar.CompetitorAnalysis, len(competitors))

	var g errgroup.Group
	for i, competitor := range competitors {
		g.Go(func() error {
			ctx, span := p.tracer.Start(ctx, "radar.analyze", trace.WithAttributes(attribute.String("url.full", competitor.URL)))
			out := p.analyzer.Analyze(ctx, subject, competitor)
			span.SetAttributes(attribute.String("radar.insight_source", string(out.Source)))
			span.End()
			analyses[i] = radar.CompetitorAnalysis{
				Snapshot:      competitor,
				AIInsights:    out.Value,
				InsightSource: out.Source,
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // analyses never return errors
	return analyses
}

func (p *Pipeline) synthesize(ctx context.Context, subject radar.Snapshot, analyses []radar.CompetitorAnalysis) radar.Outcome[radar.StrategicInsights] {
	ctx, span := p.tracer.Start(ctx, "radar.synthesize")
	defer span.End()
	out := p.synthesizer.Synthesize(ctx, subject, analyses)
	span.SetAttributes(attribute.String("radar.insight_source", string(out.Source)))
	return out
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, radar.ErrInvalidRequest):
		return outcomeInvalidRequest
	case errors.Is(err, radar.ErrSubjectUnavailable):
		return outcomeSubjectUnavailable
	case errors.Is(err, radar.ErrNoCompetitors):
		return outcomeNoCompetitors
	default:
		return outcomeError
	}
}
