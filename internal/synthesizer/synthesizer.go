// Package synthesizer turns every competitor analysis into one set of
// market-level recommendations.
package synthesizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/competitor-radar/internal/ai"
	"github.com/JakeFAU/competitor-radar/internal/logging"
	"github.com/JakeFAU/competitor-radar/internal/metrics"
	"github.com/JakeFAU/competitor-radar/internal/radar"
)

const (
	maxMarketGaps      = 3
	maxAdvantages      = 3
	maxVulnerabilities = 3
	maxActionItems     = 5
)

const (
	schemaName  = "strategic_insights"
	maxTokens   = 1500
	temperature = 0.5
)

const systemPrompt = "You are a strategy consultant for small online businesses. " +
	"Reply with a single JSON object that matches the provided schema. " +
	"Do not wrap the JSON in markdown and do not add commentary."

var (
	errNoActionItems = errors.New("no action items")
	errEmptyField    = errors.New("required field is empty")
)

// Synthesizer implements radar.Synthesizer.
type Synthesizer struct {
	client ai.Client
	schema any
	logger *zap.Logger
}

// New creates a Synthesizer backed by client.
func New(client ai.Client, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{
		client: client,
		schema: ai.GenerateSchema[radar.StrategicInsights](),
		logger: logging.OrNop(logger).Named("synthesizer"),
	}
}

// Fallback returns the placeholder insights used when synthesis fails.
func Fallback() radar.StrategicInsights {
	return radar.StrategicInsights{
		MarketGaps:          []string{"Manual review needed to identify market gaps"},
		YourAdvantages:      []string{"Manual review needed to confirm advantages"},
		YourVulnerabilities: []string{"Manual review needed to assess vulnerabilities"},
		ActionItems: []radar.ActionItem{{
			Priority:        radar.PriorityHigh,
			Title:           "Manual review needed",
			Description:     "Automated synthesis failed. Review the competitor analyses above and draw conclusions manually.",
			EstimatedImpact: "Unknown until reviewed",
		}},
		OverallCompetitivePosition: radar.PositionCompetitive,
		PositionReason:             "Automated strategic synthesis could not be completed, so a neutral position is assumed",
	}
}

// Synthesize runs once over the complete analysis list. Failures never
// propagate; the fallback is returned instead.
func (s *Synthesizer) Synthesize(ctx context.Context, subject radar.Snapshot, analyses []radar.CompetitorAnalysis) radar.Outcome[radar.StrategicInsights] {
	start := time.Now()
	outcome := s.synthesize(ctx, subject, analyses)
	metrics.ObserveAICall(metrics.StageSynthesize, string(outcome.Source), time.Since(start))
	return outcome
}

func (s *Synthesizer) synthesize(ctx context.Context, subject radar.Snapshot, analyses []radar.CompetitorAnalysis) radar.Outcome[radar.StrategicInsights] {
	var insights radar.StrategicInsights
	req := ai.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   buildPrompt(subject, analyses),
		SchemaName:   schemaName,
		Schema:       s.schema,
		MaxTokens:    maxTokens,
		Temperature:  ai.Temp(temperature),
	}
	if err := s.client.Complete(ctx, req, &insights); err != nil {
		return s.fallback(subject.URL, err)
	}
	if err := normalize(&insights); err != nil {
		return s.fallback(subject.URL, err)
	}
	return radar.Fresh(insights)
}

func (s *Synthesizer) fallback(subjectURL string, err error) radar.Outcome[radar.StrategicInsights] {
	s.logger.Warn("strategic synthesis failed, using fallback",
		zap.String("subject", subjectURL),
		zap.Error(err),
	)
	return radar.Fallback(Fallback(), err.Error())
}

func normalize(in *radar.StrategicInsights) error {
	if !in.OverallCompetitivePosition.Valid() {
		return fmt.Errorf("invalid competitive position %q", in.OverallCompetitivePosition)
	}
	if len(in.ActionItems) == 0 {
		return errNoActionItems
	}
	in.PositionReason = strings.TrimSpace(in.PositionReason)
	if in.PositionReason == "" {
		return fmt.Errorf("positionReason: %w", errEmptyField)
	}
	for i := range in.ActionItems {
		item := &in.ActionItems[i]
		if !item.Priority.Valid() {
			return fmt.Errorf("action item %d: invalid priority %q", i, item.Priority)
		}
		item.Title = strings.TrimSpace(item.Title)
		item.Description = strings.TrimSpace(item.Description)
		item.EstimatedImpact = strings.TrimSpace(item.EstimatedImpact)
		if item.Title == "" {
			return fmt.Errorf("action item %d: title: %w", i, errEmptyField)
		}
	}

	in.MarketGaps = capList(in.MarketGaps, maxMarketGaps)
	in.YourAdvantages = capList(in.YourAdvantages, maxAdvantages)
	in.YourVulnerabilities = capList(in.YourVulnerabilities, maxVulnerabilities)

	radar.SortActionItems(in.ActionItems)
	if len(in.ActionItems) > maxActionItems {
		in.ActionItems = in.ActionItems[:maxActionItems]
	}
	return nil
}

func capList(items []string, limit int) []string {
	out := make([]string, 0, min(len(items), limit))
	for _, item := range items {
		if len(out) == limit {
			break
		}
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
