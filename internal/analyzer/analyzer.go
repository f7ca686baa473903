// Package analyzer asks the AI service for a comparative assessment of one
// competitor against the subject site.
package analyzer

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

// List caps applied to AI replies.
const (
	maxStrengths    = 3
	maxWeaknesses   = 3
	maxUniqueAngles = 2
)

const (
	schemaName  = "competitor_analysis"
	maxTokens   = 800
	temperature = 0.4
)

const systemPrompt = "You are a competitive intelligence analyst. " +
	"Compare the two websites you are given and reply with a single JSON object " +
	"that matches the provided schema. Do not wrap the JSON in markdown and do not add commentary."

var errEmptyField = errors.New("required field is empty")

// Analyzer implements radar.CompetitorAnalyzer.
type Analyzer struct {
	client ai.Client
	schema any
	logger *zap.Logger
}

// New creates an Analyzer that uses client for every comparison.
func New(client ai.Client, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		client: client,
		schema: ai.GenerateSchema[radar.AIInsights](),
		logger: logging.OrNop(logger).Named("analyzer"),
	}
}

// Fallback returns the placeholder insights used whenever the AI step fails.
func Fallback() radar.AIInsights {
	return radar.AIInsights{
		Positioning:  "Unable to analyze positioning",
		Strengths:    []string{"Analysis unavailable"},
		Weaknesses:   []string{"Analysis unavailable"},
		UniqueAngles: []string{},
		ThreatLevel:  radar.ThreatMedium,
		ThreatReason: "AI analysis could not be completed for this competitor",
	}
}

// Analyze compares competitor against subject. It never fails: any error is
// logged and replaced by the fallback record.
func (a *Analyzer) Analyze(ctx context.Context, subject, competitor radar.Snapshot) radar.Outcome[radar.AIInsights] {
	start := time.Now()
	outcome := a.analyze(ctx, subject, competitor)
	metrics.ObserveAICall(metrics.StageAnalyze, string(outcome.Source), time.Since(start))
	return outcome
}

func (a *Analyzer) analyze(ctx context.Context, subject, competitor radar.Snapshot) radar.Outcome[radar.AIInsights] {
	var insights radar.AIInsights
	req := ai.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   buildPrompt(subject, competitor),
		SchemaName:   schemaName,
		Schema:       a.schema,
		MaxTokens:    maxTokens,
		Temperature:  ai.Temp(temperature),
	}
	if err := a.client.Complete(ctx, req, &insights); err != nil {
		return a.fallback(competitor.URL, err)
	}
	if err := normalize(&insights); err != nil {
		return a.fallback(competitor.URL, err)
	}
	return radar.Fresh(insights)
}

func (a *Analyzer) fallback(competitorURL string, err error) radar.Outcome[radar.AIInsights] {
	a.logger.Warn("competitor analysis failed, using fallback",
		zap.String("competitor", competitorURL),
		zap.Error(err),
	)
	return radar.Fallback(Fallback(), err.Error())
}

// normalize validates the reply and trims list fields to their caps.
func normalize(in *radar.AIInsights) error {
	in.Positioning = strings.TrimSpace(in.Positioning)
	in.ThreatReason = strings.TrimSpace(in.ThreatReason)
	if in.Positioning == "" {
		return fmt.Errorf("positioning: %w", errEmptyField)
	}
	if in.ThreatReason == "" {
		return fmt.Errorf("threatReason: %w", errEmptyField)
	}
	if !in.ThreatLevel.Valid() {
		return fmt.Errorf("invalid threat level %q", in.ThreatLevel)
	}
	in.Strengths = capList(in.Strengths, maxStrengths)
	in.Weaknesses = capList(in.Weaknesses, maxWeaknesses)
	in.UniqueAngles = capList(in.UniqueAngles, maxUniqueAngles)
	// Unique angles may legitimately be empty; the other two lists may not.
	if len(in.Strengths) == 0 {
		return fmt.Errorf("strengths: %w", errEmptyField)
	}
	if len(in.Weaknesses) == 0 {
		return fmt.Errorf("weaknesses: %w", errEmptyField)
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
