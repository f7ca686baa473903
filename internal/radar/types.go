package radar

import (
	"slices"
	"time"
)

// ThreatLevel is the AI-assigned competitive risk of one competitor.
type ThreatLevel string

// Threat levels accepted from the AI service.
const (
	ThreatLow    ThreatLevel = "low"
	ThreatMedium ThreatLevel = "medium"
	ThreatHigh   ThreatLevel = "high"
)

// Valid reports whether t is one of the known threat levels.
func (t ThreatLevel) Valid() bool {
	switch t {
	case ThreatLow, ThreatMedium, ThreatHigh:
		return true
	default:
		return false
	}
}

// Priority ranks an ActionItem.
type Priority string

// Action item priorities, most urgent first.
const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank returns the sort position of p; unknown priorities sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.Rank() < 4
}

// Position summarises where the subject stands in its market.
type Position string

// Competitive positions accepted from the AI service.
const (
	PositionLeading     Position = "leading"
	PositionCompetitive Position = "competitive"
	PositionCatchingUp  Position = "catching_up"
	PositionBehind      Position = "behind"
)

// Valid reports whether p is one of the known positions.
func (p Position) Valid() bool {
	switch p {
	case PositionLeading, PositionCompetitive, PositionCatchingUp, PositionBehind:
		return true
	default:
		return false
	}
}

// InsightSource tags whether an insight record came from the AI service or
// is the fixed fallback value.
type InsightSource string

// Insight sources.
const (
	SourceAI       InsightSource = "ai"
	SourceFallback InsightSource = "fallback"
)

// Snapshot is one site's extracted features at a point in time.
// It is never mutated after the extractor returns it.
type Snapshot struct {
	URL              string    `json:"url"`
	ScrapedAt        time.Time `json:"scrapedAt"`
	MetaTitle        string    `json:"metaTitle"`
	MetaDescription  string    `json:"metaDescription"`
	H1               string    `json:"h1"`
	Navigation       []string  `json:"navigation"`
	ValueProposition string    `json:"valueProposition"`
	KeyPhrases       []string  `json:"keyPhrases"`
	ProductCount     int       `json:"productCount"`
	HasPricing       bool      `json:"hasPricing"`
	HasBlog          bool      `json:"hasBlog"`
	HasSocialProof   bool      `json:"hasSocialProof"`
	TechStack        []string  `json:"techStack"`
	ContentLength    int       `json:"contentLength"`
}

// AIInsights is the comparative assessment of one competitor.
type AIInsights struct {
	Positioning  string      `json:"positioning"`
	Strengths    []string    `json:"strengths"`
	Weaknesses   []string    `json:"weaknesses"`
	UniqueAngles []string    `json:"uniqueAngles"`
	ThreatLevel  ThreatLevel `json:"threatLevel"`
	ThreatReason string      `json:"threatReason"`
}

// CompetitorAnalysis pairs a competitor snapshot with its insights.
type CompetitorAnalysis struct {
	Snapshot
	AIInsights    AIInsights    `json:"aiInsights"`
	InsightSource InsightSource `json:"insightSource"`
}

// ActionItem is one prioritized recommendation from the synthesizer.
type ActionItem struct {
	Priority        Priority `json:"priority"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	EstimatedImpact string   `json:"estimatedImpact"`
}

// StrategicInsights is the cross-competitor synthesis.
type StrategicInsights struct {
	MarketGaps                 []string     `json:"marketGaps"`
	YourAdvantages             []string     `json:"yourAdvantages"`
	YourVulnerabilities        []string     `json:"yourVulnerabilities"`
	ActionItems                []ActionItem `json:"actionItems"`
	OverallCompetitivePosition Position     `json:"overallCompetitivePosition"`
	PositionReason             string       `json:"positionReason"`
}

// RadarReport is the terminal artifact of one pipeline run.
type RadarReport struct {
	ID                string               `json:"id"`
	YourURL           string               `json:"yourUrl"`
	YourSnapshot      Snapshot             `json:"yourSnapshot"`
	Competitors       []CompetitorAnalysis `json:"competitors"`
	StrategicInsights StrategicInsights    `json:"strategicInsights"`
	InsightSource     InsightSource        `json:"insightSource"`
	ExecutionTime     int64                `json:"executionTime"`
	AnalyzedAt        time.Time            `json:"analyzedAt"`
}

// Outcome is the tagged result of an AI-backed step: either a genuine AI
// response or the fixed fallback value, always fully shaped.
type Outcome[T any] struct {
	Value  T
	Source InsightSource
	// Reason describes why the fallback was used; empty for AI results.
	Reason string
}

// Fresh wraps an AI-produced value.
func Fresh[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v, Source: SourceAI}
}

// Fallback wraps the fixed placeholder value with the failure reason.
func Fallback[T any](v T, reason string) Outcome[T] {
	return Outcome[T]{Value: v, Source: SourceFallback, Reason: reason}
}

// IsFallback reports whether the outcome carries the placeholder value.
func (o Outcome[T]) IsFallback() bool {
	return o.Source == SourceFallback
}

// SortActionItems orders items critical-first, keeping the relative order of
// items that share a priority.
func SortActionItems(items []ActionItem) {
	slices.SortStableFunc(items, func(a, b ActionItem) int {
		return a.Priority.Rank() - b.Priority.Rank()
	})
}
