package analyzer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JakeFAU/competitor-radar/internal/ai"
	"github.com/JakeFAU/competitor-radar/internal/radar"
)

// stubClient replies with a fixed body or error and records prompts.
type stubClient struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []ai.Request
}

func (s *stubClient) Complete(_ context.Context, req ai.Request, result any) error {
	s.mu.Lock()
	s.prompts = append(s.prompts, req)
	s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	return ai.DecodeStrict(s.reply, result)
}

func (s *stubClient) Model() string { return "stub" }

var (
	subject = radar.Snapshot{
		URL:              "https://mystore.example",
		MetaTitle:        "My Store",
		H1:               "Handmade mugs",
		ValueProposition: strings.Repeat("a", 299) + "bc",
		KeyPhrases:       []string{"Handmade mugs", "Free shipping"},
		HasPricing:       true,
		TechStack:        []string{"Shopify"},
	}
	competitor = radar.Snapshot{
		URL:             "https://rival.example",
		MetaTitle:       "Rival Mugs",
		MetaDescription: "Cheap mugs",
		TechStack:       []string{"Hotjar", "WordPress"},
	}
)

func TestAnalyzeReturnsAIInsights(t *testing.T) {
	t.Parallel()

	client := &stubClient{reply: `{
		"positioning": "Budget mug retailer",
		"strengths": ["Low prices", "Fast shipping"],
		"weaknesses": ["Generic designs"],
		"uniqueAngles": ["Bulk discounts"],
		"threatLevel": "high",
		"threatReason": "Competes directly on price"
	}`}

	out := New(client, nil).Analyze(context.Background(), subject, competitor)

	require.False(t, out.IsFallback())
	require.Equal(t, radar.SourceAI, out.Source)
	require.Empty(t, out.Reason)
	require.Equal(t, radar.AIInsights{
		Positioning:  "Budget mug retailer",
		Strengths:    []string{"Low prices", "Fast shipping"},
		Weaknesses:   []string{"Generic designs"},
		UniqueAngles: []string{"Bulk discounts"},
		ThreatLevel:  radar.ThreatHigh,
		ThreatReason: "Competes directly on price",
	}, out.Value)
}

func TestAnalyzeTruncatesOverlongLists(t *testing.T) {
	t.Parallel()

	client := &stubClient{reply: `{
		"positioning": "p",
		"strengths": ["s1", "s2", "s3", "s4"],
		"weaknesses": ["w1", " ", "w2", "w3", "w4"],
		"uniqueAngles": ["u1", "u2", "u3"],
		"threatLevel": "low",
		"threatReason": "r"
	}`}

	out := New(client, nil).Analyze(context.Background(), subject, competitor)

	require.False(t, out.IsFallback())
	require.Equal(t, []string{"s1", "s2", "s3"}, out.Value.Strengths)
	require.Equal(t, []string{"w1", "w2", "w3"}, out.Value.Weaknesses)
	require.Equal(t, []string{"u1", "u2"}, out.Value.UniqueAngles)
}

func TestAnalyzeAcceptsEmptyUniqueAngles(t *testing.T) {
	t.Parallel()

	client := &stubClient{reply: `{
		"positioning": "p",
		"strengths": ["s"],
		"weaknesses": ["w"],
		"uniqueAngles": [" "],
		"threatLevel": "medium",
		"threatReason": "r"
	}`}

	out := New(client, nil).Analyze(context.Background(), subject, competitor)

	require.False(t, out.IsFallback())
	require.NotNil(t, out.Value.UniqueAngles)
	require.Empty(t, out.Value.UniqueAngles)
}

func TestAnalyzeFallsBack(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		client *stubClient
	}{
		{name: "transport error", client: &stubClient{err: errors.New("connection refused")}},
		{name: "prose reply", client: &stubClient{reply: "Sure! Here is the analysis."}},
		{name: "fenced reply", client: &stubClient{reply: "```json\n{}\n```"}},
		{name: "invalid threat level", client: &stubClient{reply: `{"positioning":"p","strengths":[],"weaknesses":[],"uniqueAngles":[],"threatLevel":"extreme","threatReason":"r"}`}},
		{name: "missing positioning", client: &stubClient{reply: `{"positioning":"","strengths":[],"weaknesses":[],"uniqueAngles":[],"threatLevel":"low","threatReason":"r"}`}},
		{name: "missing threat reason", client: &stubClient{reply: `{"positioning":"p","strengths":[],"weaknesses":[],"uniqueAngles":[],"threatLevel":"low","threatReason":"  "}`}},
		{name: "blank strengths", client: &stubClient{reply: `{"positioning":"p","strengths":[""," "],"weaknesses":["w"],"uniqueAngles":[],"threatLevel":"low","threatReason":"r"}`}},
		{name: "no weaknesses", client: &stubClient{reply: `{"positioning":"p","strengths":["s"],"weaknesses":[],"uniqueAngles":["u"],"threatLevel":"low","threatReason":"r"}`}},
		{name: "null", client: &stubClient{reply: "null"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			core, logs := observer.New(zap.WarnLevel)

			out := New(tc.client, zap.New(core)).Analyze(context.Background(), subject, competitor)

			require.True(t, out.IsFallback())
			require.NotEmpty(t, out.Reason)
			require.Equal(t, Fallback(), out.Value)
			require.Equal(t, 1, logs.FilterMessage("competitor analysis failed, using fallback").Len())
		})
	}
}

func TestFallbackShape(t *testing.T) {
	t.Parallel()

	fb := Fallback()
	require.Equal(t, "Unable to analyze positioning", fb.Positioning)
	require.Equal(t, []string{"Analysis unavailable"}, fb.Strengths)
	require.Equal(t, []string{"Analysis unavailable"}, fb.Weaknesses)
	require.NotNil(t, fb.UniqueAngles)
	require.Empty(t, fb.UniqueAngles)
	require.Equal(t, radar.ThreatMedium, fb.ThreatLevel)
	require.Equal(t, "AI analysis could not be completed for this competitor", fb.ThreatReason)

	// Each call hands out its own slices.
	fb.Strengths[0] = "mutated"
	require.Equal(t, []string{"Analysis unavailable"}, Fallback().Strengths)
}

func TestAnalyzeSendsBothSnapshots(t *testing.T) {
	t.Parallel()

	client := &stubClient{err: errors.New("offline")}
	New(client, nil).Analyze(context.Background(), subject, competitor)

	require.Len(t, client.prompts, 1)
	req := client.prompts[0]
	require.Equal(t, schemaName, req.SchemaName)
	require.NotNil(t, req.Schema)

	prompt := req.UserPrompt
	require.Contains(t, prompt, "URL: https://mystore.example")
	require.Contains(t, prompt, "URL: https://rival.example")
	require.Contains(t, prompt, "Title: Rival Mugs")
	require.Contains(t, prompt, "Description: Cheap mugs")
	require.Contains(t, prompt, "Key phrases: Handmade mugs, Free shipping")
	require.Contains(t, prompt, "Tech stack: Hotjar, WordPress")
	require.Contains(t, prompt, "Has pricing page: true")
	require.Contains(t, prompt, strings.Repeat("a", 299)+"b\n")
	require.NotContains(t, prompt, strings.Repeat("a", 299)+"bc")
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	require.Equal(t, "héllo", truncateRunes("héllo", 10))
	require.Equal(t, "hé", truncateRunes("héllo", 2))
	require.Equal(t, "", truncateRunes("", 3))
}
