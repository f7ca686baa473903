package analyzer

import (
	"fmt"
	"strings"

	"github.com/JakeFAU/competitor-radar/internal/radar"
)

const valuePropositionPrefix = 300

func buildPrompt(subject, competitor radar.Snapshot) string {
	var b strings.Builder
	b.WriteString("Compare the competitor website against our website.\n\n")
	writeSite(&b, "OUR WEBSITE", subject)
	b.WriteString("\n")
	writeSite(&b, "COMPETITOR WEBSITE", competitor)
	b.WriteString(`
Return JSON with these fields:
- positioning: one sentence on how the competitor positions itself
- strengths: up to 3 things the competitor does better than us
- weaknesses: up to 3 gaps in the competitor's offering
- uniqueAngles: up to 2 distinctive angles the competitor uses
- threatLevel: one of "low", "medium", "high"
- threatReason: one sentence explaining the threat level
`)
	return b.String()
}

func writeSite(b *strings.Builder, heading string, s radar.Snapshot) {
	fmt.Fprintf(b, "%s\n", heading)
	fmt.Fprintf(b, "URL: %s\n", s.URL)
	fmt.Fprintf(b, "Title: %s\n", orNone(s.MetaTitle))
	fmt.Fprintf(b, "H1: %s\n", orNone(s.H1))
	fmt.Fprintf(b, "Description: %s\n", orNone(s.MetaDescription))
	fmt.Fprintf(b, "Value proposition: %s\n", orNone(truncateRunes(s.ValueProposition, valuePropositionPrefix)))
	fmt.Fprintf(b, "Key phrases: %s\n", orNone(strings.Join(s.KeyPhrases, ", ")))
	fmt.Fprintf(b, "Has pricing page: %t\n", s.HasPricing)
	fmt.Fprintf(b, "Has blog: %t\n", s.HasBlog)
	fmt.Fprintf(b, "Has social proof: %t\n", s.HasSocialProof)
	fmt.Fprintf(b, "Tech stack: %s\n", orNone(strings.Join(s.TechStack, ", ")))
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
