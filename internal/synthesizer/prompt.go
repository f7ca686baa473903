package synthesizer

import (
	"fmt"
	"strings"

	"github.com/JakeFAU/competitor-radar/internal/radar"
)

func buildPrompt(subject radar.Snapshot, analyses []radar.CompetitorAnalysis) string {
	var b strings.Builder
	b.WriteString("Build a strategic summary for our business.\n\n")
	b.WriteString("OUR WEBSITE\n")
	fmt.Fprintf(&b, "URL: %s\n", subject.URL)
	fmt.Fprintf(&b, "Title: %s\n", subject.MetaTitle)
	fmt.Fprintf(&b, "H1: %s\n", subject.H1)
	fmt.Fprintf(&b, "Has pricing page: %t, blog: %t, social proof: %t\n",
		subject.HasPricing, subject.HasBlog, subject.HasSocialProof)

	fmt.Fprintf(&b, "\nCOMPETITORS (%d)\n", len(analyses))
	for i, a := range analyses {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a.URL)
		fmt.Fprintf(&b, "   Positioning: %s\n", a.AIInsights.Positioning)
		fmt.Fprintf(&b, "   Strengths: %s\n", strings.Join(a.AIInsights.Strengths, "; "))
		fmt.Fprintf(&b, "   Weaknesses: %s\n", strings.Join(a.AIInsights.Weaknesses, "; "))
		fmt.Fprintf(&b, "   Threat level: %s\n", a.AIInsights.ThreatLevel)
	}

	b.WriteString(`
Return JSON with these fields:
- marketGaps: up to 3 opportunities no competitor covers well
- yourAdvantages: up to 3 things we do better than the competitors
- yourVulnerabilities: up to 3 areas where competitors beat us
- actionItems: 3 to 5 items ordered critical first, each with priority ("critical", "high", "medium" or "low"), title, description and estimatedImpact
- overallCompetitivePosition: one of "leading", "competitive", "catching_up", "behind"
- positionReason: one sentence explaining the position
`)
	return b.String()
}
