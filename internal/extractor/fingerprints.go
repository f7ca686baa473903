package extractor

import (
	"regexp"
	"slices"
	"strings"
)

// techFingerprint maps a lowercase raw-HTML marker to a vendor name.
type techFingerprint struct {
	marker string
	vendor string
}

var techFingerprints = []techFingerprint{
	{marker: "shopify", vendor: "Shopify"},
	{marker: "wp-content", vendor: "WordPress"},
	{marker: "__next", vendor: "Next.js"},
	{marker: "hubspot", vendor: "HubSpot"},
	{marker: "hotjar", vendor: "Hotjar"},
	{marker: "wix.com", vendor: "Wix"},
	{marker: "squarespace", vendor: "Squarespace"},
	{marker: "webflow", vendor: "Webflow"},
	{marker: "google-analytics", vendor: "Google Analytics"},
	{marker: "googletagmanager", vendor: "Google Tag Manager"},
	{marker: "intercom", vendor: "Intercom"},
	{marker: "klaviyo", vendor: "Klaviyo"},
	{marker: "stripe.com", vendor: "Stripe"},
	{marker: "__nuxt", vendor: "Nuxt"},
	{marker: "gatsby", vendor: "Gatsby"},
	{marker: "data-reactroot", vendor: "React"},
	{marker: "ng-version", vendor: "Angular"},
}

var (
	pricingKeywords     = []string{"pricing", "price", "/month", "per month", "plans"}
	blogKeywords        = []string{"blog", "article", "news"}
	socialProofKeywords = []string{"testimonial", "review", "trusted by", "case stud", "customers"}

	productKeywordPattern = regexp.MustCompile(`product|service|pricing|plan|package|solution`)
)

// detectTechStack returns the sorted set of vendors whose marker occurs in
// the lowercased HTML.
func detectTechStack(lowerHTML string) []string {
	stack := make([]string, 0)
	for _, fp := range techFingerprints {
		if strings.Contains(lowerHTML, fp.marker) && !slices.Contains(stack, fp.vendor) {
			stack = append(stack, fp.vendor)
		}
	}
	slices.Sort(stack)
	return stack
}

// countProductKeywords returns how many distinct product keywords appear.
func countProductKeywords(lowerHTML string) int {
	seen := make(map[string]struct{})
	for _, match := range productKeywordPattern.FindAllString(lowerHTML, -1) {
		seen[match] = struct{}{}
	}
	return len(seen)
}

func containsAny(lowerHTML string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowerHTML, kw) {
			return true
		}
	}
	return false
}
