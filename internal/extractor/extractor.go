package extractor

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/JakeFAU/competitor-radar/internal/radar"
)

// Extraction limits. These thresholds are part of the snapshot contract.
const (
	maxNavItems        = 15
	maxNavItemLen      = 49
	maxKeyPhrases      = 10
	minKeyPhraseLen    = 4
	maxKeyPhraseLen    = 99
	paragraphWindow    = 5
	minParagraphLen    = 21
	maxValueParagraphs = 3
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Extractor implements radar.Extractor. It holds no state and is safe for
// concurrent use.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract builds a Snapshot from raw HTML. Every field falls back to its zero
// value (empty lists rather than nil) when the markup lacks it.
func (Extractor) Extract(pageURL string, rawHTML string, scrapedAt time.Time) radar.Snapshot {
	lower := strings.ToLower(rawHTML)
	snap := radar.Snapshot{
		URL:            pageURL,
		ScrapedAt:      scrapedAt,
		Navigation:     []string{},
		KeyPhrases:     []string{},
		ProductCount:   countProductKeywords(lower),
		HasPricing:     containsAny(lower, pricingKeywords),
		HasBlog:        containsAny(lower, blogKeywords),
		HasSocialProof: containsAny(lower, socialProofKeywords),
		TechStack:      detectTechStack(lower),
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return snap
	}

	snap.MetaTitle = cleanText(doc.Find("title").First().Text())
	snap.MetaDescription = metaDescription(doc)
	snap.H1 = cleanText(doc.Find("h1").First().Text())
	snap.Navigation = navigation(doc)
	snap.ValueProposition = valueProposition(doc)
	snap.KeyPhrases = keyPhrases(doc)
	snap.ContentLength = contentLength(doc)
	return snap
}

// cleanText strips any literal tags left in the text and collapses whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(tagPattern.ReplaceAllString(s, " ")), " ")
}

func textLen(s string) int {
	return utf8.RuneCountInString(s)
}

func metaDescription(doc *goquery.Document) string {
	var description string
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		if !strings.EqualFold(strings.TrimSpace(name), "description") {
			return true
		}
		content, ok := s.Attr("content")
		if !ok {
			return true
		}
		description = strings.TrimSpace(content)
		return false
	})
	return description
}

func navigation(doc *goquery.Document) []string {
	items := make([]string, 0)
	doc.Find("nav").First().Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := cleanText(s.Text())
		if n := textLen(text); n >= 1 && n <= maxNavItemLen {
			items = append(items, text)
		}
		return len(items) < maxNavItems
	})
	return items
}

func valueProposition(doc *goquery.Document) string {
	parts := make([]string, 0, maxValueParagraphs)
	doc.Find("p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= paragraphWindow {
			return false
		}
		if text := cleanText(s.Text()); textLen(text) >= minParagraphLen {
			parts = append(parts, text)
		}
		return len(parts) < maxValueParagraphs
	})
	return strings.Join(parts, " ")
}

func keyPhrases(doc *goquery.Document) []string {
	phrases := make([]string, 0)
	doc.Find("h1, h2, h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := cleanText(s.Text())
		if n := textLen(text); n >= minKeyPhraseLen && n <= maxKeyPhraseLen {
			phrases = append(phrases, text)
		}
		return len(phrases) < maxKeyPhrases
	})
	return phrases
}

// contentLength counts tokens separated by ASCII whitespace across all text
// outside <script> and <style>. A non-breaking space joins words.
func contentLength(doc *goquery.Document) int {
	count := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			count += len(strings.FieldsFunc(tagPattern.ReplaceAllString(n.Data, " "), isASCIISpace))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}
	return count
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
