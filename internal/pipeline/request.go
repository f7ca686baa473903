package pipeline

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/JakeFAU/competitor-radar/internal/radar"
)

// MaxCompetitors bounds the competitor list of a single run.
const MaxCompetitors = 5

// Request names the sites to compare.
type Request struct {
	SubjectURL     string
	CompetitorURLs []string
}

// Normalize trims whitespace and validates every URL. The returned error
// wraps radar.ErrInvalidRequest.
func (r Request) Normalize() (Request, error) {
	subject, err := checkURL(r.SubjectURL)
	if err != nil {
		return Request{}, fmt.Errorf("%w: subject: %w", radar.ErrInvalidRequest, err)
	}
	if len(r.CompetitorURLs) == 0 {
		return Request{}, fmt.Errorf("%w: at least one competitor URL is required", radar.ErrInvalidRequest)
	}
	if len(r.CompetitorURLs) > MaxCompetitors {
		return Request{}, fmt.Errorf("%w: at most %d competitor URLs are allowed, got %d",
			radar.ErrInvalidRequest, MaxCompetitors, len(r.CompetitorURLs))
	}

	competitors := make([]string, 0, len(r.CompetitorURLs))
	for i, raw := range r.CompetitorURLs {
		u, err := checkURL(raw)
		if err != nil {
			return Request{}, fmt.Errorf("%w: competitor %d: %w", radar.ErrInvalidRequest, i+1, err)
		}
		competitors = append(competitors, u)
	}
	return Request{SubjectURL: subject, CompetitorURLs: competitors}, nil
}

func checkURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("url is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%q: missing host", raw)
	}
	return raw, nil
}
