package radar

import (
	"context"
	"io"
	"time"
)

// Fetcher retrieves the raw body of one URL.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Extractor turns raw HTML into a Snapshot. It never fails.
type Extractor interface {
	Extract(url string, html string, scrapedAt time.Time) Snapshot
}

// CompetitorAnalyzer compares one competitor against the subject.
type CompetitorAnalyzer interface {
	Analyze(ctx context.Context, subject, competitor Snapshot) Outcome[AIInsights]
}

// Synthesizer produces market-level insights over every analysis.
type Synthesizer interface {
	Synthesize(ctx context.Context, subject Snapshot, analyses []CompetitorAnalysis) Outcome[StrategicInsights]
}

// ReportStore keeps finished reports for later retrieval.
type ReportStore interface {
	Put(report RadarReport)
	Get(id string) (RadarReport, bool)
}

// BlobStore writes raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// Publisher pushes hand-off events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces report IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// FetchRequest captures everything needed to fetch a URL.
type FetchRequest struct {
	URL string
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}
