// Package collyfetcher implements radar.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/JakeFAU/competitor-radar/internal/radar"
)

// Defaults applied when Config leaves a field empty.
const (
	DefaultUserAgent = "CompetitorRadar/1.0 (+https://github.com/JakeFAU/competitor-radar)"
	DefaultTimeout   = 15 * time.Second
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Option customises a Fetcher.
type Option func(*Fetcher)

// WithTransport replaces the HTTP transport (tests use httpmock here).
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) {
		if rt != nil {
			f.transport = rt
		}
	}
}

// Fetcher implements radar.Fetcher using the Colly collector.
// Each call issues exactly one GET; there is no retry.
type Fetcher struct {
	cfg           Config
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher.
func New(cfg Config, opts ...Option) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	f := &Fetcher{
		cfg:       cfg,
		transport: newHTTPTransport(),
	}
	for _, opt := range opts {
		opt(f)
	}

	// Clones share the backend, so transport and timeout are set once here.
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.AllowURLRevisit = true
	c.ParseHTTPErrorResponse = true
	c.WithTransport(f.transport)
	c.SetRequestTimeout(cfg.Timeout)
	f.baseCollector = c
	return f
}

// Fetch executes a single HTTP GET using Colly. Any non-2xx status, network
// error or timeout is returned as a *radar.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, request radar.FetchRequest) (radar.FetchResponse, error) {
	if err := ctx.Err(); err != nil {
		return radar.FetchResponse{}, fmt.Errorf("colly fetch canceled: %w", err)
	}
	var (
		result   radar.FetchResponse
		fetchErr error
	)
	start := time.Now()
	collector := f.buildCollector(start, &result, &fetchErr)

	if err := f.runCollector(ctx, collector, request.URL, &fetchErr); err != nil {
		if ctx.Err() != nil {
			return radar.FetchResponse{}, err
		}
		return radar.FetchResponse{}, classifyError(request.URL, err)
	}
	if result.StatusCode < 200 || result.StatusCode > 299 {
		return radar.FetchResponse{}, &radar.FetchError{
			URL:        request.URL,
			Kind:       radar.FetchStatus,
			StatusCode: result.StatusCode,
		}
	}
	return result, nil
}

func (f *Fetcher) buildCollector(
	start time.Time,
	result *radar.FetchResponse,
	fetchErr *error,
) *colly.Collector {
	collector := f.baseCollector.Clone()
	collector.UserAgent = f.cfg.UserAgent
	collector.IgnoreRobotsTxt = true
	collector.AllowURLRevisit = true
	collector.ParseHTTPErrorResponse = true

	f.configureCollectorHooks(collector, start, result, fetchErr)
	return collector
}

func (f *Fetcher) configureCollectorHooks(
	hooks collectorHooks,
	start time.Time,
	result *radar.FetchResponse,
	fetchErr *error,
) {
	hooks.OnResponse(func(r *colly.Response) {
		*result = radar.FetchResponse{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})

	hooks.OnError(func(_ *colly.Response, err error) {
		*fetchErr = err
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("colly response failed: %w", *fetchErr)
		}
		return nil
	}
}

func classifyError(url string, err error) *radar.FetchError {
	kind := radar.FetchNetwork
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = radar.FetchTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = radar.FetchTimeout
	}
	return &radar.FetchError{URL: url, Kind: kind, Err: err}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
