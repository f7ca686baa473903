// Package metrics exposes Prometheus collectors for the radar service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AI stages used as label values.
const (
	StageAnalyze    = "analyze"
	StageSynthesize = "synthesize"
)

// Scrape roles used as label values. URLs come from callers, so scrapes are
// bucketed by role rather than by host.
const (
	RoleSubject    = "subject"
	RoleCompetitor = "competitor"
	roleUnknown    = "unknown"
)

var (
	radarScrapesTotal            *prometheus.CounterVec
	radarScrapeBytesTotal        *prometheus.CounterVec
	radarScrapeDurationSeconds   *prometheus.HistogramVec
	radarAICallsTotal            *prometheus.CounterVec
	radarAICallDurationSeconds   *prometheus.HistogramVec
	radarPipelineRunsTotal       *prometheus.CounterVec
	radarPipelineDurationSeconds prometheus.Histogram
	radarHandoffFailuresTotal    *prometheus.CounterVec
	httpRequestsTotal            *prometheus.CounterVec
	httpRequestDurationSeconds   *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times; the Observe helpers call
// it themselves.
func Init() {
	once.Do(func() {
		radarScrapesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "radar_scrapes_total",
				Help: "Total number of site scrapes, labeled by role and result.",
			},
			[]string{"role", "result"},
		)

		radarScrapeBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "radar_scrape_bytes_total",
				Help: "Total number of HTML bytes fetched, labeled by role.",
			},
			[]string{"role"},
		)

		radarScrapeDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "radar_scrape_duration_seconds",
				Help:    "Histogram of fetch latencies, labeled by result.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
			},
			[]string{"result"},
		)

		radarAICallsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "radar_ai_calls_total",
				Help: "Total number of AI-backed steps, labeled by stage and insight source.",
			},
			[]string{"stage", "source"},
		)

		radarAICallDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "radar_ai_call_duration_seconds",
				Help:    "Histogram of AI call latencies, labeled by stage.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
			},
			[]string{"stage"},
		)

		radarPipelineRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "radar_pipeline_runs_total",
				Help: "Total number of pipeline runs, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		radarPipelineDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "radar_pipeline_duration_seconds",
				Help:    "Histogram of end-to-end pipeline durations.",
				Buckets: []float64{1, 5, 10, 20, 30, 60, 120},
			},
		)

		radarHandoffFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "radar_handoff_failures_total",
				Help: "Total number of failed report hand-off steps, labeled by target.",
			},
			[]string{"target"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 30, 60},
			},
			[]string{"method", "route"},
		)
	})
}

func sanitizeRole(role string) string {
	switch role {
	case RoleSubject, RoleCompetitor:
		return role
	default:
		return roleUnknown
	}
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveScrape records one fetch attempt for a subject or competitor site.
func ObserveScrape(role, result string, bytesFetched int, duration time.Duration) {
	Init()
	role = sanitizeRole(role)
	radarScrapesTotal.WithLabelValues(role, result).Inc()
	radarScrapeDurationSeconds.WithLabelValues(result).Observe(duration.Seconds())
	if bytesFetched > 0 {
		radarScrapeBytesTotal.WithLabelValues(role).Add(float64(bytesFetched))
	}
}

// ObserveAICall records one analyzer or synthesizer call and whether it
// produced a genuine result or the fallback.
func ObserveAICall(stage, source string, duration time.Duration) {
	Init()
	radarAICallsTotal.WithLabelValues(stage, source).Inc()
	radarAICallDurationSeconds.WithLabelValues(stage).Observe(duration.Seconds())
}

// ObservePipelineRun records the outcome of one pipeline run.
func ObservePipelineRun(outcome string, duration time.Duration) {
	Init()
	radarPipelineRunsTotal.WithLabelValues(outcome).Inc()
	radarPipelineDurationSeconds.Observe(duration.Seconds())
}

// ObserveHandoffFailure counts a failed archive or publish step.
func ObserveHandoffFailure(target string) {
	Init()
	radarHandoffFailuresTotal.WithLabelValues(target).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
