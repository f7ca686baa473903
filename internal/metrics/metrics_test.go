package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	first := radarScrapesTotal
	Init()

	require.NotNil(t, radarScrapesTotal)
	require.Same(t, first, radarScrapesTotal)
	require.NotNil(t, radarAICallsTotal)
	require.NotNil(t, radarPipelineRunsTotal)
	require.NotNil(t, httpRequestsTotal)
}

func TestObserveScrape(t *testing.T) {
	Init()

	subjectOK := testutil.ToFloat64(radarScrapesTotal.WithLabelValues(RoleSubject, "ok"))
	competitorTimeout := testutil.ToFloat64(radarScrapesTotal.WithLabelValues(RoleCompetitor, "timeout"))
	subjectBytes := testutil.ToFloat64(radarScrapeBytesTotal.WithLabelValues(RoleSubject))

	ObserveScrape(RoleSubject, "ok", 512, 200*time.Millisecond)
	ObserveScrape(RoleCompetitor, "timeout", 0, 15*time.Second)

	require.InDelta(t, subjectOK+1, testutil.ToFloat64(radarScrapesTotal.WithLabelValues(RoleSubject, "ok")), 0)
	require.InDelta(t, competitorTimeout+1, testutil.ToFloat64(radarScrapesTotal.WithLabelValues(RoleCompetitor, "timeout")), 0)
	require.InDelta(t, subjectBytes+512, testutil.ToFloat64(radarScrapeBytesTotal.WithLabelValues(RoleSubject)), 0)
}

func TestObserveScrapeBucketsUnknownRoles(t *testing.T) {
	Init()

	before := testutil.ToFloat64(radarScrapesTotal.WithLabelValues(roleUnknown, "ok"))
	ObserveScrape("https://caller-chosen-host.example/", "ok", 10, time.Millisecond)
	ObserveScrape("another-host.example", "ok", 10, time.Millisecond)

	require.InDelta(t, before+2, testutil.ToFloat64(radarScrapesTotal.WithLabelValues(roleUnknown, "ok")), 0)
	require.Equal(t, RoleSubject, sanitizeRole(RoleSubject))
	require.Equal(t, RoleCompetitor, sanitizeRole(RoleCompetitor))
	require.Equal(t, roleUnknown, sanitizeRole("mystore.com"))
}

func TestObserveAICallAndPipeline(t *testing.T) {
	Init()

	before := testutil.ToFloat64(radarAICallsTotal.WithLabelValues(StageSynthesize, "fallback"))
	ObserveAICall(StageSynthesize, "fallback", time.Second)
	require.InDelta(t, before+1, testutil.ToFloat64(radarAICallsTotal.WithLabelValues(StageSynthesize, "fallback")), 0)

	runs := testutil.ToFloat64(radarPipelineRunsTotal.WithLabelValues("metrics_test"))
	ObservePipelineRun("metrics_test", 3*time.Second)
	require.InDelta(t, runs+1, testutil.ToFloat64(radarPipelineRunsTotal.WithLabelValues("metrics_test")), 0)

	ObserveHandoffFailure("metrics_test")
	require.InDelta(t, 1, testutil.ToFloat64(radarHandoffFailuresTotal.WithLabelValues("metrics_test")), 0)
}
