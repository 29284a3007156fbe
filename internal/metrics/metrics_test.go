package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lumen/internal/metrics"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestRecordersUpdateCounters(t *testing.T) {
	m := metrics.New()
	m.RecordSynthesis(metrics.OutcomeSuccess, 2*time.Second)
	m.RecordSynthesis(metrics.OutcomeUnavailable, 0)
	m.RecordProviderRequest("openrouter", metrics.OutcomeFailure)
	m.RecordCache("miss")
	m.RecordToneAdjustment("exploratory")
	m.RecordLineageFailure()

	out := scrape(t, m)
	for _, want := range []string{
		`lumen_synthesis_total{outcome="success"} 1`,
		`lumen_synthesis_total{outcome="unavailable"} 1`,
		`lumen_provider_requests_total{outcome="failure",provider="openrouter"} 1`,
		`lumen_guidance_cache_total{result="miss"} 1`,
		`lumen_tone_adjustments_total{tone="exploratory"} 1`,
		`lumen_lineage_write_failures_total 1`,
		`lumen_synthesis_duration_seconds_count 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *metrics.Metrics
	m.RecordSynthesis(metrics.OutcomeSuccess, time.Second)
	m.RecordProviderRequest("x", "y")
	m.RecordCache("hit")
	m.RecordToneAdjustment("definitive")
	m.RecordLineageFailure()
	m.RecordHTTPRequest("GET", "/", "200", time.Millisecond)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Fatalf("expected 404 from nil metrics handler, got %d", rec.Code)
	}
}
