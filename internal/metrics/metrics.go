// Package metrics exposes the Prometheus instruments lumen records while
// resolving guidance. Every method is safe on a nil *Metrics so components can
// run without instrumentation in tests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by synthesis and provider counters.
const (
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
	OutcomeDegraded    = "degraded"
	OutcomeUnavailable = "unavailable"
	OutcomeCancelled   = "cancelled"
)

// Metrics holds all Prometheus metrics for lumen.
type Metrics struct {
	registry prometheus.Gatherer

	SynthesisTotal       *prometheus.CounterVec
	SynthesisDuration    prometheus.Histogram
	ProviderRequests     *prometheus.CounterVec
	CacheResults         *prometheus.CounterVec
	ToneAdjustments      *prometheus.CounterVec
	LineageWriteFailures prometheus.Counter
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

// New registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return newWith(reg, reg)
}

func newWith(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		registry: gatherer,
		SynthesisTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lumen_synthesis_total",
				Help: "Synthesis attempts by outcome",
			},
			[]string{"outcome"},
		),
		SynthesisDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lumen_synthesis_duration_seconds",
				Help:    "Wall time spent generating and calibrating an insight",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 9), // 0.25s to 64s
			},
		),
		ProviderRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lumen_provider_requests_total",
				Help: "Text-generation requests by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		CacheResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lumen_guidance_cache_total",
				Help: "Guidance cache lookups by result",
			},
			[]string{"result"},
		),
		ToneAdjustments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lumen_tone_adjustments_total",
				Help: "Insights rewritten to match their confidence, by target tone",
			},
			[]string{"tone"},
		),
		LineageWriteFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lumen_lineage_write_failures_total",
				Help: "Lineage records that could not be persisted",
			},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lumen_http_requests_total",
				Help: "API requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lumen_http_request_duration_seconds",
				Help:    "API request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordSynthesis(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SynthesisTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess || outcome == OutcomeDegraded {
		m.SynthesisDuration.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) RecordProviderRequest(provider, outcome string) {
	if m == nil {
		return
	}
	m.ProviderRequests.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) RecordCache(result string) {
	if m == nil {
		return
	}
	m.CacheResults.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordToneAdjustment(tone string) {
	if m == nil {
		return
	}
	m.ToneAdjustments.WithLabelValues(tone).Inc()
}

func (m *Metrics) RecordLineageFailure() {
	if m == nil {
		return
	}
	m.LineageWriteFailures.Inc()
}

func (m *Metrics) RecordHTTPRequest(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
