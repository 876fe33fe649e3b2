// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	generations       *prometheus.CounterVec
	generationLatency *prometheus.HistogramVec
	quotaDenied       *prometheus.CounterVec
	pdfRenders        *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New(environment string) *Metrics {
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{"service": "proposalforge", "env": environment}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "proposalforge_generations_total",
				Help:        "Proposal generations by credential source and result.",
				ConstLabels: constLabels,
			},
			[]string{"credential", "result"}, // success | upstream_error | validation_error
		),
		generationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "proposalforge_generation_duration_seconds",
				Help:        "Latency of calls to the text generation capability.",
				ConstLabels: constLabels,
				Buckets:     []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
			},
			[]string{"credential"},
		),
		quotaDenied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "proposalforge_quota_denied_total",
				Help:        "Generations refused because the quota was exhausted.",
				ConstLabels: constLabels,
			},
			[]string{"identity"}, // anonymous | account
		),
		pdfRenders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "proposalforge_pdf_renders_total",
				Help:        "PDF exports by theme and result.",
				ConstLabels: constLabels,
			},
			[]string{"theme", "result"},
		),
	}

	m.registry.MustRegister(m.generations, m.generationLatency, m.quotaDenied, m.pdfRenders)
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveGeneration(credential, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(credential, result).Inc()
	if elapsed > 0 {
		m.generationLatency.WithLabelValues(credential).Observe(elapsed.Seconds())
	}
}

func (m *Metrics) ObserveQuotaDenied(identity string) {
	if m == nil {
		return
	}
	m.quotaDenied.WithLabelValues(identity).Inc()
}

func (m *Metrics) ObservePDFRender(theme, result string) {
	if m == nil {
		return
	}
	m.pdfRenders.WithLabelValues(theme, result).Inc()
}
