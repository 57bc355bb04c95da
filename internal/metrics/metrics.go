package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"horse.fit/textra/internal/textra"
)

const namespace = "textra"

// Metrics records translation outcomes. It implements textra.Observer.
type Metrics struct {
	registry     *prometheus.Registry
	translations *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: registry,
		translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "translations_total",
			Help:      "Translation calls by mode and outcome.",
		}, []string{"mode", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "translation_duration_seconds",
			Help:      "Translation call latency by mode.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"mode"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Translation cache lookups by result.",
		}, []string{"result"}),
	}
	registry.MustRegister(m.translations, m.latency, m.cacheLookups)
	return m
}

// ObserveTranslation counts one call under its failure kind ("ok" on success).
func (m *Metrics) ObserveTranslation(mode textra.Mode, kind textra.FailureKind, latency time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if kind != textra.FailureNone {
		outcome = kind.String()
	}
	m.translations.WithLabelValues(mode.String(), outcome).Inc()
	m.latency.WithLabelValues(mode.String()).Observe(latency.Seconds())
}

// ObserveCache counts a cache hit or miss.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
