// Package metrics groups the Prometheus instruments exported by the
// service. Construct one Metrics per process; promauto registers
// instruments on the default registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every instrument name.
const DefaultNamespace = "muninn"

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	TurnsSaved        *prometheus.CounterVec
	DegradedWrites    prometheus.Counter
	Searches          prometheus.Counter
	LazyEmbeds        prometheus.Counter
	Compactions       prometheus.Counter
	ProviderErrors    *prometheus.CounterVec
	CompactionLatency prometheus.Histogram
}

// NewMetrics registers and returns the service instruments.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Metrics{
		TurnsSaved: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_saved_total",
			Help:      "Conversation turns persisted, by speaker role.",
		}, []string{"role"}),
		DegradedWrites: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_writes_total",
			Help:      "Saves that reached memory but not disk.",
		}),
		Searches: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Semantic search requests served.",
		}),
		LazyEmbeds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lazy_embeds_total",
			Help:      "Embeddings computed at search time for turns stored without one.",
		}),
		Compactions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compactions_total",
			Help:      "Context compactions that produced a summary turn.",
		}),
		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Upstream provider errors by capability.",
		}, []string{"capability"}),
		CompactionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compaction_latency_ms",
			Help:      "End-to-end context compaction latency in milliseconds.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
	}
}

// ObserveCompactionLatency records one compaction's wall time.
func (m *Metrics) ObserveCompactionLatency(d time.Duration) {
	m.CompactionLatency.Observe(float64(d.Milliseconds()))
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
