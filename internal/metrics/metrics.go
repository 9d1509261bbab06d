// Package metrics holds the Prometheus collectors for the chat pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chenguang"

// Metrics groups the pipeline collectors. A nil *Metrics is a no-op.
type Metrics struct {
	chatRequests        *prometheus.CounterVec
	recallSource        *prometheus.CounterVec
	persistenceFailures *prometheus.CounterVec
	generationLatency   *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		// Labels: status (ok, bad_request, error)
		chatRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Chat requests by outcome",
		}, []string{"status"}),
		// Labels: source (semantic, keyword, recent, history, none), status
		recallSource: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memory",
			Name:      "recall_total",
			Help:      "Memory lookups by source and status",
		}, []string{"source", "status"}),
		// Labels: stage (memory, emotional_state, personality)
		persistenceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memory",
			Name:      "persistence_failures_total",
			Help:      "Swallowed persistence failures by stage",
		}, []string{"stage"}),
		// Labels: model, status (ok, error)
		generationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "latency_seconds",
			Help:      "Language model completion latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		}, []string{"model", "status"}),
	}
}

// ChatRequest counts a finished chat request.
func (m *Metrics) ChatRequest(status string) {
	if m == nil {
		return
	}
	m.chatRequests.WithLabelValues(status).Inc()
}

// Recall counts a recall or history lookup.
func (m *Metrics) Recall(source, status string) {
	if m == nil {
		return
	}
	m.recallSource.WithLabelValues(source, status).Inc()
}

// PersistenceFailure counts a write that was logged and dropped.
func (m *Metrics) PersistenceFailure(stage string) {
	if m == nil {
		return
	}
	m.persistenceFailures.WithLabelValues(stage).Inc()
}

// Generation observes one completion call.
func (m *Metrics) Generation(model string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.generationLatency.WithLabelValues(model, status).Observe(d.Seconds())
}
