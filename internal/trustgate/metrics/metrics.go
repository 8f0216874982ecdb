package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the trust gate.
type Metrics struct {
	// Gate evaluations by result: "cleared", "raised", "error"
	Evaluations *prometheus.CounterVec

	// Resolutions by decision kind
	Decisions *prometheus.CounterVec

	// Approval commit latency, including queueing on the commit context
	CommitLatency prometheus.Histogram

	// Approval commits that failed to persist
	CommitFailures prometheus.Counter
}

// New creates and registers trust gate metrics with the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers trust gate metrics with reg. Tests pass a fresh registry to
// avoid duplicate registration panics.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sendgate_trustgate_evaluations_total",
			Help: "Trust gate evaluations by result",
		}, []string{"result"}),

		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sendgate_trustgate_decisions_total",
			Help: "Trust prompt resolutions by decision kind",
		}, []string{"decision"}),

		CommitLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sendgate_trustgate_commit_duration_seconds",
			Help:    "Duration of identity approval commits",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		CommitFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "sendgate_trustgate_commit_failures_total",
			Help: "Identity approval commits that failed to persist",
		}),
	}
}

// IncrementEvaluation records an evaluation result.
func (m *Metrics) IncrementEvaluation(result string) {
	if m != nil {
		m.Evaluations.WithLabelValues(result).Inc()
	}
}

// IncrementDecision records a resolution.
func (m *Metrics) IncrementDecision(kind string) {
	if m != nil {
		m.Decisions.WithLabelValues(kind).Inc()
	}
}

// ObserveCommit records a commit duration and whether it failed.
func (m *Metrics) ObserveCommit(d time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.CommitLatency.Observe(d.Seconds())
	if failed {
		m.CommitFailures.Inc()
	}
}
