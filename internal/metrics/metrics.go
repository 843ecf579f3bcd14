// Package metrics exposes prometheus instrumentation for chat sessions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var _ prometheus.Collector = (*Metrics)(nil)

// Metrics implements chat.Recorder on top of prometheus collectors
type Metrics struct {
	Submissions prometheus.Counter
	Rejected    *prometheus.CounterVec
	Failures    *prometheus.CounterVec
	Busy        prometheus.Gauge
	Generation  prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		Submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cookieschat",
			Subsystem: "chat",
			Name:      "submissions_total",
			Help:      "Total number of accepted submissions",
		}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cookieschat",
			Subsystem: "chat",
			Name:      "rejected_total",
			Help:      "Total number of ignored submissions by reason",
		}, []string{"reason"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cookieschat",
			Subsystem: "chat",
			Name:      "failures_total",
			Help:      "Total number of turns answered with the fallback message, by error kind",
		}, []string{"kind"}),
		Busy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cookieschat",
			Subsystem: "chat",
			Name:      "busy",
			Help:      "1 while a generation request is in flight",
		}),
		Generation: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cookieschat",
			Subsystem: "chat",
			Name:      "generation_seconds",
			Help:      "Duration of generation requests",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 160},
		}),
	}
}

// Accepted records an accepted submission.
func (m *Metrics) Accepted() {
	m.Submissions.Inc()
	m.Busy.Set(1)
}

// RejectedSubmission records an ignored submission.
func (m *Metrics) RejectedSubmission(reason string) {
	m.Rejected.WithLabelValues(reason).Inc()
}

// Settled records the end of a generation request. kind is empty on success.
func (m *Metrics) Settled(d time.Duration, kind string) {
	m.Busy.Set(0)
	m.Generation.Observe(d.Seconds())
	if kind != "" {
		m.Failures.WithLabelValues(kind).Inc()
	}
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(c chan<- prometheus.Metric) {
	m.Submissions.Collect(c)
	m.Rejected.Collect(c)
	m.Failures.Collect(c)
	m.Busy.Collect(c)
	m.Generation.Collect(c)
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(d chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(m, d)
}
