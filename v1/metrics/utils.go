package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IncrementRequests increments the request counter.
// Example: metrics.IncrementRequests("/api/v1/chat", "2xx")
func (m *Metrics) IncrementRequests(route, status string) {
	m.requestsTotal.WithLabelValues(route, status).Inc()
}

// RecordRequestDuration records the duration (in seconds) for a route.
// Example: defer metrics.RecordRequestDuration(time.Now(), "/api/v1/chat")
func (m *Metrics) RecordRequestDuration(start time.Time, route string) {
	m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}

// RecordPointsUsed observes the number of context chunks used for one query.
func (m *Metrics) RecordPointsUsed(mode string, points int) {
	m.pointsUsed.WithLabelValues(mode).Observe(float64(points))
}

// IncrementSideWriteFailures counts a failed best-effort user collection write.
func (m *Metrics) IncrementSideWriteFailures(role string) {
	m.sideWriteFailures.WithLabelValues(role).Inc()
}

// IncrementDocumentsIngested counts one ingest outcome ("processed" or "failed").
func (m *Metrics) IncrementDocumentsIngested(status string) {
	m.documentsIngested.WithLabelValues(status).Inc()
}

// CreateCounter creates a new CounterVec metric and registers it.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := m.newCounterVec(name, help, labels)
	m.registerer.MustRegister(counter)
	return counter
}

// CreateHistogram creates a new HistogramVec metric and registers it.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := m.newHistogramVec(name, help, labels, buckets)
	m.registerer.MustRegister(hist)
	return hist
}

// CreateGauge creates a new GaugeVec metric and registers it.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
	m.registerer.MustRegister(gauge)
	return gauge
}

func (m *Metrics) newCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func (m *Metrics) newHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}

// StatusClass maps an HTTP status code to its class label ("2xx", "4xx", ...).
func StatusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
