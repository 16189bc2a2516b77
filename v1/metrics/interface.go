package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector provides an interface for collecting and exposing application metrics.
//
// This interface is implemented by the concrete *Metrics type.
type MetricsCollector interface {
	// IncrementRequests increments the HTTP request counter for a route and status code class.
	IncrementRequests(route, status string)

	// RecordRequestDuration records the duration (in seconds) for an HTTP route.
	RecordRequestDuration(start time.Time, route string)

	// RecordPointsUsed records how many retrieved chunks were handed to the LLM.
	RecordPointsUsed(mode string, points int)

	// IncrementSideWriteFailures counts a failed best-effort write to a user collection.
	IncrementSideWriteFailures(role string)

	// IncrementDocumentsIngested counts a finished ingest with the given status.
	IncrementDocumentsIngested(status string)

	// CreateCounter creates a new CounterVec metric and registers it.
	CreateCounter(name, help string, labels []string) *prometheus.CounterVec

	// CreateHistogram creates a new HistogramVec metric and registers it.
	CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec

	// CreateGauge creates a new GaugeVec metric and registers it.
	CreateGauge(name, help string, labels []string) *prometheus.GaugeVec
}
