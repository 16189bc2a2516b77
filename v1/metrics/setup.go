package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates the Prometheus registry and HTTP server responsible
// for exposing application metrics.
type Metrics struct {
	// Server defines the HTTP server used to expose the /metrics endpoint.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	// Each service maintains its own isolated registry to prevent metric name collisions.
	Registry *prometheus.Registry

	registerer prometheus.Registerer
	namespace  string

	// HTTP metrics
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	// Component operation metrics fed by the operation observer
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec

	// Retrieval metrics
	pointsUsed        *prometheus.HistogramVec
	sideWriteFailures *prometheus.CounterVec
	documentsIngested *prometheus.CounterVec
}

// NewMetrics initializes and returns a new instance of the Metrics struct.
// It sets up a dedicated Prometheus registry, registers default system collectors,
// wraps all metrics with a constant `service` label, and creates an HTTP server
// exposing the /metrics endpoint.
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{
//	    Address:                 ":9090",
//	    Namespace:               "ragcore",
//	    ServiceName:             "ragserver",
//	    EnableDefaultCollectors: true,
//	})
//	go m.Server.ListenAndServe()
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	// All metrics emitted by this service carry service="<cfg.ServiceName>".
	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry:   registry,
		registerer: wrappedRegistry,
		namespace:  cfg.Namespace,
	}

	m.requestsTotal = m.newCounterVec("http_requests_total", "Total number of processed HTTP requests", []string{"route", "status"})
	m.requestDuration = m.newHistogramVec("http_request_duration_seconds", "Duration of HTTP requests in seconds", []string{"route"}, prometheus.DefBuckets)
	m.operationsTotal = m.newCounterVec("operations_total", "Total number of component operations", []string{"component", "operation", "status"})
	m.operationDuration = m.newHistogramVec("operation_duration_seconds", "Duration of component operations in seconds", []string{"component", "operation"}, prometheus.DefBuckets)
	m.pointsUsed = m.newHistogramVec("retrieval_points_used", "Number of retrieved chunks that survived the relevance threshold", []string{"mode"}, []float64{0, 1, 2, 3, 5, 8, 13, 20})
	m.sideWriteFailures = m.newCounterVec("side_write_failures_total", "Best-effort writes to user collections that failed", []string{"role"})
	m.documentsIngested = m.newCounterVec("documents_ingested_total", "Documents processed by the ingest pipeline", []string{"status"})

	wrappedRegistry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.operationsTotal,
		m.operationDuration,
		m.pointsUsed,
		m.sideWriteFailures,
		m.documentsIngested,
	)

	// Go runtime, process and build info collectors.
	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	address := cfg.Address
	if address == "" {
		address = DefaultMetricsAddress
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	m.Server = &http.Server{
		Addr:    address,
		Handler: mux,
	}
	return m
}
