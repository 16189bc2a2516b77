package metrics

// DefaultMetricsAddress is used when no address is configured.
const DefaultMetricsAddress = ":9090"

// Config defines the configuration structure for the Prometheus metrics server.
type Config struct {
	// Address determines the network address where the Prometheus
	// metrics HTTP server listens, e.g. ":9090" or "127.0.0.1:9100".
	//
	// Default: ":9090"
	Address string `yaml:"address" koanf:"address" env:"METRICS_ADDRESS"`

	// EnableDefaultCollectors controls whether the Go runtime, process
	// and build info collectors are registered.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" koanf:"enable_default_collectors" env:"METRICS_ENABLE_DEFAULT_COLLECTORS"`

	// Namespace prefixes every metric name registered by this package,
	// e.g. "ragcore" turns "operations_total" into "ragcore_operations_total".
	Namespace string `yaml:"namespace" koanf:"namespace" env:"METRICS_NAMESPACE"`

	// ServiceName is attached to every series as the constant label service="<name>".
	ServiceName string `yaml:"service_name" koanf:"service_name" env:"METRICS_SERVICE_NAME"`
}
