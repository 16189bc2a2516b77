package tracer

// Config holds the tracer settings.
type Config struct {
	// ServiceName is recorded as the service.name resource attribute.
	ServiceName string `yaml:"service_name" koanf:"service_name" env:"TRACER_SERVICE_NAME"`

	// AppEnv is recorded as deployment.environment.
	AppEnv string `yaml:"app_env" koanf:"app_env" env:"APP_ENV"`

	// EnableExport turns on the OTLP/HTTP batch exporter. When false spans are
	// still created (so trace ids reach the logs) but never leave the process.
	EnableExport bool `yaml:"enable_export" koanf:"enable_export" env:"TRACER_ENABLE_EXPORT"`

	// Endpoint overrides the collector URL, e.g. "http://otel-collector:4318".
	// Empty means the standard OTEL_EXPORTER_OTLP_* environment variables apply.
	Endpoint string `yaml:"endpoint" koanf:"endpoint" env:"TRACER_ENDPOINT"`
}
