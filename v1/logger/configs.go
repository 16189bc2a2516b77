package logger

const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config defines the logger settings.
type Config struct {
	// Level selects the minimum level that is written.
	// Accepted values are "debug", "info", "warning" and "error"; anything else means "info".
	Level string `yaml:"level" koanf:"level" env:"ZAP_LOGGER_LEVEL"`

	// ServiceName is attached to every entry as the "service" field.
	ServiceName string `yaml:"service_name" koanf:"service_name" env:"LOGGER_SERVICE_NAME"`

	// EnableTracing makes the *WithContext methods add trace_id and span_id
	// taken from the active OpenTelemetry span.
	EnableTracing bool `yaml:"enable_tracing" koanf:"enable_tracing" env:"LOGGER_ENABLE_TRACING"`
}
