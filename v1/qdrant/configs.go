package qdrant

import "time"

// Config holds connection settings for the Qdrant client.
//
// Example:
//
//	cfg := qdrant.DefaultConfig()
//	cfg.Endpoint = "qdrant.internal"
//	cfg.APIKey = os.Getenv("QDRANT_API_KEY")
type Config struct {
	// Hostname of the Qdrant server, e.g. "localhost".
	Endpoint string `yaml:"endpoint" koanf:"endpoint" env:"QDRANT_ENDPOINT"`

	// gRPC port of the Qdrant server. Defaults to 6334.
	Port int `yaml:"port" koanf:"port" env:"QDRANT_PORT"`

	// Optional authentication token for secured deployments.
	APIKey string `yaml:"api_key" koanf:"api_key" env:"QDRANT_API_KEY"`

	// Whether to check client/server version compatibility on connect.
	CheckCompatibility bool `yaml:"check_compatibility" koanf:"check_compatibility" env:"QDRANT_CHECK_COMPATIBILITY"`

	// Timeout bounds the startup health check.
	Timeout time.Duration `yaml:"timeout" koanf:"timeout" env:"QDRANT_TIMEOUT"`

	// BatchSize is the number of points sent per upsert request.
	BatchSize int `yaml:"batch_size" koanf:"batch_size" env:"QDRANT_BATCH_SIZE"`
}

// DefaultConfig returns settings for a local Qdrant.
func DefaultConfig() Config {
	return Config{
		Endpoint:           "localhost",
		Port:               6334,
		Timeout:            5 * time.Second,
		CheckCompatibility: false,
		BatchSize:          defaultBatchSize,
	}
}
