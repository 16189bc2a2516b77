package server

import "time"

// HeaderUserID carries the id of the authenticated user. Authentication happens
// upstream of this service.
const HeaderUserID = "X-User-ID"

// Config defines the HTTP API listener.
type Config struct {
	Host string `yaml:"host" koanf:"host" env:"SERVER_HOST"`
	Port int    `yaml:"port" koanf:"port" env:"SERVER_PORT"`

	ReadTimeout  time.Duration `yaml:"read_timeout" koanf:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" koanf:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`

	// BodyLimit is an echo size string such as "2M".
	BodyLimit string `yaml:"body_limit" koanf:"body_limit" env:"SERVER_BODY_LIMIT"`
}

// DefaultConfig listens on 0.0.0.0:8000 with a 10M body limit.
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8000,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    "10M",
	}
}
