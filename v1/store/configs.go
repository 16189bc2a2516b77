package store

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config selects the relational backend. The memory backend keeps everything in
// process and is lost on restart.
type Config struct {
	Backend string `yaml:"backend" koanf:"backend" env:"STORE_BACKEND"`
}

// DefaultConfig selects the PostgreSQL backend.
func DefaultConfig() Config {
	return Config{Backend: BackendPostgres}
}
