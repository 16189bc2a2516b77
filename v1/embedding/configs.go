package embedding

import (
	"errors"
	"fmt"
)

// Provider kinds accepted in Config.Provider.
const (
	ProviderFastEmbed = "fastembed"
	ProviderRemote    = "remote"
	ProviderHash      = "hash"
)

const (
	DefaultModel   = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultWorkers = 1
	MaxWorkers     = 2
)

// ErrInvalidConfig is returned when Config.Validate fails.
var ErrInvalidConfig = errors.New("embedding: invalid config")

// Config defines how the embedding client is built.
type Config struct {
	// Provider selects the backend: "fastembed" (local ONNX), "remote"
	// (an OpenAI-compatible embeddings endpoint) or "hash" (offline, for development).
	Provider string `yaml:"provider" koanf:"provider" env:"EMBEDDING_PROVIDER"`

	// Model is the embedding model name.
	Model string `yaml:"model" koanf:"model" env:"EMBEDDING_MODEL"`

	// CacheDir is where local models are downloaded.
	CacheDir string `yaml:"cache_dir" koanf:"cache_dir" env:"EMBEDDING_CACHE_DIR"`

	// MaxLength is the maximum token sequence length for local models.
	MaxLength int `yaml:"max_length" koanf:"max_length" env:"EMBEDDING_MAX_LENGTH"`

	// Workers bounds concurrent model invocations (1 or 2).
	Workers int `yaml:"workers" koanf:"workers" env:"EMBEDDING_WORKERS"`

	// BaseURL and APIKey are used by the remote provider only.
	BaseURL string `yaml:"base_url" koanf:"base_url" env:"EMBEDDING_BASE_URL"`
	APIKey  string `yaml:"api_key" koanf:"api_key" env:"EMBEDDING_API_KEY"`

	// Dimension overrides the measured dimension of the remote provider and sets the
	// dimension of the hash provider.
	Dimension int `yaml:"dimension" koanf:"dimension" env:"EMBEDDING_DIMENSION"`

	// BatchSize is the number of texts sent per remote request.
	BatchSize int `yaml:"batch_size" koanf:"batch_size" env:"EMBEDDING_BATCH_SIZE"`
}

// DefaultConfig returns a local fastembed configuration.
func DefaultConfig() Config {
	return Config{
		Provider:  ProviderFastEmbed,
		Model:     DefaultModel,
		CacheDir:  "local_cache",
		MaxLength: 512,
		Workers:   DefaultWorkers,
		BatchSize: 64,
	}
}

// Validate checks the configuration. Zero Workers is treated as DefaultWorkers.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderFastEmbed, ProviderRemote, ProviderHash:
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidConfig)
	}
	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be between 1 and %d, got %d", ErrInvalidConfig, MaxWorkers, c.Workers)
	}
	if c.Provider == ProviderRemote && c.BaseURL == "" {
		return fmt.Errorf("%w: base_url is required for the remote provider", ErrInvalidConfig)
	}
	if c.Dimension < 0 {
		return fmt.Errorf("%w: dimension must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers == 0 {
		return DefaultWorkers
	}
	return c.Workers
}
