package llm

import (
	"errors"
	"fmt"
)

const (
	DefaultModel         = "deepseek/deepseek-r1-0528:free"
	DefaultBaseURL       = "https://openrouter.ai/api/v1"
	DefaultMaxTokens     = 1000
	MaxMaxTokens         = 4000
	DefaultTemperature   = 0.7
	DefaultHistoryWindow = 10
)

// ErrInvalidConfig is returned when Config.Validate fails.
var ErrInvalidConfig = errors.New("llm: invalid config")

// Config defines the chat completion endpoint and generation defaults.
type Config struct {
	// BaseURL of an OpenAI-compatible chat completions API.
	BaseURL string `yaml:"base_url" koanf:"base_url" env:"LLM_BASE_URL"`

	// APIKey is sent as bearer token. OPENROUTER_API_KEY is honoured as well.
	APIKey string `yaml:"api_key" koanf:"api_key" env:"LLM_API_KEY"`

	Model string `yaml:"model" koanf:"model" env:"LLM_MODEL"`

	// MaxTokens is used when a request does not set one.
	MaxTokens int `yaml:"max_tokens" koanf:"max_tokens" env:"LLM_MAX_TOKENS"`

	Temperature float64 `yaml:"temperature" koanf:"temperature" env:"LLM_TEMPERATURE"`

	// HistoryWindow is the number of prior turns sent with a request.
	HistoryWindow int `yaml:"history_window" koanf:"history_window" env:"LLM_HISTORY_WINDOW"`

	// SystemPrompt wraps the retrieved context. It must contain one %s verb.
	SystemPrompt string `yaml:"system_prompt" koanf:"system_prompt" env:"LLM_SYSTEM_PROMPT"`
}

// DefaultConfig returns the gateway defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		Model:         DefaultModel,
		MaxTokens:     DefaultMaxTokens,
		Temperature:   DefaultTemperature,
		HistoryWindow: DefaultHistoryWindow,
		SystemPrompt:  DefaultSystemPrompt,
	}
}

// Validate reports an ErrInvalidConfig for a missing model or out-of-range sampling
// settings.
func (c Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidConfig)
	}
	if c.MaxTokens < 1 || c.MaxTokens > MaxMaxTokens {
		return fmt.Errorf("%w: max_tokens must be in [1, %d], got %d", ErrInvalidConfig, MaxMaxTokens, c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be in [0, 2], got %v", ErrInvalidConfig, c.Temperature)
	}
	if c.HistoryWindow < 0 {
		return fmt.Errorf("%w: history_window must not be negative", ErrInvalidConfig)
	}
	return nil
}
