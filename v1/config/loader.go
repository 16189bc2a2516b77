package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "RAG_"

const maxConfigFileSize = 1 << 20

// nested lists sections whose fields are grouped in sub-structs, longest prefix first.
var nested = map[string][]string{
	"postgres": {"connection_details", "connection"},
}

// Load builds the configuration in this order, later sources winning:
//
//  1. Default()
//  2. the YAML file at path, when path is not empty
//  3. variables from a .env file in the working directory, when present
//  4. environment variables with the RAG_ prefix
//
// Environment names map to keys by dropping the prefix, lower-casing and splitting the
// section at the first underscore: RAG_QDRANT_ENDPOINT sets qdrant.endpoint and
// RAG_POSTGRES_CONNECTION_HOST sets postgres.connection.host. OPENROUTER_API_KEY is used
// as llm.api_key when no key is configured.
func Load(path string) (*Config, error) {
	var raw []byte
	if path != "" {
		b, err := readFile(path)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Parse(raw)
}

// Parse is Load without file access: raw is YAML and may be empty.
func Parse(raw []byte) (*Config, error) {
	k := koanf.New(".")
	if len(raw) > 0 {
		if err := k.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	for _, sub := range nested[section] {
		if rest, found := strings.CutPrefix(field, sub+"_"); found {
			return section + "." + sub + "." + rest
		}
	}
	return section + "." + field
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return b, nil
}
