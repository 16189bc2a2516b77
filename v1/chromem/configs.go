package chromem

// Config configures the embedded vector store.
type Config struct {
	// Path enables on-disk persistence. Empty keeps everything in memory.
	Path string `yaml:"path" koanf:"path" env:"CHROMEM_PATH"`

	// Compress gzips persisted files.
	Compress bool `yaml:"compress" koanf:"compress" env:"CHROMEM_COMPRESS"`
}
