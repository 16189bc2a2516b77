package vectorstore

const (
	BackendQdrant  = "qdrant"
	BackendChromem = "chromem"

	DefaultCollection = "documents"
)

// Config selects the vector backend and the shared document collection.
type Config struct {
	// Backend is "qdrant" (default) or "chromem".
	Backend string `yaml:"backend" koanf:"backend" env:"VECTORSTORE_BACKEND"`

	// Collection is the shared collection holding document chunks.
	Collection string `yaml:"collection" koanf:"collection" env:"VECTORSTORE_COLLECTION"`
}

// DefaultConfig returns the qdrant backend with the "documents" collection.
func DefaultConfig() Config {
	return Config{Backend: BackendQdrant, Collection: DefaultCollection}
}
