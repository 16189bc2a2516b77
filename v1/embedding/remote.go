package embedding

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// RemoteProvider calls an OpenAI-compatible embeddings endpoint
// (text-embeddings-inference, vLLM, OpenAI itself).
type RemoteProvider struct {
	embedder  embeddings.Embedder
	dimension int
}

// NewRemoteProvider builds the langchaingo embedder. When cfg.Dimension is zero the
// dimension is measured once with a single-word request.
func NewRemoteProvider(ctx context.Context, cfg Config) (*RemoteProvider, error) {
	token := cfg.APIKey
	if token == "" {
		// the openai client refuses an empty token even for servers that ignore it
		token = "unused"
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithEmbeddingModel(cfg.Model),
		openai.WithToken(token),
	)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	opts := []embeddings.Option{embeddings.WithStripNewLines(true)}
	if cfg.BatchSize > 0 {
		opts = append(opts, embeddings.WithBatchSize(cfg.BatchSize))
	}
	embedder, err := embeddings.NewEmbedder(llm, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return newRemoteProvider(ctx, embedder, cfg.Dimension)
}

func newRemoteProvider(ctx context.Context, embedder embeddings.Embedder, dimension int) (*RemoteProvider, error) {
	p := &RemoteProvider{embedder: embedder, dimension: dimension}
	if p.dimension > 0 {
		return p, nil
	}

	sample, err := embedder.EmbedQuery(ctx, "dimension")
	if err != nil {
		return nil, fmt.Errorf("measuring embedding dimension: %w", err)
	}
	if len(sample) == 0 {
		return nil, fmt.Errorf("%w: endpoint returned an empty vector", ErrEmbeddingFailure)
	}
	p.dimension = len(sample)
	return p, nil
}

func (p *RemoteProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return p.embedder.EmbedDocuments(ctx, texts)
}

func (p *RemoteProvider) Dimension() int {
	return p.dimension
}

func (p *RemoteProvider) Close() error {
	return nil
}
