package embedding

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/observability"
)

// Client is the public entrypoint for computing embeddings.
//
// Model invocations run under a bounded worker pool of Config.Workers slots. Callers
// waiting for a slot block only themselves; the request path stays free to serve
// other work. All vectors are L2-normalised before they are returned.
type Client struct {
	provider  Provider
	sem       *semaphore.Weighted
	workers   int64
	closed    atomic.Bool
	logger    logger.Logger
	observer  observability.Observer
	modelName string
}

// NewClient wraps an already constructed Provider.
func NewClient(p Provider, workers int, log logger.Logger, observer observability.Observer, modelName string) (*Client, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: provider is nil", ErrInvalidConfig)
	}
	if workers == 0 {
		workers = DefaultWorkers
	}
	if workers < 1 || workers > MaxWorkers {
		return nil, fmt.Errorf("%w: workers must be between 1 and %d, got %d", ErrInvalidConfig, MaxWorkers, workers)
	}
	if p.Dimension() <= 0 {
		return nil, fmt.Errorf("%w: provider reports dimension %d", ErrInvalidConfig, p.Dimension())
	}

	return &Client{
		provider:  p,
		sem:       semaphore.NewWeighted(int64(workers)),
		workers:   int64(workers),
		logger:    log,
		observer:  observer,
		modelName: modelName,
	}, nil
}

// NewClientFromConfig validates cfg, builds the configured provider and wraps it.
func NewClientFromConfig(ctx context.Context, cfg Config, log logger.Logger, observer observability.Observer) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case ProviderRemote:
		p, err = NewRemoteProvider(ctx, cfg)
	case ProviderHash:
		p = NewHashProvider(cfg.Dimension)
	default:
		p, err = NewFastEmbedProvider(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("embedding: failed to create %s provider: %w", cfg.Provider, err)
	}

	c, err := NewClient(p, cfg.workers(), log, observer, cfg.Model)
	if err != nil {
		_ = p.Close()
		return nil, err
	}

	if log != nil {
		log.Info("Embedding model loaded", nil, map[string]interface{}{
			"provider":  cfg.Provider,
			"model":     cfg.Model,
			"dimension": c.Dimension(),
			"workers":   c.workers,
		})
	}
	return c, nil
}

// Encode embeds texts in input order. An empty input returns an empty result
// without touching the model.
func (c *Client) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if c.closed.Load() {
		return nil, ErrClosed
	}

	start := time.Now()
	vectors, err := c.encode(ctx, texts)
	c.observeOperation("encode", len(texts), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

func (c *Client) encode(ctx context.Context, texts []string) ([][]float32, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: waiting for worker: %w", ErrEmbeddingFailure, err)
	}
	defer c.sem.Release(1)

	raw, err := c.provider.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailure, err)
	}
	if len(raw) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingFailure, len(raw), len(texts))
	}

	dim := c.provider.Dimension()
	out := make([][]float32, len(raw))
	for i, v := range raw {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, expected %d", ErrEmbeddingFailure, i, len(v), dim)
		}
		n, ok := normalize(v)
		if !ok {
			return nil, fmt.Errorf("%w: vector %d has zero norm", ErrEmbeddingFailure, i)
		}
		out[i] = n
	}
	return out, nil
}

// EncodeOne embeds a single text.
func (c *Client) EncodeOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Encode(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EncodeAsync runs Encode on its own goroutine. The returned channel receives
// exactly one Result and is then closed.
func (c *Client) EncodeAsync(ctx context.Context, texts []string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		vectors, err := c.Encode(ctx, texts)
		ch <- Result{Vectors: vectors, Err: err}
	}()
	return ch
}

// Dimension returns the vector length produced by the model.
func (c *Client) Dimension() int {
	return c.provider.Dimension()
}

// Close waits for in-flight encodes and releases the model.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	if err := c.sem.Acquire(context.Background(), c.workers); err == nil {
		defer c.sem.Release(c.workers)
	}
	return c.provider.Close()
}

func (c *Client) observeOperation(operation string, size int, duration time.Duration, err error) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveOperation(observability.OperationContext{
		Component: "embedding",
		Operation: operation,
		Resource:  c.modelName,
		Duration:  duration,
		Error:     err,
		Size:      int64(size),
	})
}
