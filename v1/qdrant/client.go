package qdrant

import (
	"context"
	"fmt"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
)

const (
	defaultPort      = 6334
	defaultBatchSize = 200
)

// QdrantClient owns the gRPC connection to Qdrant.
//
// It performs a health check on construction so that an unreachable server
// fails application startup. Data operations live on Adapter.
type QdrantClient struct {
	api    *qdrant.Client
	cfg    Config
	logger logger.Logger
}

// NewQdrantClient connects to Qdrant and verifies it is healthy.
func NewQdrantClient(cfg Config, log logger.Logger) (*QdrantClient, error) {
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}

	log.Info("Connecting to Qdrant", nil, map[string]interface{}{
		"endpoint": cfg.Endpoint,
		"port":     port,
	})

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   cfg.Endpoint,
		Port:                   port,
		APIKey:                 cfg.APIKey,
		SkipCompatibilityCheck: !cfg.CheckCompatibility,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to initialize client: %w", err)
	}

	qc := &QdrantClient{api: client, cfg: cfg, logger: log}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := qc.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	log.Info("Qdrant client connected", nil, nil)
	return qc, nil
}

// HealthCheck calls the Qdrant health endpoint.
func (c *QdrantClient) HealthCheck(ctx context.Context) error {
	if c.api == nil {
		return fmt.Errorf("qdrant: client not initialized")
	}

	resp, err := c.api.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("qdrant: health check failed: %w", err)
	}

	c.logger.Debug("Qdrant health check passed", nil, map[string]interface{}{
		"title":   resp.GetTitle(),
		"version": resp.GetVersion(),
	})
	return nil
}

// Client returns the underlying SDK client.
func (c *QdrantClient) Client() *qdrant.Client {
	return c.api
}

// Close closes the gRPC connection.
func (c *QdrantClient) Close() error {
	if c.api == nil {
		return nil
	}
	c.logger.Info("Closing Qdrant client", nil, nil)
	return c.api.Close()
}
