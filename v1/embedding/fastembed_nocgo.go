//go:build !cgo

package embedding

import "context"

// FastEmbedProvider is unavailable in binaries built without cgo.
type FastEmbedProvider struct{}

// NewFastEmbedProvider always fails with ErrProviderUnavailable.
func NewFastEmbedProvider(_ Config) (*FastEmbedProvider, error) {
	return nil, ErrProviderUnavailable
}

func (p *FastEmbedProvider) Embed(_ context.Context, _ []string) ([][]float32, error) {
	return nil, ErrProviderUnavailable
}

func (p *FastEmbedProvider) Dimension() int { return 0 }

func (p *FastEmbedProvider) Close() error { return nil }
