package embedding

import "context"

// Provider is a text embedding backend.
//
// Implementations are not required to be safe for concurrent use; the Client
// serialises access according to its worker bound.
type Provider interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension is the length of every vector returned by Embed.
	Dimension() int

	Close() error
}

// Encoder is the contract consumers depend on. *Client implements it.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	EncodeOne(ctx context.Context, text string) ([]float32, error)
	EncodeAsync(ctx context.Context, texts []string) <-chan Result
	Dimension() int
}

// Result is delivered on the channel returned by EncodeAsync.
type Result struct {
	Vectors [][]float32
	Err     error
}
