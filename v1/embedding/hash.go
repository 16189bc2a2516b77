package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

const defaultHashDimension = 64

// HashProvider is a deterministic bag-of-words embedder. Each lower-cased word is
// hashed into one of Dimension buckets. Texts sharing words get positive cosine
// similarity and identical texts score 1 after normalisation.
//
// It needs no model download and is meant for development and tests.
type HashProvider struct {
	dimension int
}

// NewHashProvider returns a HashProvider. A non-positive dimension selects 64.
func NewHashProvider(dimension int) *HashProvider {
	if dimension <= 0 {
		dimension = defaultHashDimension
	}
	return &HashProvider{dimension: dimension}
}

func (h *HashProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.vector(t)
	}
	return out, nil
}

func (h *HashProvider) vector(text string) []float32 {
	v := make([]float32, h.dimension)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		f := fnv.New32a()
		_, _ = f.Write([]byte(w))
		v[f.Sum32()%uint32(h.dimension)]++
	}
	if len(words) == 0 {
		// keeps blank input embeddable
		v[0] = 1
	}
	return v
}

func (h *HashProvider) Dimension() int { return h.dimension }

func (h *HashProvider) Close() error { return nil }
