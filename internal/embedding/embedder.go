// Package embedding provides text embedding clients and caching.
package embedding

import (
	"context"
	"errors"
)

var (
	// ErrMissingAPIKey is returned when a hosted embedding model is configured without a token.
	ErrMissingAPIKey = errors.New("embedding: missing API key")
	// ErrEndpoint wraps transport failures and bad responses from the embedding endpoint.
	ErrEndpoint = errors.New("embedding: endpoint error")
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// HashString returns a deterministic non-negative hash of s.
func HashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	return h
}
