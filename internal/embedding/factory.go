package embedding

import (
	"fmt"

	"github.com/hyperjump/fortytech/internal/config"
	"go.uber.org/zap"
)

// New builds the embedder selected by cfg.Provider, wrapped in an LRU cache.
func New(cfg config.EmbeddingConfig, apiKey string, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var inner Embedder
	switch cfg.Provider {
	case "huggingface", "":
		hf, err := NewHuggingFaceEmbedder(apiKey, cfg.Model, cfg.BaseURL,
			WithNormalize(cfg.Normalize), WithLogger(logger))
		if err != nil {
			return nil, err
		}
		inner = hf
	case "mock":
		inner = NewMockEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: huggingface, mock)", cfg.Provider)
	}
	if cfg.CacheSize > 0 {
		return NewCachedEmbedder(inner, cfg.CacheSize), nil
	}
	return inner, nil
}
