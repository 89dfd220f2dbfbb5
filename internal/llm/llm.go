// Package llm provides clients for hosted text-generation models.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/fortytech/internal/config"
	"go.uber.org/zap"
)

var (
	// ErrMissingAPIKey is returned when a hosted model is configured without a token.
	ErrMissingAPIKey = errors.New("llm: missing API key")
	// ErrEndpoint wraps a failed call to the model endpoint.
	ErrEndpoint = errors.New("llm: endpoint error")
)

// Client generates a completion for a prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Params are the sampling parameters sent with every request.
type Params struct {
	Temperature  float64
	MaxNewTokens int
}

// Option configures a client.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New builds the client selected by cfg.Provider.
func New(cfg config.LLMConfig, apiKey string, opts ...Option) (Client, error) {
	params := Params{Temperature: cfg.Temperature, MaxNewTokens: cfg.MaxNewTokens}
	switch cfg.Provider {
	case "huggingface", "":
		c, err := NewHuggingFace(apiKey, cfg.Model, cfg.BaseURL, params, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "openai":
		c, err := NewOpenAI(apiKey, cfg.Model, cfg.BaseURL, params, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "mock":
		return NewMockClient(""), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s (supported: huggingface, openai, mock)", cfg.Provider)
	}
}
