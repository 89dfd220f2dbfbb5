package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// DefaultOpenAIBaseURL is the Hugging Face OpenAI-compatible router.
const DefaultOpenAIBaseURL = "https://router.huggingface.co/v1/"

// OpenAI calls any OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	client openai.Client
	model  string
	params Params
	logger *zap.Logger
}

// NewOpenAI returns a chat client for model at baseURL (DefaultOpenAIBaseURL when empty).
// Requests are never retried.
func NewOpenAI(apiKey, model, baseURL string, params Params, opts ...Option) (*OpenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	o := buildOptions(opts)
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	)
	return &OpenAI{client: client, model: model, params: params, logger: o.logger}, nil
}

// Generate sends prompt as a single user message and returns the first choice.
func (c *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.params.Temperature),
	}
	if c.params.MaxNewTokens > 0 {
		req.MaxTokens = openai.Int(int64(c.params.MaxNewTokens))
	}
	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			c.logger.Warn("Chat completion failed", zap.Int("status", apiErr.StatusCode), zap.String("model", c.model))
			return "", fmt.Errorf("%w: status %d: %v", ErrEndpoint, apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("%w: %v", ErrEndpoint, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrEndpoint)
	}
	return resp.Choices[0].Message.Content, nil
}
