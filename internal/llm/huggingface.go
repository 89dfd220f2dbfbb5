package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// DefaultHuggingFaceBaseURL is the serverless inference endpoint; the model id is appended.
const DefaultHuggingFaceBaseURL = "https://api-inference.huggingface.co/models/"

// HuggingFace calls the Hugging Face text-generation endpoint.
type HuggingFace struct {
	client  *http.Client
	model   string
	apiKey  string
	baseURL string
	params  Params
	logger  *zap.Logger
}

type hfRequest struct {
	Inputs     string          `json:"inputs"`
	Parameters hfParameters    `json:"parameters"`
	Options    map[string]bool `json:"options"`
}

type hfParameters struct {
	Temperature    float64 `json:"temperature"`
	MaxNewTokens   int     `json:"max_new_tokens,omitempty"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

// NewHuggingFace returns a text-generation client for model. baseURL defaults to
// DefaultHuggingFaceBaseURL.
func NewHuggingFace(apiKey, model, baseURL string, params Params, opts ...Option) (*HuggingFace, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultHuggingFaceBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	o := buildOptions(opts)
	return &HuggingFace{
		client:  &http.Client{},
		model:   model,
		apiKey:  apiKey,
		baseURL: baseURL,
		params:  params,
		logger:  o.logger,
	}, nil
}

// Generate sends prompt and returns the generated continuation only.
func (h *HuggingFace) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(hfRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			Temperature:  h.params.Temperature,
			MaxNewTokens: h.params.MaxNewTokens,
		},
		Options: map[string]bool{"wait_for_model": true},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+h.model, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEndpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrEndpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		h.logger.Warn("Generation request failed", zap.Int("status", resp.StatusCode), zap.String("model", h.model))
		return "", fmt.Errorf("%w: status %d: %s", ErrEndpoint, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var gens []hfGeneration
	if err := json.Unmarshal(data, &gens); err != nil {
		var single hfGeneration
		if err2 := json.Unmarshal(data, &single); err2 != nil {
			return "", fmt.Errorf("%w: decode response: %v", ErrEndpoint, err)
		}
		gens = []hfGeneration{single}
	}
	if len(gens) == 0 {
		return "", fmt.Errorf("%w: no generated text returned", ErrEndpoint)
	}
	return gens[0].GeneratedText, nil
}
