package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/hyperjump/fortytech/pkg/utils"
	"go.uber.org/zap"
)

// DefaultHuggingFaceBaseURL is the feature-extraction pipeline endpoint; the model id is appended.
const DefaultHuggingFaceBaseURL = "https://api-inference.huggingface.co/pipeline/feature-extraction/"

// HuggingFaceEmbedder calls the Hugging Face feature-extraction endpoint.
type HuggingFaceEmbedder struct {
	client    *http.Client
	model     string
	apiKey    string
	baseURL   string
	normalize bool
	logger    *zap.Logger

	mu         sync.Mutex
	dimensions int
}

// HuggingFaceOption configures a HuggingFaceEmbedder.
type HuggingFaceOption func(*HuggingFaceEmbedder)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) HuggingFaceOption {
	return func(e *HuggingFaceEmbedder) {
		if c != nil {
			e.client = c
		}
	}
}

// WithNormalize makes the embedder scale every vector to unit L2 norm.
func WithNormalize(normalize bool) HuggingFaceOption {
	return func(e *HuggingFaceEmbedder) {
		e.normalize = normalize
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) HuggingFaceOption {
	return func(e *HuggingFaceEmbedder) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewHuggingFaceEmbedder returns a client for model. baseURL defaults to
// DefaultHuggingFaceBaseURL. An empty apiKey returns ErrMissingAPIKey.
func NewHuggingFaceEmbedder(apiKey, model, baseURL string, opts ...HuggingFaceOption) (*HuggingFaceEmbedder, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultHuggingFaceBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	e := &HuggingFaceEmbedder{
		client:  &http.Client{},
		model:   model,
		apiKey:  apiKey,
		baseURL: baseURL,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Embed returns the embedding of a single text.
func (e *HuggingFaceEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch returns one embedding per text, in order.
func (e *HuggingFaceEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	payload := map[string]interface{}{
		"inputs":  texts,
		"options": map[string]bool{"wait_for_model": true},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+e.model, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEndpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrEndpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.logger.Warn("Embedding request failed", zap.Int("status", resp.StatusCode), zap.String("model", e.model))
		return nil, fmt.Errorf("%w: status %d: %s", ErrEndpoint, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	embeddings, err := decodeEmbeddings(data, len(texts))
	if err != nil {
		return nil, err
	}
	if e.normalize {
		for _, v := range embeddings {
			utils.NormalizeL2(v)
		}
	}
	e.mu.Lock()
	e.dimensions = len(embeddings[0])
	e.mu.Unlock()
	return embeddings, nil
}

// decodeEmbeddings accepts either a list of vectors or, for a single input, a bare vector.
func decodeEmbeddings(data []byte, want int) ([][]float32, error) {
	var embeddings [][]float32
	if err := json.Unmarshal(data, &embeddings); err != nil {
		var single []float32
		if err2 := json.Unmarshal(data, &single); err2 != nil || want != 1 {
			return nil, fmt.Errorf("%w: decode response: %v", ErrEndpoint, err)
		}
		embeddings = [][]float32{single}
	}
	if len(embeddings) != want {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrEndpoint, want, len(embeddings))
	}
	for i, v := range embeddings {
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: empty embedding at index %d", ErrEndpoint, i)
		}
	}
	return embeddings, nil
}

// Dimensions returns the size of the last embedding returned, or 0 before the first call.
func (e *HuggingFaceEmbedder) Dimensions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dimensions
}

// Close releases idle connections.
func (e *HuggingFaceEmbedder) Close() error {
	e.client.CloseIdleConnections()
	return nil
}
