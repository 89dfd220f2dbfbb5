package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyperjump/fortytech/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		provider string
		apiKey   string
		wantErr  error
	}{
		{"huggingface", "k", nil},
		{"openai", "k", nil},
		{"mock", "", nil},
		{"huggingface", "", ErrMissingAPIKey},
		{"openai", " ", ErrMissingAPIKey},
	}
	for _, tt := range tests {
		c, err := New(config.LLMConfig{Provider: tt.provider, Model: "m", Temperature: 0.5}, tt.apiKey)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%s: expected %v, got %v", tt.provider, tt.wantErr, err)
			}
			continue
		}
		if err != nil || c == nil {
			t.Errorf("%s: unexpected error %v", tt.provider, err)
		}
	}
	if _, err := New(config.LLMConfig{Provider: "ollama"}, "k"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestHuggingFace_Generate(t *testing.T) {
	var got hfRequest
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`[{"generated_text":" Paris is the capital."}]`))
	}))
	defer srv.Close()

	c, err := NewHuggingFace("hf_x", "meta-llama/Meta-Llama-3-8B-Instruct", srv.URL, Params{Temperature: 0.5, MaxNewTokens: 64})
	if err != nil {
		t.Fatal(err)
	}
	answer, err := c.Generate(context.Background(), "What is the capital of France?")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if answer != " Paris is the capital." {
		t.Errorf("answer should be returned verbatim, got %q", answer)
	}
	if gotPath != "/meta-llama/Meta-Llama-3-8B-Instruct" || gotAuth != "Bearer hf_x" {
		t.Errorf("path=%s auth=%s", gotPath, gotAuth)
	}
	if got.Inputs != "What is the capital of France?" {
		t.Errorf("inputs: %q", got.Inputs)
	}
	if got.Parameters.Temperature != 0.5 || got.Parameters.MaxNewTokens != 64 || got.Parameters.ReturnFullText {
		t.Errorf("parameters: %+v", got.Parameters)
	}
}

func TestHuggingFace_objectResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"generated_text":"ok"}`))
	}))
	defer srv.Close()

	c, _ := NewHuggingFace("k", "m", srv.URL, Params{})
	answer, err := c.Generate(context.Background(), "p")
	if err != nil || answer != "ok" {
		t.Errorf("got %q, %v", answer, err)
	}
}

func TestHuggingFace_endpointError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"Rate limit reached"}`))
	}))
	defer srv.Close()

	c, _ := NewHuggingFace("k", "m", srv.URL, Params{})
	_, err := c.Generate(context.Background(), "p")
	if !errors.Is(err, ErrEndpoint) {
		t.Fatalf("expected ErrEndpoint, got %v", err)
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "Rate limit reached") {
		t.Errorf("error should carry status and body: %v", err)
	}
}

func TestHuggingFace_emptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, _ := NewHuggingFace("k", "m", srv.URL, Params{})
	if _, err := c.Generate(context.Background(), "p"); !errors.Is(err, ErrEndpoint) {
		t.Errorf("expected ErrEndpoint, got %v", err)
	}
}

func TestOpenAI_Generate(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk_test" {
			t.Errorf("auth: %s", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Forty"}}]}`))
	}))
	defer srv.Close()

	c, err := NewOpenAI("sk_test", "meta-llama/Meta-Llama-3-8B-Instruct", srv.URL+"/v1/", Params{Temperature: 0.5, MaxNewTokens: 32})
	if err != nil {
		t.Fatal(err)
	}
	answer, err := c.Generate(context.Background(), "How many?")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if answer != "Forty" {
		t.Errorf("answer: %q", answer)
	}
	if body["model"] != "meta-llama/Meta-Llama-3-8B-Instruct" {
		t.Errorf("model: %v", body["model"])
	}
	if body["temperature"] != 0.5 {
		t.Errorf("temperature: %v", body["temperature"])
	}
}

func TestOpenAI_endpointError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid token","type":"auth"}}`))
	}))
	defer srv.Close()

	c, _ := NewOpenAI("bad", "m", srv.URL+"/v1/", Params{})
	_, err := c.Generate(context.Background(), "p")
	if !errors.Is(err, ErrEndpoint) {
		t.Fatalf("expected ErrEndpoint, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}

func TestMockClient(t *testing.T) {
	m := NewMockClient("")
	answer, err := m.Generate(context.Background(), "first")
	if err != nil || answer != "mock answer" {
		t.Errorf("got %q, %v", answer, err)
	}
	_, _ = m.Generate(context.Background(), "second")
	if p := m.Prompts(); len(p) != 2 || p[1] != "second" {
		t.Errorf("prompts: %v", p)
	}

	boom := errors.New("boom")
	if _, err := NewFailingMockClient(boom).Generate(context.Background(), "p"); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Generate(ctx, "p"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
