// Package config provides configuration loading and structs for the fortytech server and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvHuggingFaceAPIKey is the environment variable holding the Hugging Face API token.
const EnvHuggingFaceAPIKey = "HUGGING_FACE_API"

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	RAG       RAGConfig       `yaml:"rag"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Workouts  WorkoutsConfig  `yaml:"workouts"`
	Stocks    StocksConfig    `yaml:"stocks"`
	SP500     SP500Config     `yaml:"sp500"`

	// Secrets are read from the environment (and .env), never from YAML.
	Secrets Secrets `yaml:"-"`
}

// Secrets holds credentials supplied through the environment.
type Secrets struct {
	HuggingFaceAPIKey string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds local database paths.
type StorageConfig struct {
	MoviesDBPath string `yaml:"movies_db_path"`
}

// RAGConfig holds chunking and retrieval settings for the Q&A pipeline.
type RAGConfig struct {
	ChunkSize      int   `yaml:"chunk_size"`
	ChunkOverlap   int   `yaml:"chunk_overlap"`
	TopK           int   `yaml:"top_k"`
	MaxURLs        int   `yaml:"max_urls"`
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// EmbeddingConfig selects and configures the embedding model client.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // huggingface or mock
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"`
	Dimensions int    `yaml:"dimensions"` // mock provider only; remote models report their own
	CacheSize  int    `yaml:"cache_size"`
	Normalize  bool   `yaml:"normalize"`
}

// LLMConfig selects and configures the hosted language model.
type LLMConfig struct {
	Provider     string  `yaml:"provider"` // huggingface, openai or mock
	Model        string  `yaml:"model"`
	BaseURL      string  `yaml:"base_url"`
	Temperature  float64 `yaml:"temperature"`
	MaxNewTokens int     `yaml:"max_new_tokens"`
}

// WorkoutsConfig holds the workout history dataset settings.
type WorkoutsConfig struct {
	DataPath        string   `yaml:"data_path"`
	ExcludedClasses []string `yaml:"excluded_classes"`
	Watch           *bool    `yaml:"watch"`
}

// WatchOrDefault reports whether the dataset file should be watched for changes; defaults to true.
func (w *WorkoutsConfig) WatchOrDefault() bool {
	if w.Watch != nil {
		return *w.Watch
	}
	return true
}

// StocksConfig holds the stock history source and the viewer defaults.
type StocksConfig struct {
	BaseURL string `yaml:"base_url"`
	Symbol  string `yaml:"symbol"`
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
}

// SP500Config holds the S&P 500 browser settings.
type SP500Config struct {
	SourceURL         string        `yaml:"source_url"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	MaxPriceCompanies int           `yaml:"max_price_companies"`
}

// Default returns a config with all defaults applied and secrets read from the environment.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	loadSecrets(cfg)
	return cfg
}

// Load reads and parses the config file at path, expands paths, applies defaults
// and reads secrets from the environment (after loading a .env file if present).
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.MoviesDBPath = expandPath(cfg.Storage.MoviesDBPath, configDir)
	cfg.Workouts.DataPath = expandPath(cfg.Workouts.DataPath, configDir)

	_ = godotenv.Load(filepath.Join(configDir, ".env"))
	loadSecrets(&cfg)
	return &cfg, nil
}

// loadSecrets fills cfg.Secrets from the process environment. A .env file in the
// working directory is loaded first; existing environment variables win.
func loadSecrets(cfg *Config) {
	_ = godotenv.Load()
	cfg.Secrets.HuggingFaceAPIKey = strings.TrimSpace(os.Getenv(EnvHuggingFaceAPIKey))
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
