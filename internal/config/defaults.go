package config

import "time"

// DefaultExcludedClasses are class names hidden from the workout class filter.
var DefaultExcludedClasses = []string{
	"Unknown",
	"Boot Camp",
	"Fighting Mastery™",
	"Valente Brothers Seminar Adults",
	"Adult VB Seminar",
	"Fighting Foundations™",
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8501
	}
	if cfg.Storage.MoviesDBPath == "" {
		cfg.Storage.MoviesDBPath = "./db/movie.db"
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 100
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 4
	}
	if cfg.RAG.MaxURLs == 0 {
		cfg.RAG.MaxURLs = 10
	}
	if cfg.RAG.MaxUploadBytes == 0 {
		cfg.RAG.MaxUploadBytes = 10 << 20
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "huggingface"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "sentence-transformers/all-mpnet-base-v2"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 768
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "huggingface"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "meta-llama/Meta-Llama-3-8B-Instruct"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.5
	}
	if cfg.LLM.MaxNewTokens == 0 {
		cfg.LLM.MaxNewTokens = 512
	}
	if cfg.Workouts.DataPath == "" {
		cfg.Workouts.DataPath = "./data/workout_history_cleaned.csv"
	}
	if cfg.Workouts.ExcludedClasses == nil {
		cfg.Workouts.ExcludedClasses = append([]string(nil), DefaultExcludedClasses...)
	}
	if cfg.Stocks.BaseURL == "" {
		cfg.Stocks.BaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.Stocks.Symbol == "" {
		cfg.Stocks.Symbol = "IBM"
	}
	if cfg.Stocks.Start == "" {
		cfg.Stocks.Start = "2018-05-31"
	}
	if cfg.Stocks.End == "" {
		cfg.Stocks.End = "2024-12-31"
	}
	if cfg.SP500.SourceURL == "" {
		cfg.SP500.SourceURL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"
	}
	if cfg.SP500.CacheTTL == 0 {
		cfg.SP500.CacheTTL = time.Hour
	}
	if cfg.SP500.MaxPriceCompanies == 0 {
		cfg.SP500.MaxPriceCompanies = 10
	}
}
