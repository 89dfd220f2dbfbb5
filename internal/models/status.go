package models

import "time"

// StatusResponse is the server status report shared by the API and the CLI.
type StatusResponse struct {
	Sessions      int             `json:"sessions"`
	Workouts      *WorkoutsStatus `json:"workouts,omitempty"`
	SP500LoadedAt *time.Time      `json:"sp500_loaded_at,omitempty"`
	MoviesDBBytes *int64          `json:"movies_db_bytes,omitempty"`
	Config        *StatusConfig   `json:"config,omitempty"`
}

// WorkoutsStatus describes the loaded workout dataset.
type WorkoutsStatus struct {
	Path     string     `json:"path"`
	Rows     int        `json:"rows"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
}

// StatusConfig is the subset of configuration reported by status.
type StatusConfig struct {
	EmbeddingProvider string `json:"embedding_provider"`
	EmbeddingModel    string `json:"embedding_model,omitempty"`
	LLMProvider       string `json:"llm_provider"`
	LLMModel          string `json:"llm_model,omitempty"`
	ChunkSize         int    `json:"chunk_size"`
	ChunkOverlap      int    `json:"chunk_overlap"`
	TopK              int    `json:"top_k"`
	MoviesDBPath      string `json:"movies_db_path,omitempty"`
	WorkoutsDataPath  string `json:"workouts_data_path,omitempty"`
	SP500SourceURL    string `json:"sp500_source_url,omitempty"`
}
