package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hyperjump/fortytech/internal/embedding"
	"github.com/hyperjump/fortytech/internal/extract"
	"github.com/hyperjump/fortytech/internal/llm"
	"github.com/hyperjump/fortytech/internal/models"
	"github.com/hyperjump/fortytech/internal/rag"
	"github.com/hyperjump/fortytech/internal/reference"
	"github.com/hyperjump/fortytech/internal/sp500"
	"github.com/hyperjump/fortytech/internal/stocks"
	"github.com/hyperjump/fortytech/internal/storage"
	"github.com/hyperjump/fortytech/internal/workouts"
	"go.uber.org/zap"
)

// requestError is a client error with a fixed status and message.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &requestError{status: http.StatusBadRequest, msg: msg}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.Status())
}

// Status reports live sessions, dataset state and a configuration summary.
func (s *Server) Status() *models.StatusResponse {
	resp := &models.StatusResponse{
		Sessions: s.sessions.Len(),
		Config: &models.StatusConfig{
			EmbeddingProvider: s.config.Embedding.Provider,
			EmbeddingModel:    s.config.Embedding.Model,
			LLMProvider:       s.config.LLM.Provider,
			LLMModel:          s.config.LLM.Model,
			ChunkSize:         s.config.RAG.ChunkSize,
			ChunkOverlap:      s.config.RAG.ChunkOverlap,
			TopK:              s.config.RAG.TopK,
			MoviesDBPath:      s.config.Storage.MoviesDBPath,
			WorkoutsDataPath:  s.config.Workouts.DataPath,
			SP500SourceURL:    s.config.SP500.SourceURL,
		},
	}
	if s.workouts != nil {
		ws := &models.WorkoutsStatus{Path: s.workouts.Path(), Rows: s.workouts.Rows()}
		if at := s.workouts.LoadedAt(); !at.IsZero() {
			ws.LoadedAt = &at
		}
		resp.Workouts = ws
	}
	if s.sp500 != nil {
		if at := s.sp500.LoadedAt(); !at.IsZero() {
			resp.SP500LoadedAt = &at
		}
	}
	if size, err := storage.DatabaseSizeBytes(s.config.Storage.MoviesDBPath); err == nil && s.config.Storage.MoviesDBPath != "" {
		resp.MoviesDBBytes = &size
	} else if err != nil {
		s.logger.Warn("status: movies database size failed", zap.Error(err))
	}
	return resp
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	var re *requestError
	if errors.As(err, &re) {
		return re.status
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch {
	case errors.Is(err, rag.ErrUnsupportedSource),
		errors.Is(err, rag.ErrFileTypeMismatch),
		errors.Is(err, rag.ErrEmptyInput),
		errors.Is(err, rag.ErrTooManyURLs),
		errors.Is(err, rag.ErrInvalidURL),
		errors.Is(err, rag.ErrNoChunks),
		errors.Is(err, extract.ErrUnsupportedFormat),
		errors.Is(err, stocks.ErrInvalidRange),
		errors.Is(err, stocks.ErrInvalidSymbol),
		errors.Is(err, sp500.ErrUnknownFormat),
		errors.Is(err, storage.ErrEmptyName):
		return http.StatusBadRequest
	case errors.Is(err, rag.ErrSessionNotFound),
		errors.Is(err, workouts.ErrNoRows),
		errors.Is(err, stocks.ErrNoData),
		errors.Is(err, sp500.ErrNoSectors),
		errors.Is(err, reference.ErrUnknownPage),
		errors.Is(err, storage.ErrMovieNotFound):
		return http.StatusNotFound
	case errors.Is(err, llm.ErrEndpoint),
		errors.Is(err, llm.ErrMissingAPIKey),
		errors.Is(err, embedding.ErrEndpoint),
		errors.Is(err, embedding.ErrMissingAPIKey),
		errors.Is(err, stocks.ErrEndpoint),
		errors.Is(err, sp500.ErrSource):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// errorMessage returns the user-facing text for err.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, workouts.ErrNoRows):
		return workouts.NoDataMessage
	case errors.Is(err, stocks.ErrNoData):
		return stocks.NoDataMessage
	case errors.Is(err, sp500.ErrNoSectors):
		return sp500.NoSectorsMessage
	}
	return err.Error()
}

// respondErr logs err and writes it with its mapped status.
func (s *Server) respondErr(w http.ResponseWriter, op string, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", zap.Error(err))
	} else {
		s.logger.Debug(op+" rejected", zap.Int("status", status), zap.Error(err))
	}
	s.respondError(w, status, errorMessage(err))
}

func (s *Server) notEnabled(w http.ResponseWriter, feature string) {
	s.respondError(w, http.StatusNotImplemented, feature+" not enabled")
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// selection returns the non-blank values of a repeatable query parameter. An absent
// parameter yields nil; a present but blank one yields an empty, non-nil slice.
func selection(q url.Values, key string) []string {
	raw, ok := q[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// intParam parses an optional integer query parameter.
func intParam(q url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest("invalid " + key + ": " + v)
	}
	return n, nil
}

// boolParam parses an optional boolean query parameter; absent means false.
func boolParam(q url.Values, key string) (bool, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, badRequest("invalid " + key + ": " + v)
	}
	return b, nil
}
