package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/fortytech/internal/models"
	"github.com/hyperjump/fortytech/internal/rag"
	"go.uber.org/zap"
)

const (
	defaultMaxUploadBytes = 10 << 20
	// multipartOverhead is the body allowance for boundaries and form fields on top
	// of the file size limit.
	multipartOverhead = 1 << 20
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if s.pipeline == nil {
		s.notEnabled(w, "rag")
		return
	}
	in, err := s.decodeInput(w, r)
	if err != nil {
		s.respondErr(w, "process input", err)
		return
	}
	s.logger.Debug("process request", zap.String("source_type", string(in.Type)))
	store, err := s.pipeline.Process(r.Context(), in)
	if err != nil {
		s.respondErr(w, "process input", err)
		return
	}
	id := s.sessions.Create(store)
	s.respondJSON(w, http.StatusCreated, processResponse(id, store))
}

func (s *Server) handleRebuildSession(w http.ResponseWriter, r *http.Request) {
	if s.pipeline == nil {
		s.notEnabled(w, "rag")
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := s.sessions.Get(id); err != nil {
		s.respondErr(w, "rebuild session", err)
		return
	}
	in, err := s.decodeInput(w, r)
	if err != nil {
		s.respondErr(w, "rebuild session", err)
		return
	}
	s.logger.Debug("rebuild request", zap.String("id", id), zap.String("source_type", string(in.Type)))
	store, err := s.pipeline.Process(r.Context(), in)
	if err != nil {
		s.respondErr(w, "rebuild session", err)
		return
	}
	if err := s.sessions.Replace(id, store); err != nil {
		s.respondErr(w, "rebuild session", err)
		return
	}
	s.respondJSON(w, http.StatusOK, processResponse(id, store))
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.pipeline == nil {
		s.notEnabled(w, "rag")
		return
	}
	id := chi.URLParam(r, "id")
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	store, err := s.sessions.Get(id)
	if err != nil {
		s.respondErr(w, "ask", err)
		return
	}
	answer, err := s.pipeline.Answer(r.Context(), store, req.Query)
	if err != nil {
		s.respondErr(w, "ask", err)
		return
	}
	s.respondJSON(w, http.StatusOK, answer)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(id); err != nil {
		s.respondErr(w, "delete session", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func processResponse(id string, store *rag.VectorStore) models.ProcessResponse {
	return models.ProcessResponse{
		SessionID:  id,
		SourceType: string(store.Source),
		Chunks:     store.Len(),
		Dimensions: store.Dimensions(),
	}
}

// decodeInput reads a multipart form (with an optional file) or a JSON ProcessRequest.
func (s *Server) decodeInput(w http.ResponseWriter, r *http.Request) (rag.Input, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return s.decodeMultipart(w, r)
	}

	var req models.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return rag.Input{}, badRequest("invalid request body")
	}
	if err := req.Validate(); err != nil {
		return rag.Input{}, badRequest(err.Error())
	}
	t, err := rag.ParseSourceType(req.SourceType)
	if err != nil {
		return rag.Input{}, err
	}
	if t.IsFile() {
		return rag.Input{}, badRequest("source type " + string(t) + " requires a multipart file upload")
	}
	return rag.Input{Type: t, URLs: req.URLs, Text: req.Text}, nil
}

func (s *Server) decodeMultipart(w http.ResponseWriter, r *http.Request) (rag.Input, error) {
	limit := s.config.RAG.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return rag.Input{}, err
		}
		return rag.Input{}, badRequest("invalid multipart form")
	}
	t, err := rag.ParseSourceType(r.FormValue("source_type"))
	if err != nil {
		return rag.Input{}, err
	}
	in := rag.Input{Type: t, Text: r.FormValue("text")}
	if r.MultipartForm != nil {
		in.URLs = r.MultipartForm.Value["url"]
	}
	if !t.IsFile() {
		return in, nil
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return rag.Input{}, rag.ErrEmptyInput
		}
		return rag.Input{}, badRequest("invalid file upload")
	}
	defer file.Close()
	if header.Size > limit {
		return rag.Input{}, &http.MaxBytesError{Limit: limit}
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return rag.Input{}, err
	}
	if int64(len(data)) > limit {
		return rag.Input{}, &http.MaxBytesError{Limit: limit}
	}
	in.File = &rag.Upload{Name: filepath.Base(header.Filename), Data: data}
	return in, nil
}
