package server

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/fortytech/internal/reference"
	"go.uber.org/zap"
)

func (s *Server) handleReferencePages(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"pages": reference.Names()})
}

func (s *Server) handleReferencePage(w http.ResponseWriter, r *http.Request) {
	page, err := reference.Get(chi.URLParam(r, "page"))
	if err != nil {
		s.respondErr(w, "reference page", err)
		return
	}
	s.respondJSON(w, http.StatusOK, page)
}

// handleReferenceStream writes the basics stream text one word at a time, flushing
// after each word.
func (s *Server) handleReferenceStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	err := reference.StreamWords(r.Context(), reference.StreamText, s.streamDelay, func(word string) error {
		if _, err := io.WriteString(w, word); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		s.logger.Debug("stream ended early", zap.Error(err))
	}
}

func (s *Server) handleReferenceDownload(w http.ResponseWriter, r *http.Request) {
	data, err := reference.DataCSV()
	if err != nil {
		s.respondErr(w, "reference download", err)
		return
	}
	writeAttachment(w, reference.DataFileName, "text/csv", data)
}
