package models

import (
	"fmt"
	"strings"
)

// ProcessRequest is the JSON body for building a RAG session from web pages or pasted text.
type ProcessRequest struct {
	SourceType string   `json:"source_type"`
	URLs       []string `json:"urls,omitempty"`
	Text       string   `json:"text,omitempty"`
}

// Validate trims fields and requires a source type.
func (r *ProcessRequest) Validate() error {
	r.SourceType = strings.TrimSpace(r.SourceType)
	if r.SourceType == "" {
		return fmt.Errorf("source_type is required")
	}
	for i, u := range r.URLs {
		r.URLs[i] = strings.TrimSpace(u)
	}
	return nil
}

// ProcessResponse describes a built session.
type ProcessResponse struct {
	SessionID  string `json:"session_id"`
	SourceType string `json:"source_type"`
	Chunks     int    `json:"chunks"`
	Dimensions int    `json:"dimensions"`
}

// AskRequest is the JSON body for asking a question against a session.
type AskRequest struct {
	Query string `json:"query"`
}

// Validate requires a non-blank query.
func (r *AskRequest) Validate() error {
	r.Query = strings.TrimSpace(r.Query)
	if r.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return nil
}
