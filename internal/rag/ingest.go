package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/fortytech/internal/extract"
)

// Ingestor turns an Input into documents.
type Ingestor struct {
	extractor *extract.Extractor
	web       *WebLoader
	maxURLs   int
}

// NewIngestor returns an ingestor allowing at most maxURLs web pages per input.
func NewIngestor(web *WebLoader, maxURLs int) *Ingestor {
	if web == nil {
		web = NewWebLoader(nil, nil)
	}
	if maxURLs <= 0 {
		maxURLs = 10
	}
	return &Ingestor{extractor: extract.NewExtractor(), web: web, maxURLs: maxURLs}
}

// Load validates in and returns its documents: one per URL for web sources,
// otherwise a single document.
func (g *Ingestor) Load(ctx context.Context, in Input) ([]Document, error) {
	switch in.Type {
	case SourceWeb:
		return g.loadWeb(ctx, in.URLs)
	case SourceText:
		if strings.TrimSpace(in.Text) == "" {
			return nil, ErrEmptyInput
		}
		return []Document{{Source: "text", Content: in.Text}}, nil
	case SourcePDF, SourceDOCX, SourceTXT:
		return g.loadFile(in.Type, in.File)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, in.Type)
	}
}

func (g *Ingestor) loadWeb(ctx context.Context, urls []string) ([]Document, error) {
	if len(urls) == 0 {
		return nil, ErrEmptyInput
	}
	if len(urls) > g.maxURLs {
		return nil, fmt.Errorf("%w: got %d, at most %d allowed", ErrTooManyURLs, len(urls), g.maxURLs)
	}
	for _, u := range urls {
		if strings.TrimSpace(u) == "" {
			return nil, ErrEmptyInput
		}
		if err := ValidateURL(u); err != nil {
			return nil, err
		}
	}
	docs := make([]Document, 0, len(urls))
	for _, u := range urls {
		doc, err := g.web.Load(ctx, u)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (g *Ingestor) loadFile(t SourceType, u *Upload) ([]Document, error) {
	if err := ValidateUpload(t, u); err != nil {
		return nil, err
	}
	text, err := g.extractor.ExtractBytes(u.Data, t.Extension())
	if err != nil {
		return nil, fmt.Errorf("error processing %s file: %w", t, err)
	}
	return []Document{{Source: u.Name, Content: text}}, nil
}
