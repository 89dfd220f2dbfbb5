package rag

import (
	"context"
	"fmt"

	"github.com/hyperjump/fortytech/internal/vector"
)

// Chunk is one indexed window of a source document.
type Chunk struct {
	ID     string `json:"id"`
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

// ScoredChunk is a retrieved chunk with its squared L2 distance to the query.
type ScoredChunk struct {
	Chunk
	Distance float64 `json:"distance"`
}

// VectorStore holds the chunks of one processed input and their flat L2 index.
type VectorStore struct {
	Source SourceType
	chunks []Chunk
	byID   map[string]int
	index  vector.VectorIndex
}

func newVectorStore(source SourceType, index vector.VectorIndex) *VectorStore {
	return &VectorStore{Source: source, byID: make(map[string]int), index: index}
}

func (s *VectorStore) add(ctx context.Context, chunks []Chunk, vectors [][]float32) error {
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	if err := s.index.Add(ctx, ids, vectors); err != nil {
		return err
	}
	for _, c := range chunks {
		s.byID[c.ID] = len(s.chunks)
		s.chunks = append(s.chunks, c)
	}
	return nil
}

// Len returns the number of chunks.
func (s *VectorStore) Len() int {
	return len(s.chunks)
}

// Dimensions returns the index dimensionality.
func (s *VectorStore) Dimensions() int {
	return s.index.Dimensions()
}

// Chunks returns a copy of the stored chunks in insertion order.
func (s *VectorStore) Chunks() []Chunk {
	return append([]Chunk(nil), s.chunks...)
}

// Search returns the k chunks nearest to query.
func (s *VectorStore) Search(ctx context.Context, query []float32, k int) ([]ScoredChunk, error) {
	hits, err := s.index.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	out := make([]ScoredChunk, 0, len(hits))
	for _, h := range hits {
		pos, ok := s.byID[h.ID]
		if !ok {
			return nil, fmt.Errorf("index returned unknown chunk id %s", h.ID)
		}
		out = append(out, ScoredChunk{Chunk: s.chunks[pos], Distance: h.Distance})
	}
	return out, nil
}
