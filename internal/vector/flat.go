package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// FlatL2Index is an exact brute-force index ranked by squared Euclidean distance.
type FlatL2Index struct {
	dimensions int
	ids        []string
	vectors    [][]float32
	mu         sync.RWMutex
}

// NewFlatL2Index creates an empty index of the given dimensionality.
func NewFlatL2Index(dimensions int) (*FlatL2Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dimensions)
	}
	return &FlatL2Index{
		dimensions: dimensions,
		ids:        make([]string, 0),
		vectors:    make([][]float32, 0),
	}, nil
}

// Add appends vectors with the given IDs. Nothing is added if any vector has the wrong length.
func (f *FlatL2Index) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch: %d != %d", len(ids), len(vectors))
	}
	for i, v := range vectors {
		if len(v) != f.dimensions {
			return fmt.Errorf("%w: vector %d has %d, index expects %d", ErrDimensionMismatch, i, len(v), f.dimensions)
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, id := range ids {
		vec := make([]float32, f.dimensions)
		copy(vec, vectors[i])
		f.ids = append(f.ids, id)
		f.vectors = append(f.vectors, vec)
	}
	return nil
}

// Search returns the k nearest vectors by ascending distance; ties keep insertion order.
func (f *FlatL2Index) Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error) {
	if len(query) != f.dimensions {
		return nil, fmt.Errorf("%w: query has %d, index expects %d", ErrDimensionMismatch, len(query), f.dimensions)
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if k <= 0 || len(f.ids) == 0 {
		return nil, nil
	}
	results := make([]*VectorResult, len(f.ids))
	for i, vec := range f.vectors {
		results[i] = &VectorResult{ID: f.ids[i], Distance: SquaredL2(query, vec)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Size returns the number of stored vectors.
func (f *FlatL2Index) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.ids)
}

// Dimensions returns the index dimensionality.
func (f *FlatL2Index) Dimensions() int {
	return f.dimensions
}

// Reset removes all vectors.
func (f *FlatL2Index) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = f.ids[:0]
	f.vectors = f.vectors[:0]
}
