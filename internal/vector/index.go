// Package vector provides exact nearest-neighbour vector indexes.
package vector

import (
	"context"
	"errors"
)

// ErrDimensionMismatch is returned when a vector's length differs from the index dimensionality.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// VectorIndex defines vector storage and nearest-neighbour search.
type VectorIndex interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)
	Size() int
	Dimensions() int
	Reset()
}

// VectorResult is a single search hit. Distance is the squared L2 distance to the query.
type VectorResult struct {
	ID       string
	Distance float64
}
