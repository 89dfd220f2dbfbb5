package vector

import "fmt"

// IndexType represents the type of vector index to use.
type IndexType string

// IndexTypeFlat is exact brute-force L2 search, the only supported type.
const IndexTypeFlat IndexType = "flat"

// NewVectorIndex creates a vector index of the specified type. An empty type means flat.
func NewVectorIndex(indexType string, dimensions int) (VectorIndex, error) {
	switch IndexType(indexType) {
	case IndexTypeFlat, "":
		return NewFlatL2Index(dimensions)
	default:
		return nil, fmt.Errorf("unknown index type: %s (supported: flat)", indexType)
	}
}
