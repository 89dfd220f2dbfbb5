package rag

import "strings"

// Chunker splits text into fixed-size overlapping windows of runes.
type Chunker struct {
	Size    int
	Overlap int
}

// NewChunker returns a chunker. size defaults to 1000; overlap is clamped to [0, size-1].
func NewChunker(size, overlap int) Chunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}
	return Chunker{Size: size, Overlap: overlap}
}

// Split returns the windows of text. Window i starts at rune i*(Size-Overlap) and the
// last window ends at the end of text. Whitespace-only text yields no windows.
func (c Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	runes := []rune(text)
	step := c.Size - c.Overlap
	if step < 1 {
		step = 1
	}
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + c.Size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}
