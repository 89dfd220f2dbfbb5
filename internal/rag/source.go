// Package rag implements document ingestion, chunking, vector indexing and
// retrieval-augmented question answering.
package rag

import (
	"fmt"
	"strings"
)

// SourceType is the kind of input a vector store is built from.
type SourceType string

const (
	SourceWeb  SourceType = "Web"
	SourcePDF  SourceType = "PDF"
	SourceDOCX SourceType = "DOCX"
	SourceText SourceType = "Text"
	SourceTXT  SourceType = "TXT"
)

// SourceTypes lists the supported source types in display order.
var SourceTypes = []SourceType{SourceWeb, SourcePDF, SourceDOCX, SourceText, SourceTXT}

// ParseSourceType resolves s case-insensitively.
func ParseSourceType(s string) (SourceType, error) {
	s = strings.TrimSpace(s)
	for _, t := range SourceTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedSource, s)
}

// IsFile reports whether the source type expects an uploaded file.
func (t SourceType) IsFile() bool {
	return t == SourcePDF || t == SourceDOCX || t == SourceTXT
}

// Extension returns the file extension uploads of this type must carry.
func (t SourceType) Extension() string {
	switch t {
	case SourcePDF:
		return ".pdf"
	case SourceDOCX:
		return ".docx"
	case SourceTXT:
		return ".txt"
	}
	return ""
}

// Upload is an uploaded file: its client-side name and raw bytes.
type Upload struct {
	Name string
	Data []byte
}

// Input is everything needed to build one vector store. Only the field matching
// Type is read.
type Input struct {
	Type SourceType
	URLs []string
	Text string
	File *Upload
}

// Document is loaded text plus where it came from.
type Document struct {
	Source  string
	Content string
}
