package rag

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// expectedMIME is the content type family each file source must sniff as.
var expectedMIME = map[SourceType][]string{
	SourcePDF:  {"application/pdf"},
	SourceDOCX: {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
	SourceTXT:  {"text/plain"},
}

// ValidateUpload checks that u carries the extension of t and that its content
// sniffs as the matching type. Any mismatch wraps ErrFileTypeMismatch.
func ValidateUpload(t SourceType, u *Upload) error {
	if !t.IsFile() {
		return fmt.Errorf("%w: %s is not a file source", ErrUnsupportedSource, t)
	}
	if u == nil || len(u.Data) == 0 {
		return ErrEmptyInput
	}
	ext := strings.ToLower(filepath.Ext(u.Name))
	if ext != t.Extension() {
		return fmt.Errorf("%w: %s upload must have extension %s, got %q", ErrFileTypeMismatch, t, t.Extension(), u.Name)
	}
	detected := mimetype.Detect(u.Data)
	if !matchesAny(detected, expectedMIME[t]) {
		return fmt.Errorf("%w: %s upload %q has content type %s", ErrFileTypeMismatch, t, u.Name, detected.String())
	}
	return nil
}

// matchesAny reports whether m or one of its parents is any of the given types.
func matchesAny(m *mimetype.MIME, types []string) bool {
	for ; m != nil; m = m.Parent() {
		for _, want := range types {
			if m.Is(want) {
				return true
			}
		}
	}
	return false
}
