package rag

import "errors"

var (
	// ErrUnsupportedSource is returned for an unknown source type.
	ErrUnsupportedSource = errors.New("unsupported source type")
	// ErrFileTypeMismatch is returned when an upload does not match its declared source type.
	ErrFileTypeMismatch = errors.New("file type does not match source type")
	// ErrEmptyInput is returned when no usable input was provided.
	ErrEmptyInput = errors.New("please provide valid input")
	// ErrTooManyURLs is returned when more web pages are requested than allowed.
	ErrTooManyURLs = errors.New("too many URLs")
	// ErrInvalidURL is returned for a web source entry that is not an http(s) URL.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrSessionNotFound is returned for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoChunks is returned when the input produced no text to index.
	ErrNoChunks = errors.New("no text chunks produced from input")
)
