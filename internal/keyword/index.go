// Package keyword provides the in-memory company search index used by the S&P 500 browser.
package keyword

import "context"

// Company is one indexed row: ticker symbol, company name and sector.
type Company struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
}

// SearchOptions are optional search parameters. Nil means defaults.
type SearchOptions struct {
	// SymbolBoost multiplies the score of symbol matches (e.g. 3.0). Values <= 1 mean no boost.
	SymbolBoost float64
	// FuzzyEnabled matches terms within Fuzziness edits.
	FuzzyEnabled bool
	// Fuzziness is the maximum edit distance for fuzzy matching (1 or 2). Defaults to 1.
	Fuzziness int
	// Sectors restricts hits to these sectors. Nil means all; empty means none.
	Sectors []string
}

// Index defines company search operations.
type Index interface {
	IndexAll(ctx context.Context, companies []Company) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Result, error)
	Suggest(query string) (string, error)
	DocCount() (uint64, error)
	Close() error
}

// Result is a single search hit; ID is the ticker symbol.
type Result struct {
	ID    string  `json:"symbol"`
	Score float64 `json:"score"`
}
