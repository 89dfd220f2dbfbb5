// Package reference builds the walkthrough pages (basics, text elements and data
// elements) as ordered, typed content blocks that clients render in sequence.
package reference

import "github.com/hyperjump/fortytech/internal/table"

// Kind names a block type.
type Kind string

const (
	KindTitle     Kind = "title"
	KindHeader    Kind = "header"
	KindSubheader Kind = "subheader"
	KindCaption   Kind = "caption"
	KindMarkdown  Kind = "markdown"
	KindText      Kind = "text"
	KindCode      Kind = "code"
	KindLatex     Kind = "latex"
	KindDivider   Kind = "divider"
	KindMetric    Kind = "metric"
	KindTable     Kind = "table"
	KindJSON      Kind = "json"
	KindDownload  Kind = "download"
	KindStream    Kind = "stream"
)

// Block is one piece of page content. Only the fields of its Kind are set.
type Block struct {
	Kind        Kind         `json:"type"`
	Text        string       `json:"text,omitempty"`
	Language    string       `json:"language,omitempty"`
	LineNumbers bool         `json:"line_numbers,omitempty"`
	Metrics     []Metric     `json:"metrics,omitempty"`
	Table       *table.Table `json:"table,omitempty"`
	JSON        interface{}  `json:"json,omitempty"`
	Download    *Download    `json:"download,omitempty"`
}

// Metric is a headline number with its change.
type Metric struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
	Delta int64  `json:"delta"`
}

// Download describes a downloadable file served at Href.
type Download struct {
	Label    string `json:"label"`
	FileName string `json:"file_name"`
	MIME     string `json:"mime"`
	Href     string `json:"href"`
}

// Page is a titled, ordered list of blocks.
type Page struct {
	Name   string  `json:"name"`
	Blocks []Block `json:"blocks"`
}

func title(s string) Block     { return Block{Kind: KindTitle, Text: s} }
func header(s string) Block    { return Block{Kind: KindHeader, Text: s} }
func subheader(s string) Block { return Block{Kind: KindSubheader, Text: s} }
func caption(s string) Block   { return Block{Kind: KindCaption, Text: s} }
func markdown(s string) Block  { return Block{Kind: KindMarkdown, Text: s} }
func text(s string) Block      { return Block{Kind: KindText, Text: s} }
func divider() Block           { return Block{Kind: KindDivider} }

func code(src, lang string) Block {
	return Block{Kind: KindCode, Text: src, Language: lang, LineNumbers: true}
}
