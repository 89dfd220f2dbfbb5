package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/fortytech/internal/reference"
)

// WritePage renders a reference page block by block. Stream blocks are written
// whole; use reference.StreamWords for the word-by-word effect.
func WritePage(w io.Writer, p reference.Page, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, p)
	}
	for i, b := range p.Blocks {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := writeBlock(w, b); err != nil {
			return err
		}
	}
	return nil
}

func writeBlock(w io.Writer, b reference.Block) error {
	switch b.Kind {
	case reference.KindTitle:
		fmt.Fprintf(w, "%s\n%s\n", b.Text, strings.Repeat("=", utf8.RuneCountInString(b.Text)))
	case reference.KindHeader:
		fmt.Fprintf(w, "%s\n%s\n", b.Text, strings.Repeat("-", utf8.RuneCountInString(b.Text)))
	case reference.KindSubheader:
		fmt.Fprintf(w, "### %s\n", b.Text)
	case reference.KindCaption:
		fmt.Fprintf(w, "  %s\n", b.Text)
	case reference.KindMarkdown, reference.KindText:
		fmt.Fprintln(w, strings.TrimRight(b.Text, "\n"))
	case reference.KindStream:
		fmt.Fprintln(w, strings.TrimSpace(b.Text))
	case reference.KindCode:
		writeCode(w, b)
	case reference.KindLatex:
		fmt.Fprintf(w, "$$ %s $$\n", b.Text)
	case reference.KindDivider:
		fmt.Fprintln(w, strings.Repeat("─", 40))
	case reference.KindMetric:
		for _, m := range b.Metrics {
			fmt.Fprintf(w, "%s: %d (%+d)\n", m.Label, m.Value, m.Delta)
		}
	case reference.KindTable:
		if b.Table != nil {
			return writeTableText(w, b.Table)
		}
	case reference.KindJSON:
		data, err := json.MarshalIndent(b.JSON, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	case reference.KindDownload:
		if d := b.Download; d != nil {
			fmt.Fprintf(w, "[%s] %s (%s) at %s\n", d.Label, d.FileName, d.MIME, d.Href)
		}
	default:
		fmt.Fprintln(w, b.Text)
	}
	return nil
}

func writeCode(w io.Writer, b reference.Block) {
	lines := strings.Split(strings.TrimRight(b.Text, "\n"), "\n")
	fmt.Fprintf(w, "```%s\n", b.Language)
	for i, line := range lines {
		if b.LineNumbers {
			fmt.Fprintf(w, "%3d | %s\n", i+1, line)
		} else {
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintln(w, "```")
}
