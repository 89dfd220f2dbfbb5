// Package cli provides CLI output writers for fortytech.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/hyperjump/fortytech/internal/models"
	"github.com/hyperjump/fortytech/internal/rag"
	"github.com/hyperjump/fortytech/internal/table"
	"github.com/hyperjump/fortytech/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// sourceSnippetLen bounds the chunk text shown per answer source.
const sourceSnippetLen = 200

// ParseFormat resolves a --output flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q; use text or json", s)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteTable writes t in the given format. Unknown formats are treated as text.
func WriteTable(w io.Writer, t *table.Table, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, t)
	}
	return writeTableText(w, t)
}

func writeTableText(w io.Writer, t *table.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// WriteProcessResult describes a built vector store.
func WriteProcessResult(w io.Writer, resp models.ProcessResponse, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, resp)
	}
	fmt.Fprintf(w, "Processed %s input into %d chunks (%d dimensions)\n", resp.SourceType, resp.Chunks, resp.Dimensions)
	return nil
}

// WriteAnswer writes the model's answer followed by the retrieved sources.
func WriteAnswer(w io.Writer, a *rag.Answer, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, a)
	}
	fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(a.Answer))
	if len(a.Sources) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\n--- Sources (%d) ---\n", len(a.Sources))
	for i, src := range a.Sources {
		fmt.Fprintf(w, "[%d] %s #%d (distance %.4f)\n", i+1, src.Source, src.Index, src.Distance)
		fmt.Fprintf(w, "    %s\n", utils.Truncate(utils.CollapseSpace(src.Text), sourceSnippetLen))
	}
	return nil
}

// WriteStatus writes a status report.
func WriteStatus(w io.Writer, s *models.StatusResponse, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, s)
	}
	fmt.Fprintf(w, "sessions:            %d   # live RAG sessions\n", s.Sessions)
	if s.Workouts != nil {
		fmt.Fprintf(w, "workout_rows:        %d   # rows in the workout dataset\n", s.Workouts.Rows)
		if s.Workouts.LoadedAt != nil {
			fmt.Fprintf(w, "workouts_loaded_at:  %s\n", s.Workouts.LoadedAt.Format("2006-01-02 15:04:05"))
		}
	}
	if s.SP500LoadedAt != nil {
		fmt.Fprintf(w, "sp500_loaded_at:     %s\n", s.SP500LoadedAt.Format("2006-01-02 15:04:05"))
	}
	if s.MoviesDBBytes != nil {
		fmt.Fprintf(w, "movies_db_bytes:     %d   # movies database on disk\n", *s.MoviesDBBytes)
	}
	if c := s.Config; c != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# configuration")
		fmt.Fprintf(w, "embedding_provider:  %s\n", c.EmbeddingProvider)
		if c.EmbeddingModel != "" {
			fmt.Fprintf(w, "embedding_model:     %s\n", c.EmbeddingModel)
		}
		fmt.Fprintf(w, "llm_provider:        %s\n", c.LLMProvider)
		if c.LLMModel != "" {
			fmt.Fprintf(w, "llm_model:           %s\n", c.LLMModel)
		}
		fmt.Fprintf(w, "chunk_size:          %d\n", c.ChunkSize)
		fmt.Fprintf(w, "chunk_overlap:       %d\n", c.ChunkOverlap)
		fmt.Fprintf(w, "top_k:               %d\n", c.TopK)
		if c.MoviesDBPath != "" {
			fmt.Fprintf(w, "movies_db_path:      %s\n", c.MoviesDBPath)
		}
		if c.WorkoutsDataPath != "" {
			fmt.Fprintf(w, "workouts_data_path:  %s\n", c.WorkoutsDataPath)
		}
		if c.SP500SourceURL != "" {
			fmt.Fprintf(w, "sp500_source_url:    %s\n", c.SP500SourceURL)
		}
	}
	return nil
}
