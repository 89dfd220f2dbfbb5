package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/fortytech/internal/models"
	"github.com/hyperjump/fortytech/internal/rag"
	"github.com/hyperjump/fortytech/internal/reference"
	"github.com/hyperjump/fortytech/internal/sp500"
	"github.com/hyperjump/fortytech/internal/table"
	"github.com/hyperjump/fortytech/internal/workouts"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{"compact", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteTable(t *testing.T) {
	tbl := table.New([]string{"Symbol", "Security"}, [][]string{{"MMM", "3M"}, {"AAPL", "Apple Inc."}})
	var buf bytes.Buffer
	if err := WriteTable(&buf, tbl, OutputText); err != nil {
		t.Fatal(err)
	}
	want := "Symbol  Security\nMMM     3M\nAAPL    Apple Inc.\n"
	if buf.String() != want {
		t.Errorf("text table:\n%q\nwant\n%q", buf.String(), want)
	}

	buf.Reset()
	if err := WriteTable(&buf, tbl, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Columns []string   `json:"columns"`
		Rows    [][]string `json:"rows"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json table: %v\n%s", err, buf.String())
	}
	if len(decoded.Rows) != 2 || decoded.Columns[1] != "Security" {
		t.Errorf("json table: %+v", decoded)
	}
}

func TestWriteAnswer(t *testing.T) {
	a := &rag.Answer{
		Answer: "  Channels carry values.\n",
		Sources: []rag.ScoredChunk{
			{Chunk: rag.Chunk{Index: 3, Source: "guide.pdf", Text: "Channels   carry\nvalues " + strings.Repeat("x", 300)}, Distance: 0.25},
		},
	}
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, a, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{"Channels carry values.", "Sources (1)", "[1] guide.pdf #3 (distance 0.2500)", "Channels carry values xxx", "..."} {
		if !strings.Contains(out, sub) {
			t.Errorf("answer output missing %q:\n%s", sub, out)
		}
	}

	buf.Reset()
	if err := WriteAnswer(&buf, a, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded rag.Answer
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Sources[0].Source != "guide.pdf" {
		t.Errorf("decoded: %+v", decoded)
	}
}

func TestWriteStatus_text(t *testing.T) {
	size := int64(4096)
	loaded := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	s := &models.StatusResponse{
		Sessions:      2,
		Workouts:      &models.WorkoutsStatus{Path: "/data/w.csv", Rows: 120, LoadedAt: &loaded},
		MoviesDBBytes: &size,
		Config:        &models.StatusConfig{EmbeddingProvider: "mock", LLMProvider: "mock", ChunkSize: 1000, ChunkOverlap: 100, TopK: 4},
	}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, s, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{"sessions:            2", "workout_rows:        120", "2024-05-01 09:30:00", "movies_db_bytes:     4096", "# configuration", "chunk_size:          1000"} {
		if !strings.Contains(out, sub) {
			t.Errorf("status output missing %q:\n%s", sub, out)
		}
	}
	if strings.Contains(out, "sp500_loaded_at") {
		t.Errorf("unexpected sp500 line:\n%s", out)
	}
}

func TestWriteWorkoutReport(t *testing.T) {
	r := &workouts.Report{
		TotalSessions:        240,
		TotalDurationMinutes: 14400,
		TotalDurationHours:   240,
		AvgDurationMinutes:   60,
		AvgDurationHours:     1,
		ClassFrequency:       []workouts.Count{{Label: "Muay Thai", Count: 200}, {Label: "BJJ", Count: 40}},
		SessionsOverTime:     []workouts.DateCount{{Date: "2024-01-01", Count: 240}},
		TimeOfDay:            []workouts.Count{{Label: "6:00pm", Count: 240}},
	}
	var buf bytes.Buffer
	if err := WriteWorkoutReport(&buf, r, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{"Total Sessions:          240", "Total Duration (hours):  240.00", "Avg Duration (hours):    1.00", "Total Duration (mins):   14,400", "Muay Thai  200", "2024-01-01", "6:00pm"} {
		if !strings.Contains(out, sub) {
			t.Errorf("report output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteHistory(t *testing.T) {
	h := &models.History{Symbol: "IBM", Bars: []models.PriceBar{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 163.55, Volume: 4512000},
	}}
	var buf bytes.Buffer
	if err := WriteHistory(&buf, h, OutputText); err != nil {
		t.Fatal(err)
	}
	if out := buf.String(); !strings.Contains(out, "IBM: 1 trading days") || !strings.Contains(out, "163.55") || !strings.Contains(out, "4512000") {
		t.Errorf("history output:\n%s", out)
	}

	buf.Reset()
	if err := WriteHistory(&buf, h, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Close  []models.Point `json:"close"`
		Volume []models.Point `json:"volume"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Close[0].Date != "2024-01-02" || decoded.Volume[0].Value != 4512000 {
		t.Errorf("history json: %+v", decoded)
	}
}

func TestWriteCompaniesAndPrices(t *testing.T) {
	tbl := table.New([]string{"Symbol", "Security", "GICS Sector"}, [][]string{{"ABT", "Abbott Laboratories", "Health Care"}})
	var buf bytes.Buffer
	if err := WriteCompanies(&buf, tbl, "abbott", OutputText); err != nil {
		t.Fatal(err)
	}
	if out := buf.String(); !strings.HasPrefix(out, "Data Dimension: 1 rows and 3 columns.\n") || !strings.Contains(out, `Did you mean "abbott"?`) {
		t.Errorf("companies output:\n%s", out)
	}

	buf.Reset()
	prices := []sp500.SymbolPrices{
		{Symbol: "ABT", Close: []models.Point{{Date: "2024-01-02", Value: 110}, {Date: "2024-01-03", Value: 111.5}}},
		{Symbol: "MMM", Close: []models.Point{}, Error: "no data"},
	}
	if err := WritePrices(&buf, prices, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{"110.00 (2024-01-02)", "111.50 (2024-01-03)", "error: no data"} {
		if !strings.Contains(out, sub) {
			t.Errorf("prices output missing %q:\n%s", sub, out)
		}
	}
}

func TestWritePage(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePage(&buf, reference.TextElements(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{"```go", "  1 | package main", "$$ E = mc^2 $$", "### This is a Subheader", "─"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text elements missing %q:\n%s", sub, out)
		}
	}

	buf.Reset()
	if err := WritePage(&buf, reference.DataElements(), OutputText); err != nil {
		t.Fatal(err)
	}
	out = buf.String()
	for _, sub := range []string{"Column A: 10 (-10)", "Column B: 100 (+200)", `"A": 1`, "data.csv (text/csv)"} {
		if !strings.Contains(out, sub) {
			t.Errorf("data elements missing %q:\n%s", sub, out)
		}
	}

	buf.Reset()
	if err := WritePage(&buf, reference.Basics(), OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Name   string `json:"name"`
		Blocks []struct {
			Type string `json:"type"`
		} `json:"blocks"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Name != reference.PageBasics || decoded.Blocks[len(decoded.Blocks)-1].Type != "stream" {
		t.Errorf("basics json: %+v", decoded)
	}
}
