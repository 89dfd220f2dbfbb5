package reference

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/hyperjump/fortytech/internal/table"
)

// Page names, as used in URLs and on the command line.
const (
	PageBasics       = "basics"
	PageTextElements = "text-elements"
	PageDataElements = "data-elements"
)

// DataDownloadPath is where the data elements CSV is served.
const DataDownloadPath = "/api/v1/reference/data-elements/download"

// DataFileName is the download name of the data elements CSV.
const DataFileName = "data.csv"

// StreamText is the text streamed word by word on the basics page.
const StreamText = "\n   #### Stream data example, this is a long text to demonstrate the streaming feature of this app.\n"

const basicsMarkdown = `### This is a markdown text
- Item 1
- Item 2
### H-tags in markdown
1. Item 1
2. Item 2
`

const codeSample = `package main

import "fmt"

func main() {
	fmt.Println("Hello, fortytech!")
	for i := 0; i < 10; i++ {
		fmt.Printf("Iteration %d\n", i)
	}
}
`

// Names returns the page names in display order.
func Names() []string {
	return []string{PageBasics, PageTextElements, PageDataElements}
}

// Get returns the named page.
func Get(name string) (Page, error) {
	switch name {
	case PageBasics:
		return Basics(), nil
	case PageTextElements:
		return TextElements(), nil
	case PageDataElements:
		return DataElements(), nil
	}
	return Page{}, fmt.Errorf("%w: %q", ErrUnknownPage, name)
}

// Basics is the basic syntax walkthrough.
func Basics() Page {
	df := table.New([]string{"Column 1", "Column 2"}, [][]string{{"1", "4"}, {"2", "5"}, {"3", "6"}})
	return Page{Name: PageBasics, Blocks: []Block{
		title("Basic App & Syntax"),
		markdown("This is a simple application to demonstrate basic syntax.\nHow to write text, markdown, and stream text."),
		subheader("Subheader: Displaying DataFrame"),
		markdown("**Populate a dataframe using write**"),
		markdown("### You can also use markdown to write markdown text"),
		text("### Or use text to write plain text"),
		{Kind: KindTable, Table: df},
		markdown(basicsMarkdown),
		markdown("### Streaming data word by word"),
		{Kind: KindStream, Text: StreamText},
	}}
}

// TextElements showcases the text block kinds.
func TextElements() Page {
	return Page{Name: PageTextElements, Blocks: []Block{
		title("Text Elements 😃"),
		markdown(" For icons on MacOS: Press Command + Control + Spacebar to open the emoji picker."),
		header("This is a Header 🎉"),
		subheader("This is a Subheader"),
		caption("This is a Caption, which provides additional context or notes."),
		markdown("Here is a code snippet:"),
		code(codeSample, "go"),
		text("This is a plain text element."),
		markdown("Here is a LaTeX equation, this is good for mathematical expressions:"),
		{Kind: KindLatex, Text: "E = mc^2"},
		divider(),
		markdown("Below is a divider:"),
		divider(),
		markdown("This is after the divider."),
	}}
}

// DataTable is the small A/B/C table of the data elements page.
func DataTable() *table.Table {
	return table.New([]string{"A", "B", "C"}, [][]string{
		{"1", "10", "100"},
		{"2", "20", "200"},
		{"3", "30", "300"},
		{"4", "40", "400"},
	})
}

var metricDeltas = map[string]int64{"A": -10, "B": 200, "C": 50}

// Metrics returns the column sums of t with their fixed deltas, in column order.
func Metrics(t *table.Table) ([]Metric, error) {
	out := make([]Metric, 0, len(t.Columns))
	for _, col := range t.Columns {
		values, err := t.Column(col)
		if err != nil {
			return nil, err
		}
		var sum int64
		for _, v := range values {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col, err)
			}
			sum += n
		}
		out = append(out, Metric{Label: "Column " + col, Value: sum, Delta: metricDeltas[col]})
	}
	return out, nil
}

// DataCSV returns the data elements table as CSV without an index column.
func DataCSV() ([]byte, error) {
	var buf bytes.Buffer
	if err := DataTable().WriteCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DataElements shows the A/B/C table as metrics, table, records and a download.
func DataElements() Page {
	df := DataTable()
	metrics, err := Metrics(df)
	if err != nil {
		panic(err) // static table
	}
	return Page{Name: PageDataElements, Blocks: []Block{
		title("Data Elements"),
		markdown("#### Demo using metrics"),
		{Kind: KindMetric, Metrics: metrics},
		header("Display the DataFrame"),
		{Kind: KindTable, Table: df},
		header("Display the DataFrame as JSON"),
		{Kind: KindJSON, JSON: df.Records()},
		header("Display the DataFrame as a CSV"),
		{Kind: KindDownload, Download: &Download{
			Label:    "Download data as CSV",
			FileName: DataFileName,
			MIME:     "text/csv",
			Href:     DataDownloadPath,
		}},
	}}
}
