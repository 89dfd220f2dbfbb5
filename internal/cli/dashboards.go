package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hyperjump/fortytech/internal/models"
	"github.com/hyperjump/fortytech/internal/sp500"
	"github.com/hyperjump/fortytech/internal/table"
	"github.com/hyperjump/fortytech/internal/workouts"
	"github.com/hyperjump/fortytech/pkg/utils"
)

// WriteWorkoutReport writes the dashboard metrics and chart series.
func WriteWorkoutReport(w io.Writer, r *workouts.Report, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, r)
	}
	fmt.Fprintf(w, "Total Sessions:          %d\n", r.TotalSessions)
	fmt.Fprintf(w, "Total Duration (hours):  %s\n", utils.FormatThousands(r.TotalDurationHours, 2))
	fmt.Fprintf(w, "Avg Duration (hours):    %.2f\n", r.AvgDurationHours)
	fmt.Fprintf(w, "Total Duration (mins):   %s\n", utils.FormatThousands(r.TotalDurationMinutes, 0))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\n### Class Frequency")
	for _, c := range r.ClassFrequency {
		fmt.Fprintf(tw, "%s\t%d\n", c.Label, c.Count)
	}
	fmt.Fprintln(tw, "\n### Sessions Over Time")
	for _, d := range r.SessionsOverTime {
		fmt.Fprintf(tw, "%s\t%d\n", d.Date, d.Count)
	}
	fmt.Fprintln(tw, "\n### Time of Day Popularity")
	for _, c := range r.TimeOfDay {
		fmt.Fprintf(tw, "%s\t%d\n", c.Label, c.Count)
	}
	return tw.Flush()
}

// WriteHistory writes daily closes and volumes.
func WriteHistory(w io.Writer, h *models.History, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, struct {
			Symbol string         `json:"symbol"`
			Close  []models.Point `json:"close"`
			Volume []models.Point `json:"volume"`
		}{h.Symbol, h.CloseSeries(), h.VolumeSeries()})
	}
	fmt.Fprintf(w, "%s: %d trading days\n", h.Symbol, len(h.Bars))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "date\tclose\tvolume\t")
	for _, b := range h.Bars {
		fmt.Fprintf(tw, "%s\t%.2f\t%d\t\n", b.Date.Format("2006-01-02"), b.Close, b.Volume)
	}
	return tw.Flush()
}

// WriteCompanies writes a filtered or searched constituents table with its dimension line.
func WriteCompanies(w io.Writer, t *table.Table, suggestion string, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, struct {
			Dimension  string       `json:"dimension"`
			Table      *table.Table `json:"table"`
			Suggestion string       `json:"suggestion,omitempty"`
		}{sp500.DimensionText(t), t, suggestion})
	}
	fmt.Fprintln(w, sp500.DimensionText(t))
	if suggestion != "" {
		fmt.Fprintf(w, "Did you mean %q?\n", suggestion)
	}
	return writeTableText(w, t)
}

// WritePrices writes the latest close of each symbol, or its fetch error.
func WritePrices(w io.Writer, prices []sp500.SymbolPrices, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, map[string]interface{}{"companies": prices})
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "symbol\tfirst\tlast\tdays")
	for _, p := range prices {
		if p.Error != "" {
			fmt.Fprintf(tw, "%s\terror: %s\t\t\n", p.Symbol, p.Error)
			continue
		}
		if len(p.Close) == 0 {
			fmt.Fprintf(tw, "%s\t-\t-\t0\n", p.Symbol)
			continue
		}
		first, last := p.Close[0], p.Close[len(p.Close)-1]
		fmt.Fprintf(tw, "%s\t%.2f (%s)\t%.2f (%s)\t%d\n", p.Symbol, first.Value, first.Date, last.Value, last.Date, len(p.Close))
	}
	return tw.Flush()
}
