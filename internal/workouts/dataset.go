// Package workouts loads the workout history export and builds the dashboard report:
// filter options, filtered rows and the aggregate metrics and chart series.
package workouts

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperjump/fortytech/internal/models"
	"github.com/hyperjump/fortytech/internal/table"
)

// ErrNoRows is returned when a filter selects nothing.
var ErrNoRows = errors.New("no data available for the selected filters")

// NoDataMessage is the user-facing text for ErrNoRows.
const NoDataMessage = "No data available for the selected filters."

// Columns are the required dataset columns, in export order.
var Columns = []string{"year", "month", "time_of_day", "class_name", "location", "duration"}

const unknown = "Unknown"

var locationPattern = regexp.MustCompile(`^(.*?)(?:, LLC\.| w/|$)`)

// Dataset is the cleaned workout history.
type Dataset struct {
	Rows []models.Workout
}

// Load reads a .csv or .xlsx export from path and cleans it.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var t *table.Table
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", "":
		t, err = table.ReadCSV(f)
	case ".xlsx":
		t, err = table.ReadXLSX(f)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return FromTable(t)
}

// FromTable cleans a raw table into a Dataset. Missing required columns are an error.
func FromTable(t *table.Table) (*Dataset, error) {
	idx := make(map[string]int, len(Columns))
	var missing []string
	for _, c := range Columns {
		i := t.ColumnIndex(c)
		if i < 0 {
			missing = append(missing, c)
		}
		idx[c] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("dataset is missing columns: %s", strings.Join(missing, ", "))
	}

	ds := &Dataset{Rows: make([]models.Workout, 0, len(t.Rows))}
	for _, r := range t.Rows {
		ds.Rows = append(ds.Rows, models.Workout{
			Year:      cleanYear(r[idx["year"]]),
			Month:     strings.TrimSpace(r[idx["month"]]),
			TimeOfDay: orUnknown(r[idx["time_of_day"]], "NaT", "nan"),
			ClassName: orUnknown(r[idx["class_name"]], "nan"),
			Location:  cleanLocation(r[idx["location"]]),
			Duration:  parseDuration(r[idx["duration"]]),
		})
	}
	return ds, nil
}

func cleanYear(s string) string {
	return strings.TrimSuffix(strings.TrimSpace(s), ".0")
}

func orUnknown(s string, nulls ...string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return unknown
	}
	for _, n := range nulls {
		if s == n {
			return unknown
		}
	}
	return s
}

func cleanLocation(s string) string {
	m := locationPattern.FindStringSubmatch(s)
	if m == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(m[1])
}

// parseDuration returns minutes, or nil for blank and unparsable cells.
func parseDuration(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Table renders the cleaned rows as a table with the export columns.
func (d *Dataset) Table() *table.Table {
	rows := make([][]string, 0, len(d.Rows))
	for _, w := range d.Rows {
		rows = append(rows, []string{
			w.Year, w.Month, w.TimeOfDay, w.ClassName, w.Location,
			formatDuration(w.Duration),
		})
	}
	return table.New(Columns, rows)
}

func formatDuration(d *float64) string {
	if d == nil {
		return ""
	}
	return strconv.FormatFloat(*d, 'f', -1, 64)
}
