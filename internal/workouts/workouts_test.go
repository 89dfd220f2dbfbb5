package workouts

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/fortytech/internal/config"
	"github.com/hyperjump/fortytech/internal/table"
	"github.com/hyperjump/fortytech/internal/watcher"
)

const sampleCSV = `year,month,time_of_day,class_name,location,duration
2023.0,January,6:00pm,Muay Thai,"Gym A, LLC.",60
2023,January,NaT,Boot Camp,Gym A w/ Coach,45
2024,February,7:30am - 8:30am,Muay Thai,Gym B,60
2024,March,nan,,Gym B,30
2024,Marchh,12:15pm,BJJ,Gym B,90
`

func sampleDataset(t *testing.T) *Dataset {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	d, err := FromTable(tbl)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func writeSample(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "workout_history_cleaned.csv")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromTable_cleaning(t *testing.T) {
	d := sampleDataset(t)
	if d.Len() != 5 {
		t.Fatalf("rows: %d", d.Len())
	}
	first := d.Rows[0]
	if first.Year != "2023" || first.Location != "Gym A" || first.TimeOfDay != "6:00pm" {
		t.Errorf("row 0: %+v", first)
	}
	if d.Rows[1].TimeOfDay != "Unknown" || d.Rows[1].Location != "Gym A" {
		t.Errorf("row 1: %+v", d.Rows[1])
	}
	if d.Rows[3].TimeOfDay != "Unknown" || d.Rows[3].ClassName != "Unknown" {
		t.Errorf("row 3: %+v", d.Rows[3])
	}
	if d.Rows[4].Duration == nil || *d.Rows[4].Duration != 90 {
		t.Errorf("duration: %v", d.Rows[4].Duration)
	}
}

func TestFromTable_missingColumns(t *testing.T) {
	tbl := table.New([]string{"year", "month"}, nil)
	_, err := FromTable(tbl)
	if err == nil || !strings.Contains(err.Error(), "time_of_day") {
		t.Errorf("expected missing column error, got %v", err)
	}
}

func TestCleanLocation(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Valente Brothers, LLC.", "Valente Brothers"},
		{"Downtown w/ Coach Mike", "Downtown"},
		{"  Plain Gym  ", "Plain Gym"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := cleanLocation(tt.in); got != tt.want {
			t.Errorf("cleanLocation(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDataset_Options(t *testing.T) {
	d := sampleDataset(t)
	opts := d.Options(config.DefaultExcludedClasses)
	if !reflect.DeepEqual(opts.Years, []string{"2023", "2024"}) {
		t.Errorf("years: %v", opts.Years)
	}
	if !reflect.DeepEqual(opts.Locations, []string{"Gym A", "Gym B"}) {
		t.Errorf("locations: %v", opts.Locations)
	}
	if !reflect.DeepEqual(opts.Classes, []string{"Muay Thai", "BJJ"}) {
		t.Errorf("classes: %v", opts.Classes)
	}

	all := d.Options(nil)
	if !reflect.DeepEqual(all.Classes, []string{"Muay Thai", "Boot Camp", "Unknown", "BJJ"}) {
		t.Errorf("classes without exclusions: %v", all.Classes)
	}
}

func TestDataset_Filter(t *testing.T) {
	d := sampleDataset(t)
	excluded := config.DefaultExcludedClasses

	tests := []struct {
		name string
		sel  Selection
		want int
	}{
		{"defaults drop excluded classes", Selection{}, 3},
		{"explicit class", Selection{Classes: []string{"Boot Camp"}}, 1},
		{"year subset", Selection{Years: []string{"2024"}}, 2},
		{"location subset", Selection{Locations: []string{"Gym A"}}, 1},
		{"empty selection selects nothing", Selection{Years: []string{}}, 0},
		{"unknown year", Selection{Years: []string{"2025"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := d.Filter(tt.sel, excluded)
			if len(rows) != tt.want {
				t.Errorf("got %d rows, want %d", len(rows), tt.want)
			}
			for _, w := range rows {
				if tt.sel.Classes == nil && (w.ClassName == "Boot Camp" || w.ClassName == "Unknown") {
					t.Errorf("excluded class returned: %+v", w)
				}
			}
		})
	}
}

func TestBuildReport_blankDurationsSkippedInAverage(t *testing.T) {
	csv := `year,month,time_of_day,class_name,location,duration
2024,May,6:00pm,Muay Thai,Gym B,60
2024,May,6:00pm,Muay Thai,Gym B,
2024,May,6:00pm,Muay Thai,Gym B,n/a
`
	tbl, err := table.ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	d, err := FromTable(tbl)
	if err != nil {
		t.Fatal(err)
	}
	if d.Rows[1].Duration != nil || d.Rows[2].Duration != nil {
		t.Fatalf("blank durations should be nil: %+v", d.Rows)
	}
	r, err := BuildReport(d.Rows)
	if err != nil {
		t.Fatal(err)
	}
	if r.TotalSessions != 3 || r.TotalDurationMinutes != 60 || r.AvgDurationMinutes != 60 {
		t.Errorf("metrics: sessions=%d total=%v avg=%v, want 3, 60, 60", r.TotalSessions, r.TotalDurationMinutes, r.AvgDurationMinutes)
	}
	if got := d.Table().Rows[1][5]; got != "" {
		t.Errorf("blank duration rendered as %q", got)
	}
}

func TestBuildReport_noDurations(t *testing.T) {
	tbl, err := table.ReadCSV(strings.NewReader("year,month,time_of_day,class_name,location,duration\n2024,May,6:00pm,BJJ,Gym B,\n"))
	if err != nil {
		t.Fatal(err)
	}
	d, err := FromTable(tbl)
	if err != nil {
		t.Fatal(err)
	}
	r, err := BuildReport(d.Rows)
	if err != nil {
		t.Fatal(err)
	}
	if r.TotalSessions != 1 || r.AvgDurationMinutes != 0 {
		t.Errorf("metrics: %+v", r)
	}
}

func TestDataset_Report(t *testing.T) {
	d := sampleDataset(t)
	r, err := d.Report(Selection{}, config.DefaultExcludedClasses)
	if err != nil {
		t.Fatal(err)
	}
	if r.TotalSessions != 3 || r.TotalDurationMinutes != 210 || r.AvgDurationMinutes != 70 {
		t.Errorf("metrics: %+v", r)
	}
	if r.TotalDurationHours != 3.5 || math.Abs(r.AvgDurationHours-70.0/60) > 1e-9 {
		t.Errorf("hours: total=%v avg=%v", r.TotalDurationHours, r.AvgDurationHours)
	}
	wantClasses := []Count{{"Muay Thai", 2}, {"BJJ", 1}}
	if !reflect.DeepEqual(r.ClassFrequency, wantClasses) {
		t.Errorf("class frequency: %v", r.ClassFrequency)
	}
	wantDates := []DateCount{{"2023-01-01", 1}, {"2024-02-01", 1}}
	if !reflect.DeepEqual(r.SessionsOverTime, wantDates) {
		t.Errorf("sessions over time: %v", r.SessionsOverTime)
	}
	wantClock := []Count{{"12:15pm", 1}, {"6:00pm", 1}, {"7:30am", 1}}
	if !reflect.DeepEqual(r.TimeOfDay, wantClock) {
		t.Errorf("time of day: %v", r.TimeOfDay)
	}
}

func TestDataset_Report_tiesByName(t *testing.T) {
	d := sampleDataset(t)
	r, err := d.Report(Selection{Classes: []string{"Muay Thai", "Boot Camp", "BJJ", "Unknown"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []Count{{"Muay Thai", 2}, {"BJJ", 1}, {"Boot Camp", 1}, {"Unknown", 1}}
	if !reflect.DeepEqual(r.ClassFrequency, want) {
		t.Errorf("class frequency: %v", r.ClassFrequency)
	}
	if len(r.SessionsOverTime) != 3 || r.SessionsOverTime[0].Count != 2 {
		t.Errorf("sessions over time: %v", r.SessionsOverTime)
	}
}

func TestDataset_Report_noRows(t *testing.T) {
	d := sampleDataset(t)
	_, err := d.Report(Selection{Years: []string{"1999"}}, nil)
	if !errors.Is(err, ErrNoRows) {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
}

func TestLoad_csvAndXlsx(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeSample(t, dir, sampleCSV)
	fromCSV, err := Load(csvPath)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := fromCSV.Table().WriteXLSX(&buf); err != nil {
		t.Fatal(err)
	}
	xlsxPath := filepath.Join(dir, "history.xlsx")
	if err := os.WriteFile(xlsxPath, buf.Bytes(), 0600); err != nil {
		t.Fatal(err)
	}
	fromXLSX, err := Load(xlsxPath)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(fromCSV.Rows, fromXLSX.Rows) {
		t.Errorf("xlsx rows differ:\n%v\n%v", fromCSV.Rows, fromXLSX.Rows)
	}
}

func TestLoad_errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
	other := filepath.Join(dir, "history.json")
	if err := os.WriteFile(other, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(other); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestSource_cachesAndReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir, sampleCSV)
	src := NewSource(path, config.DefaultExcludedClasses)
	if src.Rows() != 0 {
		t.Errorf("rows before load: %d", src.Rows())
	}
	opts, err := src.Options()
	if err != nil {
		t.Fatal(err)
	}
	if len(opts.Classes) != 2 || src.Rows() != 5 {
		t.Errorf("options %v rows %d", opts, src.Rows())
	}

	writeSample(t, dir, "year,month,time_of_day,class_name,location,duration\n2025,May,9:00am,BJJ,Gym C,60\n")
	if src.Rows() != 5 {
		t.Error("dataset should stay cached until reload")
	}
	if _, err := src.Reload(); err != nil {
		t.Fatal(err)
	}
	r, err := src.Report(Selection{})
	if err != nil {
		t.Fatal(err)
	}
	if r.TotalSessions != 1 || src.LoadedAt().IsZero() {
		t.Errorf("after reload: %+v", r)
	}
}

func TestSource_reloadKeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir, sampleCSV)
	src := NewSource(path, nil)
	if _, err := src.Dataset(); err != nil {
		t.Fatal(err)
	}
	writeSample(t, dir, "year,month\n2024,May\n")
	if _, err := src.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	if src.Rows() != 5 {
		t.Errorf("previous dataset should be kept, rows=%d", src.Rows())
	}
}

func TestSource_Watch(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir, sampleCSV)
	src := NewSource(path, nil)
	if _, err := src.Dataset(); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := src.Watch(ctx, watcher.WithDebounce(50*time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	writeSample(t, dir, "year,month,time_of_day,class_name,location,duration\n2025,May,9:00am,BJJ,Gym C,60\n")
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) && src.Rows() != 1 {
		time.Sleep(20 * time.Millisecond)
	}
	if src.Rows() != 1 {
		t.Errorf("expected reload after file change, rows=%d", src.Rows())
	}
}
