package workouts

import (
	"regexp"
	"sort"
	"time"

	"github.com/hyperjump/fortytech/internal/models"
)

var clockPattern = regexp.MustCompile(`\d+:\d+\w+`)

// Count is a label with its number of sessions.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DateCount is the number of sessions in the month starting at Date.
type DateCount struct {
	Date  string `json:"date"` // YYYY-MM-DD, first day of the month
	Count int    `json:"count"`
}

// Report holds the dashboard metrics and chart series for a set of rows.
type Report struct {
	TotalSessions        int         `json:"total_sessions"`
	TotalDurationMinutes float64     `json:"total_duration_minutes"`
	TotalDurationHours   float64     `json:"total_duration_hours"`
	AvgDurationMinutes   float64     `json:"avg_duration_minutes"`
	AvgDurationHours     float64     `json:"avg_duration_hours"`
	ClassFrequency       []Count     `json:"class_frequency"`
	SessionsOverTime     []DateCount `json:"sessions_over_time"`
	TimeOfDay            []Count     `json:"time_of_day"`
}

// BuildReport aggregates rows. It returns ErrNoRows when rows is empty.
func BuildReport(rows []models.Workout) (*Report, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	r := &Report{TotalSessions: len(rows)}
	classes := map[string]int{}
	months := map[time.Time]int{}
	clocks := map[string]int{}
	timed := 0
	for _, w := range rows {
		if w.Duration != nil {
			r.TotalDurationMinutes += *w.Duration
			timed++
		}
		classes[w.ClassName]++
		if m, err := time.Parse("2006 January", w.Year+" "+w.Month); err == nil {
			months[m]++
		}
		clocks[clockLabel(w.TimeOfDay)]++
	}
	if timed > 0 {
		r.AvgDurationMinutes = r.TotalDurationMinutes / float64(timed)
	}
	r.TotalDurationHours = r.TotalDurationMinutes / 60
	r.AvgDurationHours = r.AvgDurationMinutes / 60

	r.ClassFrequency = counts(classes)
	sort.SliceStable(r.ClassFrequency, func(i, j int) bool {
		a, b := r.ClassFrequency[i], r.ClassFrequency[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Label < b.Label
	})

	dates := make([]time.Time, 0, len(months))
	for m := range months {
		dates = append(dates, m)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	r.SessionsOverTime = make([]DateCount, 0, len(dates))
	for _, m := range dates {
		r.SessionsOverTime = append(r.SessionsOverTime, DateCount{Date: m.Format("2006-01-02"), Count: months[m]})
	}

	r.TimeOfDay = counts(clocks)
	sort.Slice(r.TimeOfDay, func(i, j int) bool { return r.TimeOfDay[i].Label < r.TimeOfDay[j].Label })
	return r, nil
}

// Report filters the dataset and aggregates the result.
func (d *Dataset) Report(sel Selection, excluded []string) (*Report, error) {
	return BuildReport(d.Filter(sel, excluded))
}

func clockLabel(s string) string {
	if m := clockPattern.FindString(s); m != "" {
		return m
	}
	return unknown
}

func counts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Label: k, Count: v})
	}
	return out
}
