package workouts

import (
	"sort"

	"github.com/hyperjump/fortytech/internal/models"
)

// Options are the values offered by the dashboard filters. All are selected by default.
type Options struct {
	Years     []string `json:"years"`
	Locations []string `json:"locations"`
	Classes   []string `json:"classes"`
}

// Selection restricts rows by year, location and class. A nil field selects the default
// option set for that filter; an empty non-nil field selects nothing.
type Selection struct {
	Years     []string `json:"years,omitempty"`
	Locations []string `json:"locations,omitempty"`
	Classes   []string `json:"classes,omitempty"`
}

// Options returns sorted unique years and locations, and class names in order of first
// appearance with the excluded names removed.
func (d *Dataset) Options(excluded []string) Options {
	skip := toSet(excluded)
	years := map[string]struct{}{}
	locations := map[string]struct{}{}
	seenClass := map[string]struct{}{}
	opts := Options{Years: []string{}, Locations: []string{}, Classes: []string{}}
	for _, w := range d.Rows {
		years[w.Year] = struct{}{}
		locations[w.Location] = struct{}{}
		if _, ok := seenClass[w.ClassName]; ok {
			continue
		}
		seenClass[w.ClassName] = struct{}{}
		if _, ok := skip[w.ClassName]; !ok {
			opts.Classes = append(opts.Classes, w.ClassName)
		}
	}
	opts.Years = sortedKeys(years)
	opts.Locations = sortedKeys(locations)
	return opts
}

// Filter returns the rows matching sel. Omitted selections fall back to Options(excluded).
func (d *Dataset) Filter(sel Selection, excluded []string) []models.Workout {
	opts := d.Options(excluded)
	years := toSet(pick(sel.Years, opts.Years))
	locations := toSet(pick(sel.Locations, opts.Locations))
	classes := toSet(pick(sel.Classes, opts.Classes))

	out := []models.Workout{}
	for _, w := range d.Rows {
		if _, ok := years[w.Year]; !ok {
			continue
		}
		if _, ok := classes[w.ClassName]; !ok {
			continue
		}
		if _, ok := locations[w.Location]; !ok {
			continue
		}
		out = append(out, w)
	}
	return out
}

func pick(selected, fallback []string) []string {
	if selected == nil {
		return fallback
	}
	return selected
}

func toSet(values []string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
