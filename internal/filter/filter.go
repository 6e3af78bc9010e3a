// Package filter is the pure query engine over the accumulated events:
// date range, category set and free-text criteria, followed by a
// deterministic sort.
package filter

import (
	"sort"
	"strings"
	"time"

	"wpevents/internal/event"
)

// Criteria holds one query. Nil date bounds are open; an empty category
// set and an empty query match everything. Criteria are transient and
// rebuilt by the caller on every invocation.
type Criteria struct {
	From       *time.Time
	To         *time.Time
	Categories []string
	Query      string
}

// Apply runs the filter pipeline over events and returns the survivors
// sorted ascending by (start date, title). It is pure and re-entrant; no
// matches yields an empty slice, never an error.
func Apply(events []event.Event, c Criteria) []event.Event {
	out := make([]event.Event, 0, len(events))
	for _, evt := range events {
		if matches(evt, c) {
			out = append(out, evt)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].Title < out[j].Title
	})

	return out
}

func matches(evt event.Event, c Criteria) bool {
	// Defensive: records without a start date are already excluded upstream.
	if evt.Start.IsZero() {
		return false
	}

	// Inclusive date bounds.
	if c.From != nil && evt.Start.Before(*c.From) {
		return false
	}
	if c.To != nil && evt.Start.After(*c.To) {
		return false
	}

	if len(c.Categories) > 0 && !hasAnyCategory(evt, c.Categories) {
		return false
	}

	if q := strings.ToLower(strings.TrimSpace(c.Query)); q != "" {
		title := strings.ToLower(evt.Title)
		place := strings.ToLower(evt.Place)
		if !strings.Contains(title, q) && !strings.Contains(place, q) {
			return false
		}
	}

	return true
}

// hasAnyCategory reports whether at least one of the event's comma-joined
// category names exactly matches a selected name.
func hasAnyCategory(evt event.Event, selected []string) bool {
	for _, part := range strings.Split(evt.Categories, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		for _, name := range selected {
			if part == name {
				return true
			}
		}
	}
	return false
}

// CategoryNames returns the sorted set of distinct category names found in
// events, splitting the comma-joined field. The missing-value placeholder
// is not a name and is skipped.
func CategoryNames(events []event.Event) []string {
	seen := make(map[string]struct{})
	for _, evt := range events {
		for _, part := range strings.Split(evt.Categories, ",") {
			part = strings.TrimSpace(part)
			if part == "" || part == event.Missing {
				continue
			}
			seen[part] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
