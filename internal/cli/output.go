package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"wpevents/internal/event"
)

// OutputFormat specifies how listing results are rendered.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// eventRow is the serialized form of one event in listing output.
type eventRow struct {
	Title      string `json:"title"`
	Start      string `json:"start"`
	End        string `json:"end,omitempty"`
	Place      string `json:"place"`
	Categories string `json:"categories"`
	Link       string `json:"link"`
}

// listResult is the JSON envelope of a listing.
type listResult struct {
	FetchedAt  string     `json:"fetched_at,omitempty"`
	EventCount int        `json:"event_count"`
	Events     []eventRow `json:"events"`
}

// WriteEvents renders events in the given format. fetchedAt is the
// snapshot timestamp the events came from.
func WriteEvents(w io.Writer, events []event.Event, fetchedAt string, format OutputFormat) error {
	rows := make([]eventRow, 0, len(events))
	for _, evt := range events {
		rows = append(rows, eventRow{
			Title:      evt.Title,
			Start:      event.FormatDate(evt.Start),
			End:        event.FormatDate(evt.End),
			Place:      evt.Place,
			Categories: evt.Categories,
			Link:       evt.Link,
		})
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, listResult{FetchedAt: fetchedAt, EventCount: len(rows), Events: rows})
	case FormatText:
		return writeText(w, rows, fetchedAt)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, result listResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func writeText(w io.Writer, rows []eventRow, fetchedAt string) error {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tEND\tTITLE\tPLACE\tCATEGORIES")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", row.Start, row.End, row.Title, row.Place, row.Categories)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d events", len(rows))
	if fetchedAt != "" {
		fmt.Fprintf(w, " (snapshot from %s)", fetchedAt)
	}
	fmt.Fprintln(w)
	return nil
}
