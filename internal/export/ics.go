package export

import (
	"crypto/sha1"
	"fmt"
	"os"
	"strings"
	"time"

	"wpevents/internal/event"
)

// WriteICS writes events as one iCalendar file of all-day VEVENTs.
func WriteICS(path string, events []event.Event) error {
	data := GenerateICS(events, time.Now().UTC())
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

// GenerateICS builds the VCALENDAR text. stamp becomes each entry's
// DTSTAMP.
func GenerateICS(events []event.Event, stamp time.Time) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//wpevents//wpevents//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	for _, evt := range events {
		appendEvent(&ics, evt, stamp)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func appendEvent(ics *strings.Builder, evt event.Event, stamp time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")

	fmt.Fprintf(ics, "UID:%s@wpevents\r\n", eventUID(evt))
	fmt.Fprintf(ics, "DTSTAMP:%s\r\n", stamp.UTC().Format("20060102T150405Z"))

	// All-day events; DTEND is exclusive per RFC 5545.
	start := evt.Start
	end := evt.End
	if end.IsZero() {
		end = start
	}
	fmt.Fprintf(ics, "DTSTART;VALUE=DATE:%s\r\n", start.Format("20060102"))
	fmt.Fprintf(ics, "DTEND;VALUE=DATE:%s\r\n", end.AddDate(0, 0, 1).Format("20060102"))

	fmt.Fprintf(ics, "SUMMARY:%s\r\n", escapeICS(evt.Title))
	if evt.Place != "" && evt.Place != event.Missing {
		fmt.Fprintf(ics, "LOCATION:%s\r\n", escapeICS(evt.Place))
	}
	if evt.Categories != "" && evt.Categories != event.Missing {
		fmt.Fprintf(ics, "CATEGORIES:%s\r\n", escapeICS(evt.Categories))
	}
	if evt.Link != "" {
		fmt.Fprintf(ics, "URL:%s\r\n", evt.Link)
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:TRANSPARENT\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// eventUID derives a deterministic identifier from the event's stable
// fields.
func eventUID(evt event.Event) string {
	h := sha1.New()
	h.Write([]byte(evt.Title + "|" + event.FormatDate(evt.Start) + "|" + evt.Link))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// escapeICS escapes special characters according to RFC 5545.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
