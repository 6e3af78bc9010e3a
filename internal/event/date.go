package event

import "time"

// compactDate is the 8-digit calendar format the upstream custom fields use.
const compactDate = "20060102"

// ParseCompactDate parses a YYYYMMDD value.
// Returns the zero time when the value is absent or malformed.
func ParseCompactDate(s string) time.Time {
	t, err := time.Parse(compactDate, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatDate renders a date as YYYY-MM-DD, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
