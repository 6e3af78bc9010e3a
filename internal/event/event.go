// Package event defines the normalized event record and the best-effort
// transform from a raw API post into one.
package event

import "time"

// Missing is the placeholder shown when a field has no usable source.
const Missing = "–"

// Event is the normalized, display-ready form of one raw post. A zero
// Start means the source record had no parseable start date; such records
// never reach the accumulated collection.
type Event struct {
	Title      string
	Start      time.Time
	End        time.Time
	Place      string
	Categories string
	Link       string
}
