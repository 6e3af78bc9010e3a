package fetcher

import (
	"encoding/json"

	"wpevents/internal/event"
)

// Update is one message from a running refresh. The stream ends with
// exactly one terminal message, Finished or Failed, after which the
// channel is closed. Payloads are immutable once sent.
type Update interface {
	isUpdate()
}

// Status is a human-readable description of the current stage.
type Status struct {
	Message string
}

// Progress reports the page just fetched and the total page count.
type Progress struct {
	Page       int
	TotalPages int
}

// Batch carries the normalized events of one fetched page. Batches arrive
// strictly in page order.
type Batch struct {
	Events []event.Event
}

// Finished is the successful terminal message, mirroring what was just
// persisted to the snapshot.
type Finished struct {
	Categories map[int64]string
	Posts      []json.RawMessage
	FetchedAt  string
}

// Failed is the failing terminal message.
type Failed struct {
	Message string
}

func (Status) isUpdate()   {}
func (Progress) isUpdate() {}
func (Batch) isUpdate()    {}
func (Finished) isUpdate() {}
func (Failed) isUpdate()   {}
