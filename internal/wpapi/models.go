package wpapi

import (
	"encoding/json"
	"fmt"
)

// Category is one entry of the categories collection. Pointer fields so a
// missing id or name can be told apart from a zero value.
type Category struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
}

// PostsPage is one page of the posts collection. Posts stay raw so the
// snapshot can persist them verbatim.
type PostsPage struct {
	Posts      []json.RawMessage
	TotalPages int
}

// StatusError reports a non-2xx response. It is never retried.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}
