package event

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Custom field keys of the upstream post objects.
const (
	fieldStart = "esemeny_kezdete"
	fieldEnd   = "esemeny_vege"
	fieldPlace = "helyszin_rovid_neve"
	fieldMap   = "esemeny_terkep"
	fieldCity  = "city"
)

// rawPost is the slice of a post object the normalizer reads. The custom
// field bags stay raw; they are decoded separately so a malformed bag
// cannot poison the rest of the record.
type rawPost struct {
	Title struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	Link       string          `json:"link"`
	Categories []int64         `json:"categories"`
	ACF        json.RawMessage `json:"acf"`
	Meta       json.RawMessage `json:"meta"`
}

// Normalize turns one raw post into an Event. Every field has a defined
// fallback; malformed input yields sentinels or zero dates, never an error.
// Callers drop events with a zero Start.
func Normalize(raw json.RawMessage, categories map[int64]string) Event {
	var p rawPost
	// Best effort: type mismatches leave the affected field zero and the
	// rest of the record intact.
	_ = json.Unmarshal(raw, &p)

	fields := decodeFieldBag(p.ACF)
	if len(fields) == 0 {
		fields = decodeFieldBag(p.Meta)
	}

	place := strings.TrimSpace(stringField(fields, fieldPlace))
	if place == "" {
		if m, ok := fields[fieldMap].(map[string]any); ok {
			if city, ok := m[fieldCity].(string); ok {
				place = strings.TrimSpace(city)
			}
		}
	}
	if place == "" {
		place = Missing
	}

	names := make([]string, 0, len(p.Categories))
	for _, id := range p.Categories {
		if name, ok := categories[id]; ok {
			names = append(names, name)
		} else {
			names = append(names, strconv.FormatInt(id, 10))
		}
	}
	cats := Missing
	if len(names) > 0 {
		cats = strings.Join(names, ", ")
	}

	return Event{
		Title:      htmlToText(p.Title.Rendered),
		Start:      ParseCompactDate(stringField(fields, fieldStart)),
		End:        ParseCompactDate(stringField(fields, fieldEnd)),
		Place:      place,
		Categories: cats,
		Link:       p.Link,
	}
}

// NormalizeAll normalizes one page of raw posts, dropping records without a
// parseable start date.
func NormalizeAll(raws []json.RawMessage, categories map[int64]string) []Event {
	events := make([]Event, 0, len(raws))
	for _, raw := range raws {
		evt := Normalize(raw, categories)
		if evt.Start.IsZero() {
			continue
		}
		events = append(events, evt)
	}
	return events
}

func decodeFieldBag(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return fields
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

// htmlToText flattens a rendered HTML fragment to trimmed plain text,
// decoding entities along the way.
func htmlToText(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
