package event

import (
	"testing"
	"time"
)

func TestParseCompactDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "valid date", input: "20240901", want: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)},
		{name: "empty", input: "", want: time.Time{}},
		{name: "dashed format rejected", input: "2024-09-01", want: time.Time{}},
		{name: "impossible month", input: "20241341", want: time.Time{}},
		{name: "truncated", input: "202409", want: time.Time{}},
		{name: "garbage", input: "hamarosan", want: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCompactDate(tt.input)
			if !got.Equal(tt.want) {
				t.Errorf("ParseCompactDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)); got != "2024-09-01" {
		t.Errorf("FormatDate = %q, want 2024-09-01", got)
	}
	if got := FormatDate(time.Time{}); got != "" {
		t.Errorf("FormatDate(zero) = %q, want empty", got)
	}
}
