package codec

import (
	"fmt"
	"time"
)

// inputLayouts are tried in order when reading textual timestamps from JSON or
// CSV inputs.
var inputLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTime accepts RFC 3339 (fractional seconds optional) plus the zone-less
// "2006-01-02T15:04:05", "2006-01-02 15:04:05" and "2006-01-02" forms, which
// are read as UTC.
func ParseTime(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range inputLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("codec: invalid timestamp %q: %w", s, firstErr)
}

// FormatRFC3339 normalizes t to UTC and renders it with RFC3339Nano (trailing
// zeros trimmed).
func FormatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
