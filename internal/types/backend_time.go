package types

import (
	"strings"
	"time"
)

// backendLayouts are the timestamp shapes the backend emits. All of them are UTC;
// naive values carry no zone designator.
var backendLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseBackendTime parses a backend timestamp, treating zone-less values as UTC.
// The zero time is returned for empty or unparsable input.
func ParseBackendTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	for _, layout := range backendLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t
		}
	}

	return time.Time{}
}

// FormatLocalDateTime renders a backend timestamp in local time, or "-" when absent.
func FormatLocalDateTime(value string) string {
	t := ParseBackendTime(value)
	if t.IsZero() {
		return "-"
	}

	return t.Local().Format("2006-01-02 15:04:05")
}
