package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseBackendTime(t *testing.T) {
	expected := time.Date(2025, 10, 23, 21, 40, 19, 462254000, time.UTC)

	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{name: "naive with space", input: "2025-10-23 21:40:19.462254", expected: expected},
		{name: "naive iso", input: "2025-10-23T21:40:19.462254", expected: expected},
		{name: "zulu", input: "2025-10-23T21:40:19.462254Z", expected: expected},
		{name: "seconds only", input: "2025-10-23 21:40:19", expected: time.Date(2025, 10, 23, 21, 40, 19, 0, time.UTC)},
		{name: "empty", input: "", expected: time.Time{}},
		{name: "garbage", input: "not a date", expected: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.expected.Equal(ParseBackendTime(tt.input)))
		})
	}
}

func TestFormatLocalDateTime(t *testing.T) {
	assert.Equal(t, "-", FormatLocalDateTime(""))

	want := time.Date(2025, 10, 23, 21, 40, 19, 0, time.UTC).Local().Format("2006-01-02 15:04:05")
	assert.Equal(t, want, FormatLocalDateTime("2025-10-23 21:40:19"))
}
