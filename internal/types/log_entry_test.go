package types

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/arb-console/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogEntry(t *testing.T) {
	frame := []byte(`{"id":"a1","timestamp":1729357200123,"level":"OPPORTUNITY","message":"spread 12bps","exchange":"Binance","symbol":"BTCUSDT","data":{"spread":12}}`)

	entry, err := ParseLogEntry(frame)
	require.NoError(t, err)

	assert.Equal(t, "a1", entry.ID)
	assert.Equal(t, int64(1729357200123), entry.Timestamp)
	assert.Equal(t, LogLevelOpportunity, entry.Level)
	assert.Equal(t, "spread 12bps", entry.Message)
	assert.Equal(t, "Binance", entry.ExchangeOrEmpty())
	assert.Equal(t, "BTCUSDT", entry.SymbolOrEmpty())
	assert.JSONEq(t, `{"spread":12}`, string(entry.Data))
	assert.Equal(t, time.UnixMilli(1729357200123), entry.Time())
}

func TestParseLogEntryOptionalTags(t *testing.T) {
	entry, err := ParseLogEntry([]byte(`{"timestamp":1,"level":"info","message":"started"}`))
	require.NoError(t, err)

	assert.True(t, entry.Exchange.IsNone())
	assert.True(t, entry.Symbol.IsNone())
	assert.Equal(t, "", entry.ExchangeOrEmpty())
	assert.Equal(t, LogLevelInfo, entry.Level)
	assert.Empty(t, entry.ID)
}

func TestParseLogEntryMalformed(t *testing.T) {
	tests := []struct {
		name  string
		frame string
	}{
		{name: "plain text", frame: "engine started"},
		{name: "empty", frame: ""},
		{name: "null", frame: "null"},
		{name: "array", frame: `[{"message":"x"}]`},
		{name: "truncated", frame: `{"message":"x"`},
		{name: "wrong type", frame: `{"timestamp":"yesterday"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLogEntry([]byte(tt.frame))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeMalformedEntry))
		})
	}
}

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("WARNING"))
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("warn"))
	assert.Equal(t, LogLevelError, NormalizeLogLevel(" error "))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel(""))
	assert.Equal(t, LogLevel("DEBUG"), NormalizeLogLevel("debug"))

	assert.True(t, LogLevelSuccess.IsKnown())
	assert.False(t, LogLevel("DEBUG").IsKnown())
}

func TestLogEntryTagsRoundTrip(t *testing.T) {
	entry := LogEntry{
		ID:       "x",
		Level:    LogLevelInfo,
		Message:  "m",
		Exchange: optional.Some("OKX"),
		Symbol:   optional.None[string](),
	}

	assert.Equal(t, "OKX", entry.ExchangeOrEmpty())
	assert.Equal(t, "", entry.SymbolOrEmpty())
}
