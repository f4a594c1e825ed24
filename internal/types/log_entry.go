package types

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/arb-console/pkg/errors"
)

// LogLevel is the severity of a log entry emitted by the backend engine.
type LogLevel string

const (
	LogLevelInfo        LogLevel = "INFO"
	LogLevelWarn        LogLevel = "WARN"
	LogLevelError       LogLevel = "ERROR"
	LogLevelSuccess     LogLevel = "SUCCESS"
	LogLevelOpportunity LogLevel = "OPPORTUNITY"
)

// LogLevels lists the known levels in display order.
var LogLevels = []LogLevel{
	LogLevelInfo,
	LogLevelWarn,
	LogLevelError,
	LogLevelSuccess,
	LogLevelOpportunity,
}

// NormalizeLogLevel upper-cases a level and folds the aliases the engine
// is known to emit ("WARNING") onto the canonical names.
// Unknown levels are kept verbatim.
func NormalizeLogLevel(level string) LogLevel {
	l := strings.ToUpper(strings.TrimSpace(level))
	switch l {
	case "WARNING":
		return LogLevelWarn
	case "":
		return LogLevelInfo
	}

	return LogLevel(l)
}

// IsKnown reports whether the level belongs to the fixed enumeration.
func (l LogLevel) IsKnown() bool {
	for _, known := range LogLevels {
		if l == known {
			return true
		}
	}

	return false
}

// LogEntry is one event delivered over the log stream.
// Entries are immutable once received.
type LogEntry struct {
	// ID identifies the entry. Generated locally when the backend omits it.
	ID string `json:"id"`
	// Timestamp is the emission time in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
	// Level is the severity of the entry.
	Level LogLevel `json:"level"`
	// Message is the free-text content.
	Message string `json:"message"`
	// Exchange optionally tags the exchange the event concerns.
	Exchange optional.Option[string] `json:"exchange"`
	// Symbol optionally tags the trading pair the event concerns.
	Symbol optional.Option[string] `json:"symbol"`
	// Data holds an optional structured payload, passed through untouched.
	Data json.RawMessage `json:"data,omitempty"`
}

// Time returns the entry timestamp as a time.Time.
func (e LogEntry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// ExchangeOrEmpty returns the exchange tag or an empty string.
func (e LogEntry) ExchangeOrEmpty() string {
	return e.Exchange.TakeOr("")
}

// SymbolOrEmpty returns the symbol tag or an empty string.
func (e LogEntry) SymbolOrEmpty() string {
	return e.Symbol.TakeOr("")
}

// ParseLogEntry decodes one stream frame into a LogEntry.
// Only JSON objects are accepted; anything else is reported as ErrCodeMalformedEntry.
// The level is normalized; ID and Timestamp are left as received.
func ParseLogEntry(frame []byte) (LogEntry, error) {
	trimmed := bytes.TrimSpace(frame)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return LogEntry{}, errors.New(errors.ErrCodeMalformedEntry, "log frame is not a JSON object")
	}

	var entry LogEntry
	if err := json.Unmarshal(trimmed, &entry); err != nil {
		return LogEntry{}, errors.Wrap(errors.ErrCodeMalformedEntry, "failed to decode log frame", err)
	}

	entry.Level = NormalizeLogLevel(string(entry.Level))

	return entry, nil
}
