package mocks

import (
	"testing"

	"github.com/rxtech-lab/arb-console/internal/types"
)

func TestLogGenerator_Generate(t *testing.T) {
	gen := NewLogGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Count = 100

	entries := gen.Generate(config)

	if len(entries) != 100 {
		t.Errorf("expected 100 entries, got %d", len(entries))
	}

	// Verify entries are in chronological order
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp-entries[i-1].Timestamp != config.Interval.Milliseconds() {
			t.Errorf("unexpected interval at index %d", i)
		}
	}

	for i, e := range entries {
		if !e.Level.IsKnown() {
			t.Errorf("unknown level %q at index %d", e.Level, i)
		}

		if e.ID == "" || e.Message == "" {
			t.Errorf("missing id or message at index %d", i)
		}
	}
}

func TestLogGenerator_Reproducibility(t *testing.T) {
	gen1 := NewLogGenerator(42)
	gen2 := NewLogGenerator(42)

	config := DefaultConfig()
	config.Count = 10

	entries1 := gen1.Generate(config)
	entries2 := gen2.Generate(config)

	for i := range entries1 {
		if entries1[i].Message != entries2[i].Message || entries1[i].Level != entries2[i].Level {
			t.Errorf("entries not reproducible at index %d", i)
		}
	}
}

func TestEncodeFrame_RoundTrip(t *testing.T) {
	gen := NewLogGenerator(7)
	config := DefaultConfig()
	config.Count = 20

	for _, frame := range gen.GenerateFrames(config) {
		entry, err := types.ParseLogEntry(frame)
		if err != nil {
			t.Fatalf("generated frame did not parse: %v", err)
		}

		if entry.Exchange.IsNone() || entry.Symbol.IsNone() {
			t.Errorf("expected exchange and symbol tags on %s", entry.ID)
		}
	}
}
