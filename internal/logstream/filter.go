package logstream

import (
	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/rxtech-lab/arb-console/pkg/utils"
)

// LevelAll disables level filtering.
const LevelAll = "ALL"

// Filter selects the entries shown by a view. The zero value matches everything.
type Filter struct {
	// Text is matched case-insensitively against message, exchange and symbol.
	Text string
	// Level is LevelAll (or empty) or one log level.
	Level string
}

// IsZero reports whether the filter lets every entry through.
func (f Filter) IsZero() bool {
	return f.Text == "" && (f.Level == "" || f.Level == LevelAll)
}

// Match reports whether entry passes the filter.
func (f Filter) Match(entry types.LogEntry) bool {
	return f.matchText(entry) && f.matchLevel(entry)
}

func (f Filter) matchText(entry types.LogEntry) bool {
	if f.Text == "" {
		return true
	}

	return utils.ContainsFold(entry.Message, f.Text) ||
		(entry.Exchange.IsSome() && utils.ContainsFold(entry.ExchangeOrEmpty(), f.Text)) ||
		(entry.Symbol.IsSome() && utils.ContainsFold(entry.SymbolOrEmpty(), f.Text))
}

func (f Filter) matchLevel(entry types.LogEntry) bool {
	if f.Level == "" || f.Level == LevelAll {
		return true
	}

	return entry.Level == types.LogLevel(f.Level)
}

// Apply returns the matching entries in their original order.
// The input slice is never modified.
func (f Filter) Apply(entries []types.LogEntry) []types.LogEntry {
	out := make([]types.LogEntry, 0, len(entries))

	for _, entry := range entries {
		if f.Match(entry) {
			out = append(out, entry)
		}
	}

	return out
}

// LevelChoices lists the level filter values in cycling order.
func LevelChoices() []string {
	choices := make([]string, 0, len(types.LogLevels)+1)
	choices = append(choices, LevelAll)

	for _, level := range types.LogLevels {
		choices = append(choices, string(level))
	}

	return choices
}

// NextLevel returns the level choice following current, wrapping around.
func NextLevel(current string) string {
	choices := LevelChoices()
	for i, choice := range choices {
		if choice == current {
			return choices[(i+1)%len(choices)]
		}
	}

	return LevelAll
}
