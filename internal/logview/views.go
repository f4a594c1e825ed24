package logview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/rxtech-lab/arb-console/internal/logstream"
	"github.com/rxtech-lab/arb-console/internal/types"
)

// NewFilterInput creates the text input used to edit the free-text filter.
func NewFilterInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "message, exchange or symbol"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Width = 40

	return ti
}

// RenderEntry renders one entry as a viewer line.
func RenderEntry(entry types.LogEntry, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	var s strings.Builder

	s.WriteString(TimeStyle.Render(entry.Time().In(loc).Format(logstream.TranscriptTimeLayout)))
	s.WriteString(" ")
	s.WriteString(LevelStyle(entry.Level).Render(fmt.Sprintf("%-11s", entry.Level)))
	s.WriteString(" ")

	if entry.Exchange.IsSome() {
		s.WriteString(TagStyle.Render("[" + entry.ExchangeOrEmpty() + "]"))
		s.WriteString(" ")
	}

	if entry.Symbol.IsSome() {
		s.WriteString(TagStyle.Render(entry.SymbolOrEmpty()))
		s.WriteString(" ")
	}

	s.WriteString(entry.Message)

	return s.String()
}

// RenderEntries renders entries one per line.
func RenderEntries(entries []types.LogEntry, loc *time.Location) string {
	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = RenderEntry(entry, loc)
	}

	return strings.Join(lines, "\n")
}

// RenderStatus renders the connection indicator.
func RenderStatus(status logstream.Status) string {
	switch status.State {
	case logstream.StateOpen:
		return ConnectedStyle.Render("● Connected")
	case logstream.StateConnecting:
		return DisconnectedStyle.Render("○ Connecting...")
	default:
		return DisconnectedStyle.Render("○ Disconnected")
	}
}
