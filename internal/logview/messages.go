package logview

import "github.com/rxtech-lab/arb-console/internal/logstream"

// StreamEventMsg carries a consumer event into the update loop.
type StreamEventMsg struct {
	Event logstream.Event
}

// streamClosedMsg signals that the subscription channel was closed.
type streamClosedMsg struct{}

// ExportedMsg reports the result of a transcript export.
type ExportedMsg struct {
	Path  string
	Lines int
	Err   error
}
