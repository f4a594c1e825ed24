package logstream

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/rxtech-lab/arb-console/pkg/errors"
)

// TranscriptTimeLayout is the per-line timestamp layout (HH:mm:ss.SSS).
const TranscriptTimeLayout = "15:04:05.000"

// lineBreaks keeps every entry on a single transcript line.
var lineBreaks = strings.NewReplacer("\r\n", `\n`, "\n", `\n`, "\r", `\r`)

// TranscriptLine renders one entry as "[HH:mm:ss.SSS] [LEVEL] message".
// Line breaks inside the message are escaped.
func TranscriptLine(entry types.LogEntry, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	return fmt.Sprintf("[%s] [%s] %s", entry.Time().In(loc).Format(TranscriptTimeLayout), entry.Level, lineBreaks.Replace(entry.Message))
}

// Transcript renders entries as a plain-text transcript, one line per entry.
// It is a pure transform.
func Transcript(entries []types.LogEntry, loc *time.Location) string {
	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = TranscriptLine(entry, loc)
	}

	return strings.Join(lines, "\n")
}

// WriteTranscript streams the transcript of entries to w.
func WriteTranscript(w io.Writer, entries []types.LogEntry, loc *time.Location) error {
	bw := bufio.NewWriter(w)

	for i, entry := range entries {
		if i > 0 {
			if err := bw.WriteByte('\n'); err != nil {
				return errors.Wrap(errors.ErrCodeExportFailed, "failed to write transcript", err)
			}
		}

		if _, err := bw.WriteString(TranscriptLine(entry, loc)); err != nil {
			return errors.Wrap(errors.ErrCodeExportFailed, "failed to write transcript", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to flush transcript", err)
	}

	return nil
}

// TranscriptFileName returns the download name for a transcript created at now.
func TranscriptFileName(now time.Time) string {
	return fmt.Sprintf("arbitrage-logs-%s.txt", now.Format("2006-01-02-150405"))
}
