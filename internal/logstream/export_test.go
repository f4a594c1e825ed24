package logstream

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/stretchr/testify/suite"
)

var transcriptLinePattern = regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\.\d{3}\] \[[A-Z]+\] .*$`)

type ExportTestSuite struct {
	suite.Suite
}

func TestExportSuite(t *testing.T) {
	suite.Run(t, new(ExportTestSuite))
}

func (suite *ExportTestSuite) TestTranscriptLineFormat() {
	e := entry("1", types.LogLevelWarn, "latency high")
	e.Timestamp = time.Date(2024, 3, 5, 14, 7, 9, 42*int(time.Millisecond), time.UTC).UnixMilli()

	suite.Equal("[14:07:09.042] [WARN] latency high", TranscriptLine(e, time.UTC))
}

func (suite *ExportTestSuite) TestTranscriptHasOneLinePerEntry() {
	levels := types.LogLevels
	k := 37
	entries := make([]types.LogEntry, k)

	for i := range entries {
		entries[i] = entry(fmt.Sprint(i), levels[i%len(levels)], fmt.Sprintf("message %d", i))
		entries[i].Timestamp += int64(i * 1234)
	}

	transcript := Transcript(entries, time.UTC)
	lines := strings.Split(transcript, "\n")

	suite.Require().Len(lines, k)

	for _, line := range lines {
		suite.Regexp(transcriptLinePattern, line)
	}
}

func (suite *ExportTestSuite) TestMultilineMessagesStayOnOneLine() {
	e := entry("1", types.LogLevelError, "order rejected\nretrying\r\nstill failing\rgave up")
	e.Timestamp = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC).UnixMilli()

	entries := []types.LogEntry{e, entry("2", types.LogLevelInfo, "ok")}
	lines := strings.Split(Transcript(entries, time.UTC), "\n")

	suite.Require().Len(lines, 2)
	suite.Equal(`[14:07:09.000] [ERROR] order rejected\nretrying\nstill failing\rgave up`, lines[0])
	suite.NotContains(lines[0], "\r")
}

func (suite *ExportTestSuite) TestEmptyTranscript() {
	suite.Equal("", Transcript(nil, time.UTC))
}

func (suite *ExportTestSuite) TestWriteTranscriptMatchesTranscript() {
	entries := []types.LogEntry{
		entry("1", types.LogLevelInfo, "a"),
		entry("2", types.LogLevelError, "b"),
	}

	var buf bytes.Buffer
	suite.Require().NoError(WriteTranscript(&buf, entries, time.UTC))
	suite.Equal(Transcript(entries, time.UTC), buf.String())
}

func (suite *ExportTestSuite) TestTranscriptFileName() {
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	suite.Equal("arbitrage-logs-2024-03-05-140709.txt", TranscriptFileName(now))
}
