package logstream

import (
	"fmt"
	"testing"

	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/stretchr/testify/suite"
)

type BufferTestSuite struct {
	suite.Suite
}

func TestBufferSuite(t *testing.T) {
	suite.Run(t, new(BufferTestSuite))
}

func (suite *BufferTestSuite) TestAppendBelowCapacity() {
	buf := NewBuffer(3)

	suite.False(buf.Append(entry("1", types.LogLevelInfo, "a")))
	suite.False(buf.Append(entry("2", types.LogLevelInfo, "b")))

	entries := buf.Entries()
	suite.Require().Len(entries, 2)
	suite.Equal("a", entries[0].Message)
	suite.Equal("b", entries[1].Message)
	suite.Equal(3, buf.Cap())
}

func (suite *BufferTestSuite) TestOverflowEvictsOldest() {
	buf := NewBuffer(DefaultCapacity)
	total := 2500

	for i := 0; i < total; i++ {
		buf.Append(entry(fmt.Sprint(i), types.LogLevelInfo, fmt.Sprintf("msg-%d", i)))
		suite.LessOrEqual(buf.Len(), buf.Cap())
	}

	entries := buf.Entries()
	suite.Require().Len(entries, DefaultCapacity)

	for i, e := range entries {
		suite.Equal(fmt.Sprintf("msg-%d", total-DefaultCapacity+i), e.Message)
	}

	suite.Equal("msg-2499", entries[len(entries)-1].Message)
}

func (suite *BufferTestSuite) TestEntriesIsACopy() {
	buf := NewBuffer(2)
	buf.Append(entry("1", types.LogLevelInfo, "a"))

	entries := buf.Entries()
	entries[0].Message = "mutated"

	suite.Equal("a", buf.Entries()[0].Message)
}

func (suite *BufferTestSuite) TestClear() {
	buf := NewBuffer(2)
	buf.Append(entry("1", types.LogLevelInfo, "a"))
	buf.Append(entry("2", types.LogLevelInfo, "b"))
	buf.Append(entry("3", types.LogLevelInfo, "c"))

	buf.Clear()
	suite.Equal(0, buf.Len())
	suite.Empty(buf.Entries())

	buf.Append(entry("4", types.LogLevelInfo, "d"))
	suite.Equal([]string{"d"}, messages(buf.Entries()))
}

func (suite *BufferTestSuite) TestNonPositiveCapacityFallsBack() {
	suite.Equal(DefaultCapacity, NewBuffer(0).Cap())
	suite.Equal(DefaultCapacity, NewBuffer(-5).Cap())
}

func messages(entries []types.LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}

	return out
}
