package logstream

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ScrollTestSuite struct {
	suite.Suite
}

func TestScrollSuite(t *testing.T) {
	suite.Run(t, new(ScrollTestSuite))
}

func (suite *ScrollTestSuite) TestThreshold() {
	tracker := NewScrollTracker(DefaultScrollThreshold)

	tracker.Observe(50)
	suite.False(tracker.UserScrolled())

	tracker.Observe(51)
	suite.True(tracker.UserScrolled())
	suite.True(tracker.ShowJumpToLatest())
	suite.False(tracker.OnAppend())

	tracker.JumpToLatest()
	suite.False(tracker.ShowJumpToLatest())
	suite.True(tracker.OnAppend())
}

func (suite *ScrollTestSuite) TestAutoScrollToggle() {
	tracker := NewScrollTracker(DefaultScrollThreshold)
	suite.True(tracker.AutoScroll())

	tracker.SetAutoScroll(false)
	tracker.Observe(0)
	suite.False(tracker.OnAppend())
	suite.False(tracker.ShowJumpToLatest())

	tracker.SetAutoScroll(true)
	suite.True(tracker.OnAppend())
}

func (suite *ScrollTestSuite) TestScrollingBackDownClearsFlag() {
	tracker := NewScrollTracker(-1)

	tracker.Observe(200)
	suite.True(tracker.UserScrolled())

	tracker.Observe(10)
	suite.False(tracker.UserScrolled())
}
