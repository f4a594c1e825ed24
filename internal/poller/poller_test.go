package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rxtech-lab/arb-console/internal/logger"
	"github.com/stretchr/testify/suite"
)

type PollerTestSuite struct {
	suite.Suite
	clock  clockwork.FakeClock
	poller *Poller
}

func TestPollerSuite(t *testing.T) {
	suite.Run(t, new(PollerTestSuite))
}

func (suite *PollerTestSuite) SetupTest() {
	suite.clock = clockwork.NewFakeClock()
	suite.poller = New(suite.clock, logger.NewNopLogger())
}

func (suite *PollerTestSuite) eventually(cond func() bool) {
	suite.Eventually(cond, 2*time.Second, 5*time.Millisecond)
}

func (suite *PollerTestSuite) TestRefreshesImmediatelyAndOnInterval() {
	var calls atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- suite.poller.Run(ctx, "engine", 3*time.Second, func(context.Context) error {
			calls.Add(1)

			return nil
		})
	}()

	suite.clock.BlockUntil(1)
	suite.Equal(int32(1), calls.Load())

	suite.clock.Advance(3 * time.Second)
	suite.eventually(func() bool { return calls.Load() == 2 })

	suite.clock.Advance(3 * time.Second)
	suite.eventually(func() bool { return calls.Load() == 3 })

	cancel()
	suite.ErrorIs(<-done, context.Canceled)

	suite.clock.Advance(time.Minute)
	suite.Equal(int32(3), calls.Load())
}

func (suite *PollerTestSuite) TestErrorsDoNotStopPolling() {
	var calls atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = suite.poller.Run(ctx, "dashboard", 5*time.Second, func(context.Context) error {
			calls.Add(1)

			return errors.New("backend unavailable")
		})
	}()

	suite.clock.BlockUntil(1)
	suite.clock.Advance(5 * time.Second)
	suite.eventually(func() bool { return calls.Load() == 2 })
}

func (suite *PollerTestSuite) TestCancellationReachesInFlightRefresh() {
	started := make(chan struct{})
	aborted := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- suite.poller.Run(ctx, "portfolio", 10*time.Second, func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			close(aborted)

			return ctx.Err()
		})
	}()

	<-started
	cancel()

	select {
	case <-aborted:
	case <-time.After(2 * time.Second):
		suite.FailNow("refresh was not aborted")
	}

	suite.ErrorIs(<-done, context.Canceled)
}

func (suite *PollerTestSuite) TestCancelledBeforeStart() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := suite.poller.Run(ctx, "ai", time.Second, func(context.Context) error {
		called = true

		return nil
	})

	suite.ErrorIs(err, context.Canceled)
	suite.False(called)
}
