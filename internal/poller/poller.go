// Package poller refreshes view data on a fixed interval until the view is dismissed.
package poller

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rxtech-lab/arb-console/internal/logger"
	"go.uber.org/zap"
)

// Func fetches one refresh. The ctx is the view's context: it is cancelled
// when the view goes away, aborting in-flight requests.
type Func func(ctx context.Context) error

// Poller runs a Func periodically.
type Poller struct {
	clock  clockwork.Clock
	logger *logger.Logger
}

// New creates a Poller. A nil clock means the real clock.
func New(clock clockwork.Clock, log *logger.Logger) *Poller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Poller{
		clock:  clock,
		logger: log.Named("poller"),
	}
}

// Run calls fn immediately, then every interval, until ctx is cancelled.
// Errors from fn are logged and polling continues. Ticks that fire while fn
// is still running are coalesced. Run returns ctx.Err().
func (p *Poller) Run(ctx context.Context, name string, interval time.Duration, fn Func) error {
	p.refresh(ctx, name, fn)

	ticker := p.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			if ctx.Err() != nil {
				return ctx.Err()
			}

			p.refresh(ctx, name, fn)
		}
	}
}

func (p *Poller) refresh(ctx context.Context, name string, fn Func) {
	if ctx.Err() != nil {
		return
	}

	if err := fn(ctx); err != nil && ctx.Err() == nil {
		p.logger.Warn("refresh failed", zap.String("view", name), zap.Error(err))
	}
}
