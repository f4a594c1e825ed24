// Package logstream consumes the engine log stream: a reconnecting socket
// consumer feeding a bounded buffer, plus the filtering, transcript export
// and scroll arbitration used by the log views.
package logstream

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rxtech-lab/arb-console/internal/logger"
	"github.com/rxtech-lab/arb-console/internal/types"
	"go.uber.org/zap"
)

// DefaultReconnectDelay is the flat interval between connection attempts.
const DefaultReconnectDelay = 3 * time.Second

// subscriberBuffer is the per-subscriber event queue length.
const subscriberBuffer = 256

// State is the connection state of a Consumer.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "connected"
	case StateClosed:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Status is a snapshot of the connection.
type Status struct {
	State State
	// Reason describes why the connection closed. Empty unless State is StateClosed.
	Reason string
	// Attempts counts connection attempts since Run started.
	Attempts int
}

// EventKind identifies what changed.
type EventKind int

const (
	EventEntry EventKind = iota
	EventStatus
	EventCleared
)

// Event notifies subscribers about buffer and connection changes.
type Event struct {
	Kind   EventKind
	Entry  types.LogEntry
	Status Status
}

// EntrySink receives every entry accepted into the buffer.
type EntrySink interface {
	Write(entry types.LogEntry) error
}

// ConsumerConfig configures a Consumer.
type ConsumerConfig struct {
	// URL is the websocket endpoint of the log stream.
	URL string
	// ReconnectDelay is the flat delay before each reconnect. Zero means DefaultReconnectDelay.
	ReconnectDelay time.Duration
	// BufferCapacity bounds the in-memory history. Zero means DefaultCapacity.
	BufferCapacity int
	// Tokens supplies the bearer token for the handshake. Optional.
	Tokens TokenSource
}

// Option customizes a Consumer.
type Option func(*Consumer)

// WithClock sets the clock used for reconnect timers and receipt timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Consumer) {
		c.clock = clock
	}
}

// WithDialer replaces the websocket dialer.
func WithDialer(dialer Dialer) Option {
	return func(c *Consumer) {
		c.dialer = dialer
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Consumer) {
		c.logger = log.Named("logstream")
	}
}

// WithSink forwards accepted entries to sink, for example the log archive.
func WithSink(sink EntrySink) Option {
	return func(c *Consumer) {
		c.sink = sink
	}
}

// Consumer maintains a live, bounded view of the engine log stream.
//
// Run drives the connection state machine
// Connecting -> Open -> Closed(reason) -> Connecting (after a flat delay)
// until its context is cancelled. Pausing is orthogonal to the connection
// state: frames received while paused are dropped and never replayed.
type Consumer struct {
	url     string
	tokens  TokenSource
	dialer  Dialer
	clock   clockwork.Clock
	backoff backoff.BackOff
	buffer  *Buffer
	sink    EntrySink
	logger  *logger.Logger
	paused  atomic.Bool
	running atomic.Bool

	mu          sync.RWMutex
	status      Status
	subscribers map[int]chan Event
	nextSubID   int
}

// NewConsumer creates a Consumer. It does not connect until Run is called.
func NewConsumer(cfg ConsumerConfig, opts ...Option) *Consumer {
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}

	c := &Consumer{
		url:         cfg.URL,
		tokens:      cfg.Tokens,
		dialer:      NewWebsocketDialer(0),
		clock:       clockwork.NewRealClock(),
		backoff:     backoff.NewConstantBackOff(delay),
		buffer:      NewBuffer(cfg.BufferCapacity),
		sink:        nil,
		logger:      logger.NewNopLogger(),
		paused:      atomic.Bool{},
		running:     atomic.Bool{},
		mu:          sync.RWMutex{},
		status:      Status{State: StateConnecting, Reason: "", Attempts: 0},
		subscribers: make(map[int]chan Event),
		nextSubID:   0,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run connects and keeps reconnecting until ctx is cancelled. Cancelling ctx
// closes the live connection and suppresses any scheduled reconnect.
// Run returns nil once stopped; it is not safe to call Run twice concurrently.
func (c *Consumer) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		c.logger.Warn("consumer already running")

		return nil
	}
	defer c.running.Store(false)

	attempts := 0

	for {
		if ctx.Err() != nil {
			c.setStatus(Status{State: StateClosed, Reason: "stopped", Attempts: attempts})

			return nil
		}

		attempts++
		c.setStatus(Status{State: StateConnecting, Reason: "", Attempts: attempts})

		conn, err := c.dialer.Dial(ctx, c.url, BearerHeader(c.tokens))
		if err != nil {
			c.logger.Warn("failed to connect to log stream", zap.String("url", c.url), zap.Int("attempt", attempts), zap.Error(err))
			c.setStatus(Status{State: StateClosed, Reason: err.Error(), Attempts: attempts})
		} else {
			c.logger.Debug("log stream connected", zap.String("url", c.url))
			c.setStatus(Status{State: StateOpen, Reason: "", Attempts: attempts})
			reason := c.readLoop(ctx, conn)
			c.setStatus(Status{State: StateClosed, Reason: reason, Attempts: attempts})
		}

		if !c.waitReconnect(ctx) {
			c.setStatus(Status{State: StateClosed, Reason: "stopped", Attempts: attempts})

			return nil
		}
	}
}

// readLoop consumes frames until the connection fails or ctx is cancelled.
func (c *Consumer) readLoop(ctx context.Context, conn Conn) string {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		frame, err := conn.ReadMessage()
		if err != nil {
			_ = conn.Close()

			if ctx.Err() != nil {
				return "stopped"
			}

			c.logger.Debug("log stream closed", zap.Error(err))

			return err.Error()
		}

		c.HandleFrame(frame)
	}
}

// waitReconnect blocks for the reconnect delay. It reports false when ctx was
// cancelled before or while the timer was pending.
func (c *Consumer) waitReconnect(ctx context.Context) bool {
	delay := c.backoff.NextBackOff()
	if delay == backoff.Stop {
		return false
	}

	c.logger.Debug("scheduling log stream reconnect", zap.Duration("delay", delay))

	timer := c.clock.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
	}

	return ctx.Err() == nil
}

// HandleFrame processes one inbound frame. Frames are dropped while paused.
// Malformed frames are logged and dropped without affecting the connection.
func (c *Consumer) HandleFrame(frame []byte) {
	if c.paused.Load() {
		return
	}

	entry, err := types.ParseLogEntry(frame)
	if err != nil {
		c.logger.Warn("dropping malformed log frame", zap.Error(err), zap.Int("size", len(frame)))

		return
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	if entry.Timestamp == 0 {
		entry.Timestamp = c.clock.Now().UnixMilli()
	}

	c.buffer.Append(entry)

	if c.sink != nil {
		if err := c.sink.Write(entry); err != nil {
			c.logger.Warn("failed to archive log entry", zap.String("id", entry.ID), zap.Error(err))
		}
	}

	c.publish(Event{Kind: EventEntry, Entry: entry, Status: c.Status()})
}

// Pause stops appending inbound entries.
func (c *Consumer) Pause() {
	c.paused.Store(true)
}

// Resume appends entries received from now on. Nothing dropped while paused is replayed.
func (c *Consumer) Resume() {
	c.paused.Store(false)
}

// Paused reports whether the consumer is paused.
func (c *Consumer) Paused() bool {
	return c.paused.Load()
}

// Clear empties the buffer. The connection is unaffected.
func (c *Consumer) Clear() {
	c.buffer.Clear()
	c.publish(Event{Kind: EventCleared, Entry: types.LogEntry{}, Status: c.Status()})
}

// Entries returns the buffered entries in receipt order.
func (c *Consumer) Entries() []types.LogEntry {
	return c.buffer.Entries()
}

// Filtered returns the buffered entries passing f.
func (c *Consumer) Filtered(f Filter) []types.LogEntry {
	return f.Apply(c.buffer.Entries())
}

// Len returns the number of buffered entries.
func (c *Consumer) Len() int {
	return c.buffer.Len()
}

// Status returns the current connection status.
func (c *Consumer) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.status
}

// Subscribe returns a channel of events and a function that cancels the
// subscription. Delivery never blocks the consumer: events are dropped for a
// subscriber whose queue is full.
func (c *Consumer) Subscribe() (<-chan Event, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++

	ch := make(chan Event, subscriberBuffer)
	c.subscribers[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if sub, ok := c.subscribers[id]; ok {
			delete(c.subscribers, id)
			close(sub)
		}
	}
}

func (c *Consumer) setStatus(status Status) {
	c.mu.Lock()
	changed := c.status != status
	c.status = status
	c.mu.Unlock()

	if changed {
		c.publish(Event{Kind: EventStatus, Entry: types.LogEntry{}, Status: status})
	}
}

func (c *Consumer) publish(event Event) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, ch := range c.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
