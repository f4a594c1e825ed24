package logstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/rxtech-lab/arb-console/pkg/errors"
)

type fakeConn struct {
	frames chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		frames: make(chan []byte, 64),
		closed: make(chan struct{}),
		once:   sync.Once{},
	}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case frame := <-c.frames:
		return frame, nil
	case <-c.closed:
		return nil, io.EOF
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })

	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// fakeDialer hands out queued connections and fails once the queue is empty.
type fakeDialer struct {
	mu       sync.Mutex
	conns    []*fakeConn
	attempts int
	headers  []http.Header
}

func (d *fakeDialer) Dial(_ context.Context, _ string, header http.Header) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.attempts++
	d.headers = append(d.headers, header)

	if len(d.conns) == 0 {
		return nil, errors.New(errors.ErrCodeStreamDial, "connection refused")
	}

	conn := d.conns[0]
	d.conns = d.conns[1:]

	return conn, nil
}

func (d *fakeDialer) Attempts() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.attempts
}

type staticTokens string

func (t staticTokens) AccessToken() string {
	return string(t)
}

type frameSpec struct {
	ID        string         `json:"id,omitempty"`
	Timestamp int64          `json:"timestamp,omitempty"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Exchange  string         `json:"exchange,omitempty"`
	Symbol    string         `json:"symbol,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

func frame(spec frameSpec) []byte {
	data, err := json.Marshal(spec)
	if err != nil {
		panic(err)
	}

	return data
}

func entry(id string, level types.LogLevel, message string) types.LogEntry {
	return types.LogEntry{
		ID:        id,
		Timestamp: 1700000000000,
		Level:     level,
		Message:   message,
		Exchange:  optional.None[string](),
		Symbol:    optional.None[string](),
		Data:      nil,
	}
}
