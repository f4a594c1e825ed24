package logstream

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rxtech-lab/arb-console/pkg/errors"
)

// Conn is one open stream connection delivering one log entry per frame.
type Conn interface {
	// ReadMessage blocks until the next frame arrives or the connection closes.
	ReadMessage() ([]byte, error)
	Close() error
}

// Dialer opens stream connections.
type Dialer interface {
	Dial(ctx context.Context, url string, header http.Header) (Conn, error)
}

// TokenSource supplies the bearer token sent on the handshake.
// *session.Session satisfies it.
type TokenSource interface {
	AccessToken() string
}

// WebsocketDialer dials the engine log stream over a websocket.
type WebsocketDialer struct {
	dialer *websocket.Dialer
}

// NewWebsocketDialer creates a dialer with the given handshake timeout.
func NewWebsocketDialer(handshakeTimeout time.Duration) *WebsocketDialer {
	dialer := *websocket.DefaultDialer
	if handshakeTimeout > 0 {
		dialer.HandshakeTimeout = handshakeTimeout
	}

	return &WebsocketDialer{
		dialer: &dialer,
	}
}

// Dial implements Dialer.
func (d *WebsocketDialer) Dial(ctx context.Context, url string, header http.Header) (Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err != nil {
		if resp != nil {
			return nil, errors.Wrapf(errors.ErrCodeStreamDial, err, "handshake with %s failed with status %d", url, resp.StatusCode)
		}

		return nil, errors.Wrapf(errors.ErrCodeStreamDial, err, "failed to dial %s", url)
	}

	return &websocketConn{conn: conn}, nil
}

type websocketConn struct {
	conn *websocket.Conn
}

func (c *websocketConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStreamClosed, "stream closed", err)
	}

	return data, nil
}

func (c *websocketConn) Close() error {
	return c.conn.Close()
}

// BearerHeader builds the handshake header. No token yields an empty header.
func BearerHeader(tokens TokenSource) http.Header {
	header := http.Header{}
	if tokens == nil {
		return header
	}

	if token := tokens.AccessToken(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	return header
}
