package mockserver

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/rxtech-lab/arb-console/mocks"
)

// handleLogStream upgrades the connection and keeps it registered until the
// client goes away. Frames are pushed with PushFrame and PushEntry.
func (s *MockArbServer) handleLogStream(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	requireAuth := s.streamAuth
	s.mu.RUnlock()

	if requireAuth {
		if _, ok := s.userFor(r.Header); !ok {
			http.Error(w, Unauthorized, http.StatusUnauthorized)

			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.wsMu.Lock()
	s.wsConnections[conn] = true
	s.streamHeaders = append(s.streamHeaders, r.Header.Clone())
	s.wsMu.Unlock()

	defer func() {
		s.wsMu.Lock()
		delete(s.wsConnections, conn)
		s.wsMu.Unlock()
		conn.Close()
	}()

	// drain until the client closes or DropConnections closes the socket
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// PushFrame sends a raw text frame to every connected stream client and
// returns how many received it.
func (s *MockArbServer) PushFrame(frame []byte) int {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()

	delivered := 0

	for conn := range s.wsConnections {
		_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, frame); err == nil {
			delivered++
		}
	}

	return delivered
}

// PushEntry encodes entry the way the engine does and broadcasts it.
func (s *MockArbServer) PushEntry(entry types.LogEntry) int {
	return s.PushFrame(mocks.EncodeFrame(entry))
}

// DropConnections closes every stream connection, as a backend restart would.
func (s *MockArbServer) DropConnections() {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()

	for conn := range s.wsConnections {
		conn.Close()
	}

	s.wsConnections = make(map[*websocket.Conn]bool)
}

// ConnectionCount returns the number of open stream connections.
func (s *MockArbServer) ConnectionCount() int {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()

	return len(s.wsConnections)
}

// StreamHandshakes returns the request headers of every stream handshake so far.
func (s *MockArbServer) StreamHandshakes() []http.Header {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()

	headers := make([]http.Header, len(s.streamHeaders))
	for i, h := range s.streamHeaders {
		headers[i] = h.Clone()
	}

	return headers
}

// WaitForConnections polls until at least n stream clients are connected.
func (s *MockArbServer) WaitForConnections(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if s.ConnectionCount() >= n {
			return true
		}

		time.Sleep(10 * time.Millisecond)
	}

	return s.ConnectionCount() >= n
}
