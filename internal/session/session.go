// Package session holds the authentication state shared by the transport
// client and the log stream. It is the single source of truth for the
// access token; invalidation is an explicit call, never a side effect of
// reading ambient state.
package session

import (
	"sync"

	"github.com/rxtech-lab/arb-console/internal/logger"
	"github.com/rxtech-lab/arb-console/internal/types"
	"go.uber.org/zap"
)

// User is the authenticated user profile.
type User = types.User

// Credentials are the tokens issued at login plus the optional user profile.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	User         *User
}

// InvalidateListener is called after the session has been invalidated.
// reason is a short human readable cause ("unauthorized", "logout").
type InvalidateListener func(reason string)

// Session is the injectable session context.
type Session struct {
	mu        sync.RWMutex
	store     Store
	creds     Credentials
	listeners []InvalidateListener
	logger    *logger.Logger
}

// New creates a Session and loads any persisted credentials from store.
func New(store Store, log *logger.Logger) (*Session, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	creds, err := store.Load()
	if err != nil {
		return nil, err
	}

	return &Session{
		mu:        sync.RWMutex{},
		store:     store,
		creds:     creds,
		listeners: nil,
		logger:    log.Named("session"),
	}, nil
}

// SetCredentials stores a freshly issued token pair.
func (s *Session) SetCredentials(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(creds); err != nil {
		return err
	}

	s.creds = creds

	return nil
}

// AccessToken returns the current access token, or "" when unauthenticated.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.creds.AccessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.creds.RefreshToken
}

// User returns the user profile if one was recorded at login.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.creds.User
}

// IsAuthenticated reports whether an access token is present.
func (s *Session) IsAuthenticated() bool {
	return s.AccessToken() != ""
}

// OnInvalidate registers a listener fired after every invalidation.
func (s *Session) OnInvalidate(listener InvalidateListener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, listener)
}

// Invalidate purges both tokens from memory and from the store, then notifies listeners.
// Store failures are logged; the in-memory session is cleared regardless.
func (s *Session) Invalidate(reason string) {
	s.mu.Lock()
	s.creds = Credentials{}
	if err := s.store.Clear(); err != nil {
		s.logger.Warn("Failed to clear stored credentials", zap.Error(err))
	}
	listeners := append([]InvalidateListener(nil), s.listeners...)
	s.mu.Unlock()

	s.logger.Info("Session invalidated", zap.String("reason", reason))

	for _, listener := range listeners {
		listener(reason)
	}
}
