package session

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/rxtech-lab/arb-console/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Store persists the two credential keys across process restarts.
type Store interface {
	// Load returns the persisted credentials. Missing credentials are not an error.
	Load() (Credentials, error)
	// Save persists the credentials, replacing any previous value.
	Save(creds Credentials) error
	// Clear removes both keys.
	Clear() error
}

// MemoryStore keeps credentials in memory only.
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu:    sync.Mutex{},
		creds: Credentials{},
	}
}

func (s *MemoryStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.creds, nil
}

func (s *MemoryStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = creds

	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = Credentials{}

	return nil
}

// fileCredentials is the on-disk layout of FileStore.
type fileCredentials struct {
	AccessToken  string `yaml:"access_token"`
	RefreshToken string `yaml:"refresh_token"`
	User         *User  `yaml:"user,omitempty"`
}

// FileStore keeps credentials in a YAML file readable only by the owner.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		mu:   sync.Mutex{},
	}
}

// Path returns the credentials file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Credentials{}, nil
	}

	if err != nil {
		return Credentials{}, errors.Wrap(errors.ErrCodeSessionStore, "failed to read credentials file", err)
	}

	var stored fileCredentials
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return Credentials{}, errors.Wrap(errors.ErrCodeSessionStore, "failed to parse credentials file", err)
	}

	return Credentials{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		User:         stored.User,
	}, nil
}

func (s *FileStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return errors.Wrap(errors.ErrCodeSessionStore, "failed to create credentials directory", err)
	}

	data, err := yaml.Marshal(fileCredentials{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		User:         creds.User,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeSessionStore, "failed to encode credentials", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeSessionStore, "failed to write credentials file", err)
	}

	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeSessionStore, "failed to remove credentials file", err)
	}

	return nil
}
