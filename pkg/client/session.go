package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// User is the identity snapshot kept with the session.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Status   string `json:"status,omitempty"`
}

// State is the persisted session. Authenticated is true iff both tokens
// are set and a user snapshot is present.
type State struct {
	User          *User  `json:"user"`
	AccessToken   string `json:"accessToken"`
	RefreshToken  string `json:"refreshToken"`
	Authenticated bool   `json:"authenticated"`
}

func (s *State) normalize() {
	s.Authenticated = s.User != nil && s.AccessToken != "" && s.RefreshToken != ""
}

// Storage persists a State between process runs.
type Storage interface {
	Load() (State, error)
	Save(State) error
	Clear() error
}

// FileStorage keeps the session as a JSON file readable only by its owner.
type FileStorage struct {
	Path string
}

func (f FileStorage) Load() (State, error) {
	var st State
	raw, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, errors.Wrap(err, "read session file")
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, errors.Wrap(err, "decode session file")
	}
	return st, nil
}

// Save writes through a temp file so a crash never leaves a torn session.
func (f FileStorage) Save(st State) error {
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "create session dir")
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return errors.Wrap(err, "create session temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write session")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(err, "chmod session")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close session")
	}
	return errors.Wrap(os.Rename(tmp.Name(), f.Path), "replace session file")
}

func (f FileStorage) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "remove session file")
	}
	return nil
}

// MemoryStorage keeps the session in process memory.
type MemoryStorage struct {
	mu sync.Mutex
	st State
}

func (m *MemoryStorage) Load() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st, nil
}

func (m *MemoryStorage) Save(st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = st
	return nil
}

func (m *MemoryStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = State{}
	return nil
}

// Session holds the current identity and tokens. Every mutation is
// persisted before it returns; the last write wins.
type Session struct {
	mu      sync.RWMutex
	storage Storage
	state   State
}

// NewSession hydrates a session from storage.
func NewSession(storage Storage) (*Session, error) {
	st, err := storage.Load()
	if err != nil {
		return nil, err
	}
	st.normalize()
	return &Session{storage: storage, state: st}, nil
}

func (s *Session) SetAuth(user User, accessToken, refreshToken string) error {
	return s.mutate(func(st *State) {
		st.User = &user
		st.AccessToken = accessToken
		st.RefreshToken = refreshToken
	})
}

func (s *Session) UpdateAccessToken(token string) error {
	return s.mutate(func(st *State) { st.AccessToken = token })
}

// Logout drops every field and removes the persisted copy.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
	return s.storage.Clear()
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.RefreshToken
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Authenticated
}

func (s *Session) mutate(fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	fn(&next)
	next.normalize()
	if err := s.storage.Save(next); err != nil {
		return err
	}
	s.state = next
	return nil
}
