// Package session holds the bearer credentials of the current user.
package session

import (
	"sync"

	"github.com/faceauth/cli/internal/config"
)

// Session is the access/refresh credential pair issued by the service.
// Email is kept for display only.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Email        string `json:"email,omitempty"`
}

// Valid reports whether the session can authenticate requests
func (s Session) Valid() bool {
	return s.AccessToken != ""
}

// Store persists the current session
type Store interface {
	Save(Session) error
	// Load returns the stored session; ok is false when no access token is stored.
	Load() (s Session, ok bool)
	// Clear removes both tokens in one step.
	Clear() error
}

// ConfigStore keeps the session in the CLI configuration file
type ConfigStore struct{}

// NewConfigStore returns a store backed by the loaded configuration
func NewConfigStore() *ConfigStore {
	return &ConfigStore{}
}

// Save implements Store
func (ConfigStore) Save(s Session) error {
	return config.UpdateAuth(s.Email, s.AccessToken, s.RefreshToken)
}

// Load implements Store
func (ConfigStore) Load() (Session, bool) {
	auth := config.Auth()
	s := Session{
		AccessToken:  auth.AccessToken,
		RefreshToken: auth.RefreshToken,
		Email:        auth.Email,
	}
	return s, s.Valid()
}

// Clear implements Store
func (ConfigStore) Clear() error {
	return config.ClearAuth()
}

// MemoryStore keeps the session in process memory
type MemoryStore struct {
	mu      sync.Mutex
	session Session
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save implements Store
func (m *MemoryStore) Save(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = s
	return nil
}

// Load implements Store
func (m *MemoryStore) Load() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.session.Valid()
}

// Clear implements Store
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = Session{}
	return nil
}
