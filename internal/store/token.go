package store

import (
	"os"
	"strings"
	"sync"
)

// TokenStore persists the current session token between runs so
// RestoreSession can pick it up on app start.
type TokenStore interface {
	Load() string
	Save(token string)
	Clear()
}

// MemoryTokenStore keeps the token for the lifetime of the process.
// Tests use this.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryTokenStore() *MemoryTokenStore { return &MemoryTokenStore{} }

func (s *MemoryTokenStore) Load() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *MemoryTokenStore) Save(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

// FileTokenStore persists the token to a local file, the moral
// equivalent of a mobile client's keychain entry.
type FileTokenStore struct {
	Path string
}

func (s *FileTokenStore) Load() string {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (s *FileTokenStore) Save(token string) {
	_ = os.WriteFile(s.Path, []byte(token), 0o600)
}

func (s *FileTokenStore) Clear() {
	_ = os.Remove(s.Path)
}
