package conn

import (
	"encoding/json"
	"os"
	"sync"
)

// ReconnectTokenKey is the fixed name under which the server-issued
// reconnect identifier is persisted.
const ReconnectTokenKey = "makao.reconnect"

// TokenStore persists small identity strings outside the core.
type TokenStore interface {
	Put(key, value string) error
	Get(key string) (string, bool)
}

// MemoryTokenStore is a process-local TokenStore.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: map[string]string{}}
}

func (s *MemoryTokenStore) Put(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = value
	return nil
}

func (s *MemoryTokenStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.tokens[key]
	return value, ok
}

// FileTokenStore persists tokens as a JSON map on disk, surviving restarts.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Put(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens := s.read()
	tokens[key] = value

	data, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileTokenStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.read()[key]
	return value, ok
}

func (s *FileTokenStore) read() map[string]string {
	tokens := map[string]string{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return tokens
	}
	// a corrupt file is treated as empty; the next Put rewrites it
	_ = json.Unmarshal(data, &tokens)
	return tokens
}
