package client

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mcoot/multiplayer-demo/internal/model"
)

// IdentityStore persists the local player's identifier between runs
type IdentityStore interface {
	// Load returns the stored identifier, or ok=false if none is stored
	Load() (id model.PlayerID, ok bool, err error)
	Save(id model.PlayerID) error
	Clear() error
}

// FileIdentityStore keeps the identifier in a single file
type FileIdentityStore struct {
	path string
}

// NewFileIdentityStore creates a store backed by path
func NewFileIdentityStore(path string) *FileIdentityStore {
	return &FileIdentityStore{path: path}
}

// DefaultIdentityFile returns ~/.multiplayer-demo/identity
func DefaultIdentityFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".multiplayer-demo", "identity")
	}
	return filepath.Join(home, ".multiplayer-demo", "identity")
}

// Path returns the file the store reads and writes
func (s *FileIdentityStore) Path() string {
	return s.path
}

func (s *FileIdentityStore) Load() (model.PlayerID, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil // No identity file is fine
		}
		return "", false, err
	}

	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", false, nil
	}
	return model.PlayerID(id), true, nil
}

func (s *FileIdentityStore) Save(id model.PlayerID) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(id), 0600)
}

func (s *FileIdentityStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryIdentityStore keeps the identifier in memory, for tests and
// throwaway sessions
type MemoryIdentityStore struct {
	mu sync.Mutex
	id model.PlayerID
}

// NewMemoryIdentityStore creates a store, optionally pre-seeded with id
func NewMemoryIdentityStore(id model.PlayerID) *MemoryIdentityStore {
	return &MemoryIdentityStore{id: id}
}

func (s *MemoryIdentityStore) Load() (model.PlayerID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.id != "", nil
}

func (s *MemoryIdentityStore) Save(id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	return nil
}

func (s *MemoryIdentityStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = ""
	return nil
}
