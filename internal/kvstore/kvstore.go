// Package kvstore provides the small key-value stores the editor persists its
// form state into.
package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrUnavailable is returned when the backing storage cannot be used.
var ErrUnavailable = errors.New("storage unavailable")

// FileStore keeps all keys in a single JSON object on disk.
type FileStore struct {
	path string

	mu      sync.Mutex
	probed  bool
	usable  bool
	entries map[string]string
	loaded  bool
}

// NewFileStore returns a store backed by the file at path. The file is created
// lazily on the first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns the storage file location under the XDG state
// directory.
func DefaultPath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "memepanel", "storage.json")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "memepanel", "storage.json")
}

// Path reports the file backing the store.
func (s *FileStore) Path() string { return s.path }

// Available reports whether the store directory exists or can be created and
// accepts writes. The probe runs once.
func (s *FileStore) Available() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.probed {
		return s.usable
	}
	s.probed = true
	if s.path == "" {
		return false
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	s.usable = true
	return true
}

// Get returns the value stored under key.
func (s *FileStore) Get(key string) ([]byte, bool) {
	if !s.Available() {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return nil, false
	}
	v, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return []byte(v), true
}

// Set stores value under key and flushes the file.
func (s *FileStore) Set(key string, value []byte) error {
	if !s.Available() {
		return ErrUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return err
	}
	s.entries[key] = string(value)
	return s.flushLocked()
}

// Delete removes key from the store.
func (s *FileStore) Delete(key string) error {
	if !s.Available() {
		return ErrUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return err
	}
	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)
	return s.flushLocked()
}

func (s *FileStore) loadLocked() error {
	if s.loaded {
		return nil
	}
	s.entries = map[string]string{}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.entries); err != nil {
			return fmt.Errorf("parse %s: %w", s.path, err)
		}
	}
	s.loaded = true
	return nil
}

func (s *FileStore) flushLocked() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".storage-*.json")
	if err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
