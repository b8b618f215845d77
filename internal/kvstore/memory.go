package kvstore

import "sync"

// Memory is an in-process store. The zero value is ready to use.
type Memory struct {
	// Disabled makes the store report itself unavailable.
	Disabled bool

	mu      sync.Mutex
	entries map[string][]byte
	writes  map[string]int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Available() bool { return m != nil && !m.Disabled }

func (m *Memory) Get(key string) ([]byte, bool) {
	if !m.Available() {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

func (m *Memory) Set(key string, value []byte) error {
	if !m.Available() {
		return ErrUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = map[string][]byte{}
		m.writes = map[string]int{}
	}
	m.entries[key] = append([]byte(nil), value...)
	m.writes[key]++
	return nil
}

func (m *Memory) Delete(key string) error {
	if !m.Available() {
		return ErrUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Writes reports how many times key has been written.
func (m *Memory) Writes(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[key]
}
