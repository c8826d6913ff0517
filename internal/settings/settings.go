// Package settings provides the key-value settings backend for Markwright.
//
// The plugin runtime treats settings as a flat string-to-string store: raw
// values in, raw values out. Structured state (like the plugin enabled map)
// is encoded by the caller, not by this package.
package settings

import (
	"sort"
	"sync"
)

// Store persists and retrieves raw string values by key.
//
// Keys are slash-separated paths by convention ("plugins/enabled_map",
// "plugins/<id>/<key>"). Writes persist immediately; there is no batching.
type Store interface {
	// GetRaw returns the stored value, or fallback if the key is absent.
	GetRaw(key, fallback string) string

	// SetRaw stores value under key, overwriting any prior value.
	SetRaw(key, value string)

	// Remove deletes the key. Removing an absent key is a no-op.
	Remove(key string)
}

// Memory is an in-process Store. Useful for tests and for hosts that defer
// persistence to another layer.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// GetRaw returns the stored value, or fallback if absent.
func (m *Memory) GetRaw(key, fallback string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if v, ok := m.values[key]; ok {
		return v
	}
	return fallback
}

// SetRaw stores value under key.
func (m *Memory) SetRaw(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Remove deletes the key.
func (m *Memory) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

// Keys returns all stored keys, sorted.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
