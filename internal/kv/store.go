/*
Package kv implements the durable key/value layer backing engagement state.

State is persisted as whole-value JSON blobs keyed by name: callers load the
full value, mutate in memory, and save the full value back. There is no
cross-process coordination; the last writer wins. All operations degrade
gracefully — a missing or corrupt value reads as absent, and a failed write
is logged and dropped rather than surfaced to the caller.
*/
package kv

import (
	"encoding/json"
	"log"
	"sync"
)

// Storage keys for the engagement state blobs.
const (
	// RecentlyViewedKey holds the JSON array of viewed items, most-recent-first.
	RecentlyViewedKey = "recently-viewed"

	// SearchTrendsKey holds the JSON array of search terms (unordered on disk).
	SearchTrendsKey = "search-trends"
)

// Store defines the interface for whole-value key/value persistence.
type Store interface {
	// Load decodes the value stored under key into dest. It returns false if
	// the key is absent or the stored payload fails to decode; decode failures
	// are logged and swallowed, never returned.
	Load(key string, dest interface{}) bool

	// Save encodes value and writes it under key. Failures are returned for
	// diagnostics but callers treat them as non-fatal.
	Save(key string, value interface{}) error

	// Delete removes the value stored under key.
	Delete(key string) error

	// Close releases any resources held by the store.
	Close() error
}

// MemoryStore implements Store with an in-process map.
//
// It backs tests and the ephemeral mode where no durable state is wanted.
// Values are kept as encoded JSON so decode behavior matches the durable store.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
	}
}

// Seed places a raw payload under key, bypassing encoding.
// Tests use it to simulate corrupt or pre-existing stored state.
func (m *MemoryStore) Seed(key string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = raw
}

// Load decodes the value stored under key into dest.
func (m *MemoryStore) Load(key string, dest interface{}) bool {
	m.mu.Lock()
	raw, ok := m.values[key]
	m.mu.Unlock()

	if !ok {
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		log.Printf("Warning: failed to decode stored value for %q: %v", key, err)
		return false
	}

	return true
}

// Save encodes value and stores it under key.
func (m *MemoryStore) Save(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("Warning: failed to encode value for %q: %v", key, err)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = raw
	return nil
}

// Delete removes the value stored under key.
func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
