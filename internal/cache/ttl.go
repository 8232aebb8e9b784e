package cache

import (
	"sync"
	"time"
)

// Store is the cache surface the suggestion generator depends on.
// Get/Set are atomic per key; there is no single-flight guarantee, so
// concurrent misses for the same key may each recompute the value.
type Store interface {
	Get(key string) ([]string, bool)
	Set(key string, value []string, ttl time.Duration, tags ...string)
	InvalidateTag(tag string)
}

type entry struct {
	value     []string
	expiresAt time.Time
	tags      []string
}

// Memory implements Store with a mutex-guarded in-memory map
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates a new in-memory cache
func NewMemory() *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}

	// Cleanup goroutine to remove expired entries
	go m.cleanup()

	return m
}

// NewMemoryWithClock creates a cache with an injected clock and no janitor,
// for deterministic tests.
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     now,
	}
}

// Get returns the cached value for key if present and not expired
func (m *Memory) Get(key string) ([]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl, optionally tagged for bulk invalidation
func (m *Memory) Set(key string, value []string, ttl time.Duration, tags ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry{
		value:     value,
		expiresAt: m.now().Add(ttl),
		tags:      tags,
	}
}

// InvalidateTag drops every entry carrying the given tag
func (m *Memory) InvalidateTag(tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, e := range m.entries {
		for _, t := range e.tags {
			if t == tag {
				delete(m.entries, key)
				break
			}
		}
	}
}

// cleanup periodically removes expired entries to prevent memory leaks
func (m *Memory) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		m.mu.Lock()
		now := m.now()
		for key, e := range m.entries {
			if now.After(e.expiresAt) {
				delete(m.entries, key)
			}
		}
		m.mu.Unlock()
	}
}
