// Package cache implements the Cache Tier (spec §4.4): a bounded
// in-memory LRU plus a persistent on-disk store, and the specialized
// caches built on top of them (file-index, relevance-score, symbol-
// references, serialized semantic index).
package cache

import (
	"sync"
	"time"
	"unicode/utf16"

	lru "github.com/hashicorp/golang-lru/v2"

	"cce/internal/cerrors"
)

// entry wraps a cached value with its size estimate and expiry.
type entry[V any] struct {
	value     V
	sizeBytes int64
	expiresAt time.Time
}

// Memory is a byte/entry/TTL-bounded in-memory LRU cache. Size is
// estimated as 2 bytes per UTF-16 code unit of the serialized value,
// matching how the spec accounts for string-heavy cache payloads.
type Memory[V any] struct {
	mu         sync.Mutex
	lru        *lru.Cache[string, entry[V]]
	maxBytes   int64
	usedBytes  int64
	defaultTTL time.Duration
}

// NewMemory creates a Memory cache bounded by maxEntries and maxBytes,
// with defaultTTL applied to entries that don't specify their own.
func NewMemory[V any](maxEntries int, maxBytes int64, defaultTTL time.Duration) (*Memory[V], error) {
	m := &Memory[V]{maxBytes: maxBytes, defaultTTL: defaultTTL}
	evictCallback := func(key string, e entry[V]) {
		m.usedBytes -= e.sizeBytes
	}
	c, err := lru.NewWithEvict[string, entry[V]](maxEntries, evictCallback)
	if err != nil {
		return nil, cerrors.New(cerrors.InputInvalid, "NewMemory", err)
	}
	m.lru = c
	return m, nil
}

// Set stores value under key with its own TTL (or Memory's default when
// ttl is zero), estimating size from sizeHint (typically the serialized
// text of value).
func (m *Memory[V]) Set(key string, value V, sizeHint string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	size := EstimateSize(sizeHint)

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.lru.Peek(key); ok {
		m.usedBytes -= old.sizeBytes
	}
	m.lru.Add(key, entry[V]{value: value, sizeBytes: size, expiresAt: time.Now().Add(ttl)})
	m.usedBytes += size

	for m.usedBytes > m.maxBytes && m.lru.Len() > 0 {
		// The eviction callback deducts the evicted entry's size.
		if _, _, ok := m.lru.RemoveOldest(); !ok {
			break
		}
	}
}

// Get returns the cached value for key if present and not expired.
func (m *Memory[V]) Get(key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lru.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		m.lru.Remove(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Remove evicts key, if present.
func (m *Memory[V]) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Remove(key)
}

// Len returns the number of live entries (expired entries still count
// until touched, matching a standard LRU's lazy-expiry behavior).
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

// UsedBytes returns the current size-estimate total.
func (m *Memory[V]) UsedBytes() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usedBytes
}

// EstimateSize approximates the in-memory footprint of s as its UTF-16
// length times 2 bytes/unit, the spec's §4.4 sizing rule.
func EstimateSize(s string) int64 {
	return int64(len(utf16.Encode([]rune(s))) * 2)
}
