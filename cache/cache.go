// Package cache memoizes expensive lookups by a structural fingerprint of
// their inputs, for a limited time.
package cache

import (
	"crypto/sha1"
	"fmt"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Fingerprint returns a stable key for the given values.
//
// Values are msgpack encoded, so structs, slices and maps with sorted keys
// produce the same key for the same content.
func Fingerprint(values ...any) (string, error) {
	h := sha1.New()
	enc := msgpack.NewEncoder(h)
	enc.SetSortMapKeys(true)
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return "", fmt.Errorf("cannot fingerprint %T: %w", v, err)
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

type entry[V any] struct {
	value   V
	expires time.Time
}

// TTL is an in-memory cache whose entries expire after a fixed duration.
//
// It is safe for concurrent use.
type TTL[V any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]entry[V]
}

// New returns a cache keeping entries for ttl. A zero ttl disables caching.
func New[V any](ttl time.Duration) *TTL[V] {
	return &TTL[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[V]),
	}
}

// WithClock replaces the clock used to expire entries, for tests.
func (c *TTL[V]) WithClock(now func() time.Time) *TTL[V] {
	c.now = now
	return c
}

// Get returns the value stored under key if it has not expired.
func (c *TTL[V]) Get(key string) (v V, ok bool) {
	if c == nil {
		return v, false
	}
	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()
	if !found || !c.now().Before(e.expires) {
		return v, false
	}
	return e.value, true
}

// Put stores value under key.
func (c *TTL[V]) Put(key string, value V) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Purge drops every entry, expired or not.
func (c *TTL[V]) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

// Len returns the number of entries, including expired ones not yet evicted.
func (c *TTL[V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Evict removes expired entries.
func (c *TTL[V]) Evict() {
	if c == nil {
		return
	}
	now := c.now()
	c.mu.Lock()
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}
