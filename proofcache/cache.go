// Package proofcache is a time-bounded, capacity-bounded store of issued
// proofs. Losing an entry is an availability concern only: a holder's copy
// of a proof stays verifiable regardless of what the cache does.
package proofcache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Record is what the cache knows about a stored proof.
type Record interface {
	CacheID() string
	IssuedAt() time.Time
	Expiry() time.Time
	Level() int
	PostQuantum() bool
}

// DefaultCapacity bounds the cache when no explicit capacity is configured.
const DefaultCapacity = 1000

// Stats summarizes the live cache contents.
type Stats struct {
	Total                 int         `json:"total"`
	BySecurityLevel       map[int]int `json:"bySecurityLevel"`
	QuantumResistantRatio float64     `json:"quantumResistantRatio"`
	MeanAgeSeconds        float64     `json:"meanAgeSeconds"`
}

// Cache stores records by id. Stored records are never mutated in place:
// they leave by expiry, explicit removal, or oldest-first eviction under
// capacity pressure, and storing an id again swaps in the whole new record.
type Cache[T Record] struct {
	mu       sync.RWMutex
	entries  map[string]T
	order    []string // insertion order, oldest first
	capacity int
}

// New builds a cache with the given capacity; zero or negative means
// DefaultCapacity.
func New[T Record](capacity int) *Cache[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[T]{
		entries:  make(map[string]T),
		capacity: capacity,
	}
}

// Put stores a record, evicting the oldest entries if the cache is full. An
// id already present is replaced wholesale and keeps its insertion slot.
func (c *Cache[T]) Put(rec T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := rec.CacheID()
	if _, exists := c.entries[id]; !exists {
		for len(c.entries) >= c.capacity && len(c.order) > 0 {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, id)
	}
	c.entries[id] = rec
}

// Get returns the record for id. An expired entry is treated as absent even
// before a sweep removes it.
func (c *Cache[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var zero T
	rec, ok := c.entries[id]
	if !ok {
		return zero, false
	}
	if time.Now().After(rec.Expiry()) {
		return zero, false
	}
	return rec, true
}

// Remove deletes the record for id and reports whether it existed.
func (c *Cache[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[id]; !ok {
		return false
	}
	delete(c.entries, id)
	c.dropFromOrder(id)
	return true
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CleanupExpired removes every expired entry and returns how many went. The
// expiry scan runs on a snapshot so in-flight reads and writes are never
// blocked for the sweep's duration.
func (c *Cache[T]) CleanupExpired() int {
	now := time.Now()

	c.mu.RLock()
	expired := make([]string, 0)
	for id, rec := range c.entries {
		if now.After(rec.Expiry()) {
			expired = append(expired, id)
		}
	}
	c.mu.RUnlock()

	if len(expired) == 0 {
		return 0
	}

	c.mu.Lock()
	removed := 0
	for _, id := range expired {
		rec, ok := c.entries[id]
		if !ok || !now.After(rec.Expiry()) {
			continue
		}
		delete(c.entries, id)
		c.dropFromOrder(id)
		removed++
	}
	c.mu.Unlock()
	return removed
}

// Stats reports counts by security level, the quantum-resistant ratio, and
// the mean entry age.
func (c *Cache[T]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{
		Total:           len(c.entries),
		BySecurityLevel: make(map[int]int),
	}
	if stats.Total == 0 {
		return stats
	}
	now := time.Now()
	pq := 0
	var ageSum float64
	for _, rec := range c.entries {
		stats.BySecurityLevel[rec.Level()]++
		if rec.PostQuantum() {
			pq++
		}
		ageSum += now.Sub(rec.IssuedAt()).Seconds()
	}
	stats.QuantumResistantRatio = float64(pq) / float64(stats.Total)
	stats.MeanAgeSeconds = ageSum / float64(stats.Total)
	return stats
}

type exportEnvelope[T Record] struct {
	ExportedAt time.Time    `json:"exportedAt"`
	Order      []string     `json:"order"`
	Entries    map[string]T `json:"entries"`
}

// Export serializes the cache contents for a persistence handoff.
func (c *Cache[T]) Export() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	env := exportEnvelope[T]{
		ExportedAt: time.Now().UTC(),
		Order:      append([]string(nil), c.order...),
		Entries:    make(map[string]T, len(c.entries)),
	}
	for id, rec := range c.entries {
		env.Entries[id] = rec
	}
	return json.MarshalIndent(env, "", " ")
}

// Import replaces the cache contents with a previously exported payload. A
// malformed payload returns an error and leaves the existing cache untouched.
func (c *Cache[T]) Import(data []byte) error {
	var env exportEnvelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("malformed cache payload: %w", err)
	}
	if env.Entries == nil {
		return fmt.Errorf("malformed cache payload: no entries")
	}
	order := make([]string, 0, len(env.Entries))
	seen := make(map[string]bool, len(env.Entries))
	for _, id := range env.Order {
		if _, ok := env.Entries[id]; ok && !seen[id] {
			order = append(order, id)
			seen[id] = true
		}
	}
	for id := range env.Entries {
		if !seen[id] {
			order = append(order, id)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = env.Entries
	c.order = order
	return nil
}

// Resize changes the capacity, evicting oldest entries while over it.
func (c *Cache[T]) Resize(capacity int) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capacity = capacity
	for len(c.entries) > c.capacity && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// caller holds the write lock
func (c *Cache[T]) dropFromOrder(id string) {
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
