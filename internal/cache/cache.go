// Package cache provides a thread-safe, generic key→value store with
// per-entry time-to-live and bounded size under least-recently-used
// eviction. TTLs are chosen by the caller per Set, which lets the
// coordinator give each data category (current observations, station
// metadata, history, alerts) its own lifetime from one implementation.
//
// Expiry is enforced on read: Get treats an expired entry exactly like a
// miss, so the periodic sweep is purely a memory-reclamation optimization.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Cache is a TTL + LRU cache. The zero value is not usable; construct with
// New or NewWithClock.
type Cache[V any] struct {
	mu         sync.Mutex
	clock      clockwork.Clock
	maxEntries int
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used

	hits uint64
}

type entry[V any] struct {
	key        string
	value      V
	createdAt  time.Time
	lastAccess time.Time
	expiresAt  time.Time
	hits       uint64
	prev       *entry[V]
	next       *entry[V]
}

// Stats is a point-in-time snapshot of cache occupancy and usage.
type Stats struct {
	Size    int    `json:"size"`
	Active  int    `json:"active"`
	Expired int    `json:"expired"`
	Hits    uint64 `json:"hits"`
}

// New creates a cache bounded at maxEntries, using real time.
func New[V any](maxEntries int) *Cache[V] {
	return NewWithClock[V](maxEntries, clockwork.NewRealClock())
}

// NewWithClock creates a cache with an injected time source, so tests can
// advance time instead of sleeping.
func NewWithClock[V any](maxEntries int, clk clockwork.Clock) *Cache[V] {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Cache[V]{
		clock:      clk,
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

// Get returns the live value for key. An expired entry behaves identically
// to a miss; the stale entry is removed as a side effect to reclaim memory.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}

	now := c.clock.Now()
	if !now.Before(e.expiresAt) {
		c.removeEntry(e)
		return zero, false
	}

	e.lastAccess = now
	e.hits++
	c.hits++
	c.moveToFront(e)
	return e.value, true
}

// Set stores value under key with the given TTL. Updating an existing key
// replaces it in place and never counts against capacity; inserting a new
// key at capacity evicts the least-recently-accessed entry first.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.createdAt = now
		e.lastAccess = now
		e.expiresAt = now.Add(ttl)
		c.moveToFront(e)
		return
	}

	if len(c.entries) >= c.maxEntries {
		c.evictTail()
	}

	e := &entry[V]{
		key:        key,
		value:      value,
		createdAt:  now,
		lastAccess: now,
		expiresAt:  now.Add(ttl),
	}
	c.entries[key] = e
	c.addToFront(e)
}

// Has reports whether key holds a live entry. Unlike Get it does not count
// as an access, so it never promotes the entry or bumps hit counters.
func (c *Cache[V]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	return ok && c.clock.Now().Before(e.expiresAt)
}

// Delete removes key if present.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.removeEntry(e)
	}
}

// Clear removes all entries. Cumulative hit counts survive.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry[V])
	c.head = nil
	c.tail = nil
}

// Stats returns occupancy counts. Expired counts entries still physically
// stored but no longer visible to Get.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	s := Stats{Size: len(c.entries), Hits: c.hits}
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			s.Active++
		} else {
			s.Expired++
		}
	}
	return s
}

// SweepExpired removes all expired entries and returns how many were removed.
func (c *Cache[V]) SweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	removed := 0
	for _, e := range c.entries {
		if !now.Before(e.expiresAt) {
			c.removeEntry(e)
			removed++
		}
	}
	return removed
}

// --- intrusive LRU list, callers hold c.mu ---

func (c *Cache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *Cache[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *Cache[V]) unlink(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *Cache[V]) removeEntry(e *entry[V]) {
	delete(c.entries, e.key)
	c.unlink(e)
}

func (c *Cache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	c.removeEntry(c.tail)
}
