// Package balance caches the user's request balance locally.
//
// The backend owns the balance. The cache takes two kinds of writes: an
// optimistic delta applied right after a reading succeeds, and an authoritative
// snapshot from the server that replaces the whole value.
package balance

import "sync"

// Balance is the request balance of a user
type Balance struct {
	Free          int `json:"free" yaml:"free"`
	Premium       int `json:"premium" yaml:"premium"`
	TotalReadings int `json:"total_readings" yaml:"total_readings"`
}

// Exhausted reports whether both request pools are empty
func (b Balance) Exhausted() bool {
	return b.Free <= 0 && b.Premium <= 0
}

// Delta is an optimistic change to a Balance
type Delta struct {
	Free          int
	Premium       int
	TotalReadings int
}

// Spend returns the delta of one reading paid from the premium or free pool
func Spend(premium bool) Delta {
	if premium {
		return Delta{Premium: -1, TotalReadings: 1}
	}
	return Delta{Free: -1, TotalReadings: 1}
}

// Cache is a goroutine-safe local copy of a Balance
type Cache struct {
	mu      sync.RWMutex
	current Balance
	loaded  bool
}

// NewCache returns an empty cache
func NewCache() *Cache {
	return &Cache{}
}

// Snapshot returns the cached balance
func (c *Cache) Snapshot() Balance {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Loaded reports whether an authoritative balance has been applied
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// ApplyOptimistic adds d to the cached balance. No field goes below zero.
func (c *Cache) ApplyOptimistic(d Delta) Balance {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current.Free = clamp(c.current.Free + d.Free)
	c.current.Premium = clamp(c.current.Premium + d.Premium)
	c.current.TotalReadings = clamp(c.current.TotalReadings + d.TotalReadings)
	return c.current
}

// ApplyAuthoritative replaces the cached balance with a server snapshot
func (c *Cache) ApplyAuthoritative(b Balance) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = Balance{
		Free:          clamp(b.Free),
		Premium:       clamp(b.Premium),
		TotalReadings: clamp(b.TotalReadings),
	}
	c.loaded = true
}

// Reset forgets the cached balance
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = Balance{}
	c.loaded = false
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
