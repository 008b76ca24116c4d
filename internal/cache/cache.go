// Package cache memoizes simulation results keyed by the exact parameter
// tuple, so identical requests arriving under load do not pay the
// computation (or its energy cost) twice.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Stats reports cache effectiveness.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a TTL'd in-memory memoization layer with single-flight
// de-duplication: at most one compute runs per key, concurrent same-key
// callers wait for and share its result.
type Cache struct {
	group      singleflight.Group
	mu         sync.RWMutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int

	hits   atomic.Int64
	misses atomic.Int64
}

// New builds a cache. ttl <= 0 disables expiry; maxEntries < 1 falls back
// to 1024.
func New(ttl time.Duration, maxEntries int) *Cache {
	if maxEntries < 1 {
		maxEntries = 1024
	}
	return &Cache{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// GetOrCompute returns the cached value for key, or runs compute exactly
// once to produce it. The returned bool is true when the caller got a
// previously computed (or concurrently shared) value without paying for its
// own computation. Errors are not cached.
func (c *Cache) GetOrCompute(key string, compute func() (any, error)) (any, bool, error) {
	if v, ok := c.lookup(key); ok {
		c.hits.Add(1)
		return v, true, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		res, err := c.fill(key, compute)
		if err != nil {
			return nil, err
		}
		return res, nil
	})
	if err != nil {
		return nil, false, err
	}
	res := v.(flightResult)
	if shared || res.fromCache {
		c.hits.Add(1)
		return res.value, true, nil
	}
	c.misses.Add(1)
	return res.value, false, nil
}

// flightResult carries the computed value out of a flight together with how
// it was obtained, so the flight owner reports a hit when another flight
// filled the entry while it waited.
type flightResult struct {
	value     any
	fromCache bool
}

func (c *Cache) fill(key string, compute func() (any, error)) (flightResult, error) {
	// A concurrent flight may have filled the entry between the caller's
	// lookup and acquiring the flight.
	if v, ok := c.lookup(key); ok {
		return flightResult{value: v, fromCache: true}, nil
	}
	v, err := compute()
	if err != nil {
		return flightResult{}, err
	}
	c.set(key, v)
	return flightResult{value: v}, nil
}

// Invalidate drops one key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Stats returns current counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	entries := len(c.entries)
	c.mu.RUnlock()
	return Stats{Entries: entries, Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// StartJanitor evicts expired entries every interval until stop is closed.
func (c *Cache) StartJanitor(interval time.Duration, stop <-chan struct{}) {
	if c.ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.evictExpired(time.Now())
			case <-stop:
				return
			}
		}
	}()
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Now().After(e.expiresAt) {
		c.Invalidate(key)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// evictOneLocked drops the entry closest to expiry (oldest under a uniform
// TTL). Called with c.mu held.
func (c *Cache) evictOneLocked() {
	var victim string
	var earliest time.Time
	for k, e := range c.entries {
		if victim == "" || e.expiresAt.Before(earliest) {
			victim = k
			earliest = e.expiresAt
		}
	}
	if victim != "" {
		delete(c.entries, victim)
	}
}

func (c *Cache) evictExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}
