// Package cache implements the normalizing query-result cache that sits in
// front of the query engine.
//
// Entries live until their TTL expires, the cache is explicitly invalidated,
// or capacity pressure evicts them. Eviction is strictly by insertion order
// (oldest inserted first), not by access order; this is not an LRU. A
// background sweeper owned by the cache removes expired entries periodically
// and is stopped by Destroy.
package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Common errors
var (
	// ErrInvalidConfig is returned when the cache configuration is invalid.
	ErrInvalidConfig = errors.New("invalid cache configuration")
)

// Config controls cache behavior. It can be replaced at runtime through
// SetConfig; new limits re-clamp existing entries immediately.
type Config struct {
	MaxSize         int           // maximum number of entries, must be > 0
	DefaultTTL      time.Duration // TTL used by Set
	MaxTTL          time.Duration // upper clamp for any TTL
	CleanupInterval time.Duration // sweep period; 0 disables the sweeper
	Enabled         bool          // a disabled cache always misses and never stores
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		MaxSize:         100,
		DefaultTTL:      5 * time.Minute,
		MaxTTL:          30 * time.Minute,
		CleanupInterval: time.Minute,
		Enabled:         true,
	}
}

func (c Config) validate() error {
	if c.MaxSize <= 0 {
		return fmt.Errorf("%w: MaxSize must be positive, got %d", ErrInvalidConfig, c.MaxSize)
	}
	return nil
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits         uint64
	Misses       uint64
	Evictions    uint64
	TotalQueries uint64
	HitRate      float64
	Size         int
	MaxSize      int
}

type entry struct {
	value      any
	insertedAt time.Time
	expiresAt  time.Time
}

// Cache is a TTL- and capacity-bounded query-result cache. All methods are
// safe for concurrent use; the background sweeper shares the same lock.
type Cache struct {
	mu      sync.Mutex
	cfg     Config
	entries map[string]*entry
	now     func() time.Time

	hits      uint64
	misses    uint64
	evictions uint64
	total     uint64

	sweepStop chan struct{}
}

// Option is a functional option for configuring the Cache.
type Option func(*Cache)

// WithClock replaces the cache's time source. Tests use this to simulate TTL
// expiry deterministically.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a cache and starts its background sweeper when
// CleanupInterval is positive.
func New(cfg Config, opts ...Option) (*Cache, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	c := &Cache{
		cfg:     cfg,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.startSweeper(cfg.CleanupInterval)
	return c, nil
}

func (c *Cache) startSweeper(interval time.Duration) {
	if interval <= 0 {
		return
	}
	stop := make(chan struct{})
	c.sweepStop = stop
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Cleanup()
			case <-stop:
				return
			}
		}
	}()
}

func (c *Cache) stopSweeper() {
	if c.sweepStop != nil {
		close(c.sweepStop)
		c.sweepStop = nil
	}
}

// Get returns the cached value for key if present and unexpired. Every call
// counts toward total queries and exactly one of hits or misses. A disabled
// cache always misses.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	if !c.cfg.Enabled {
		c.misses++
		return nil, false
	}
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if c.expired(e) {
		delete(c.entries, key)
		c.misses++
		return nil, false
	}
	c.hits++
	return e.value, true
}

// Has reports whether key is cached and unexpired. An expired entry is
// lazily evicted by the probe. Has does not count toward query statistics.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cfg.Enabled {
		return false
	}
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	if c.expired(e) {
		delete(c.entries, key)
		return false
	}
	return true
}

// Set stores value under key with the configured default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.DefaultTTL())
}

// SetWithTTL stores value under key. The TTL is clamped to [0, MaxTTL]; a
// clamped TTL of zero or less means "do not cache" and the call is silently
// skipped. Inserting at capacity evicts the oldest-by-insertion entry,
// repeated until the cache is under capacity.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cfg.Enabled {
		return
	}
	if ttl > c.cfg.MaxTTL {
		ttl = c.cfg.MaxTTL
	}
	if ttl <= 0 {
		return
	}

	if _, exists := c.entries[key]; !exists {
		for len(c.entries) >= c.cfg.MaxSize {
			c.evictOldest()
		}
	}
	now := c.now()
	c.entries[key] = &entry{
		value:      value,
		insertedAt: now,
		expiresAt:  now.Add(ttl),
	}
}

// evictOldest removes the entry with the earliest insertion time. Caller
// holds the lock.
func (c *Cache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	first := true
	for k, e := range c.entries {
		if first || e.insertedAt.Before(oldest) {
			oldestKey, oldest = k, e.insertedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
		c.evictions++
	}
}

func (c *Cache) expired(e *entry) bool {
	return !c.now().Before(e.expiresAt)
}

// InvalidateAll removes every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// InvalidateWhere removes every entry whose key satisfies pred and returns
// the number removed.
func (c *Cache) InvalidateWhere(pred func(key string) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k := range c.entries {
		if pred(k) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Cleanup removes all currently expired entries and returns the number
// removed. The background sweeper calls this periodically; it is also safe to
// call manually.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Hits:         c.hits,
		Misses:       c.misses,
		Evictions:    c.evictions,
		TotalQueries: c.total,
		Size:         len(c.entries),
		MaxSize:      c.cfg.MaxSize,
	}
	if c.total > 0 {
		s.HitRate = float64(c.hits) / float64(c.total)
	}
	return s
}

// Len returns the current number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// DefaultTTL returns the configured default TTL.
func (c *Cache) DefaultTTL() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.DefaultTTL
}

// SetConfig replaces the configuration at runtime. Existing entries are
// immediately re-clamped to the new limits: expiry times shrink to
// insertion time + MaxTTL, and entries beyond the new capacity are evicted
// oldest first. The sweeper is restarted when the cleanup interval changes.
func (c *Cache) SetConfig(cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	restart := cfg.CleanupInterval != c.cfg.CleanupInterval
	c.cfg = cfg

	for _, e := range c.entries {
		if maxExpiry := e.insertedAt.Add(cfg.MaxTTL); e.expiresAt.After(maxExpiry) {
			e.expiresAt = maxExpiry
		}
	}
	for len(c.entries) > cfg.MaxSize {
		c.evictOldest()
	}

	if restart {
		c.stopSweeper()
		c.startSweeper(cfg.CleanupInterval)
	}
	return nil
}

// Destroy stops the background sweeper and clears all entries. The cache
// remains usable afterward as an empty cache without a sweeper.
func (c *Cache) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopSweeper()
	c.entries = make(map[string]*entry)
}
