// Package semgraph ties the triple store, the query engine and the query
// cache together behind one embeddable handle.
//
// A Store is the single entry point a host application holds: statements go
// in through Add and Merge, answers come out through Select and Construct.
// Query results are memoized in a normalizing TTL cache keyed on the
// canonicalized query text; any mutation of the graph invalidates the whole
// cache, since every cached answer may depend on the changed data.
//
// The store itself does no locking. Callers running multiple logical
// read-then-write workflows concurrently must funnel mutations through a
// single writer; the cache, which owns a background sweeper goroutine, guards
// itself.
package semgraph

import (
	"fmt"
	"time"

	"github.com/liliang-cn/semgraph/pkg/cache"
	"github.com/liliang-cn/semgraph/pkg/query"
	"github.com/liliang-cn/semgraph/pkg/rdf"
	"github.com/liliang-cn/semgraph/pkg/store"
)

// Config represents store configuration
type Config struct {
	Cache cache.Config // query-result cache limits
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Cache: cache.DefaultConfig(),
	}
}

// SelectResult is the answer to a SELECT query.
type SelectResult struct {
	Bindings []query.Binding
	Cached   bool
}

// ConstructResult is the answer to a CONSTRUCT query. Provenance is the
// canonical form of the producing query, so constructed triples can be traced
// back to the rule that derived them.
type ConstructResult struct {
	Triples    []rdf.Triple
	Provenance string
	Cached     bool
}

// Store is an embedded semantic triple store with a cached query engine.
type Store struct {
	graph  *store.Graph
	engine *query.Engine
	cache  *cache.Cache
	logger Logger
	clock  func() time.Time
}

// Option is a functional option for configuring the Store.
type Option func(*Store)

// WithLogger sets the logger used for query and mutation diagnostics.
func WithLogger(l Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithClock replaces the time source used by the store and its cache.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.clock = now
	}
}

// Open creates a store with the given configuration.
func Open(cfg Config, opts ...Option) (*Store, error) {
	s := &Store{
		graph:  store.New(),
		logger: NopLogger(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	c, err := cache.New(cfg.Cache, cache.WithClock(s.clock))
	if err != nil {
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}
	s.cache = c
	s.engine = query.NewEngine(s.graph)
	return s, nil
}

// Close stops the cache's background sweeper and drops all cached results.
// The store and its graph remain usable.
func (s *Store) Close() {
	s.cache.Destroy()
}

// Add inserts a triple and invalidates cached query results.
func (s *Store) Add(t rdf.Triple) {
	s.graph.Add(t)
	s.cache.InvalidateAll()
}

// Remove deletes a triple and invalidates cached query results.
func (s *Store) Remove(t rdf.Triple) {
	s.graph.Remove(t)
	s.cache.InvalidateAll()
}

// Merge adds every triple of the other graph and invalidates cached query
// results.
func (s *Store) Merge(other *store.Graph) {
	s.graph.Merge(other)
	s.cache.InvalidateAll()
}

// Clear removes all triples and cached query results.
func (s *Store) Clear() {
	s.graph.Clear()
	s.cache.InvalidateAll()
}

// Has reports whether the triple is a member of the graph.
func (s *Store) Has(t rdf.Triple) bool { return s.graph.Has(t) }

// Len returns the number of triples in the graph.
func (s *Store) Len() int { return s.graph.Len() }

// Match queries the graph directly, bypassing the cache. A nil component is
// a wildcard.
func (s *Store) Match(subject, predicate, object rdf.Term) []rdf.Triple {
	return s.graph.Match(subject, predicate, object)
}

// Triples returns all triples in insertion order.
func (s *Store) Triples() []rdf.Triple { return s.graph.Triples() }

// Graph exposes the underlying graph for collaborators (serializers,
// persistence adapters) that work through the add/match/merge surface.
func (s *Store) Graph() *store.Graph { return s.graph }

// CacheStats returns a snapshot of the query-cache counters.
func (s *Store) CacheStats() cache.Stats { return s.cache.Stats() }

// SetCacheConfig replaces the cache configuration at runtime, immediately
// re-clamping existing entries to the new limits.
func (s *Store) SetCacheConfig(cfg cache.Config) error {
	return s.cache.SetConfig(cfg)
}

// Select parses and executes a SELECT query, consulting the cache first.
func (s *Store) Select(text string) (SelectResult, error) {
	key := cache.Key(text)
	if v, ok := s.cache.Get(key); ok {
		if bindings, ok := v.([]query.Binding); ok {
			s.logger.Debug("select served from cache", "key", key)
			return SelectResult{Bindings: bindings, Cached: true}, nil
		}
	}

	q, err := query.Parse(text)
	if err != nil {
		return SelectResult{}, err
	}
	start := s.clock()
	bindings, err := s.engine.Select(q)
	if err != nil {
		return SelectResult{}, err
	}
	s.logger.Debug("select executed",
		"key", key, "rows", len(bindings), "took", s.clock().Sub(start))

	s.cache.Set(key, bindings)
	return SelectResult{Bindings: bindings}, nil
}

// Construct parses and executes a CONSTRUCT query, consulting the cache
// first. The constructed triples are returned, not added to the graph;
// callers decide whether derived statements become members.
func (s *Store) Construct(text string) (ConstructResult, error) {
	key := cache.Key(text)
	if v, ok := s.cache.Get(key); ok {
		if triples, ok := v.([]rdf.Triple); ok {
			s.logger.Debug("construct served from cache", "key", key)
			return ConstructResult{Triples: triples, Provenance: key, Cached: true}, nil
		}
	}

	q, err := query.Parse(text)
	if err != nil {
		return ConstructResult{}, err
	}
	start := s.clock()
	triples, err := s.engine.Construct(q)
	if err != nil {
		return ConstructResult{}, err
	}
	s.logger.Debug("construct executed",
		"key", key, "triples", len(triples), "took", s.clock().Sub(start))

	s.cache.Set(key, triples)
	return ConstructResult{Triples: triples, Provenance: key}, nil
}
