// Package idcache maps (property, external identifier) pairs to graph nodes.
//
// Entries are grouped into one bucket per property. The bucket map and each
// bucket carry their own sync.RWMutex, so lookups on different properties
// never contend and reads on the same property run in parallel. Writes that
// push a bucket to capacity prune it in place: every entry last touched
// before the median access time is dropped.
package idcache

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"github.com/agentstation/authorgraph/pkg/errors"
	"github.com/agentstation/authorgraph/pkg/graph"
	"github.com/agentstation/authorgraph/pkg/logging"
)

// DefaultCapacity is the per-property entry limit.
const DefaultCapacity = 10000

// Searcher runs a remote graph search. graph.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

type entry struct {
	value      string
	lastAccess atomic.Int64
}

type bucket struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// Cache is safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	buckets  map[string]*bucket
	searcher Searcher
	capacity int
	now      func() time.Time
	logger   *zerolog.Logger

	hits, misses, evictions atomic.Int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithCapacity sets the per-property entry limit.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithClock replaces time.Now for access timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger for eviction and search messages.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a cache that falls back to searcher on a miss.
func New(searcher Searcher, opts ...Option) *Cache {
	c := &Cache{
		buckets:  make(map[string]*bucket),
		searcher: searcher,
		capacity: DefaultCapacity,
		now:      time.Now,
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Normalize trims and casefolds an identifier.
func Normalize(key string) string {
	return cases.Fold().String(strings.TrimSpace(key))
}

func (c *Cache) bucket(property string, create bool) *bucket {
	c.mu.RLock()
	b, ok := c.buckets[property]
	c.mu.RUnlock()
	if ok || !create {
		return b
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok = c.buckets[property]; ok {
		return b
	}
	b = &bucket{entries: make(map[string]*entry)}
	c.buckets[property] = b
	return b
}

// Lookup returns the cached value without searching. The second result
// reports whether an entry exists; an entry may hold "" for "not found".
func (c *Cache) Lookup(property, key string) (string, bool) {
	b := c.bucket(property, false)
	if b == nil {
		return "", false
	}
	key = Normalize(key)

	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.entries[key]
	if !ok {
		return "", false
	}
	e.lastAccess.Store(c.now().UnixNano())
	return e.value, true
}

// Get returns the node for property=key, searching the graph on a miss and
// caching the first result or "" when nothing matched. Search failures are
// returned and not cached.
func (c *Cache) Get(ctx context.Context, property, key string) (string, error) {
	if v, ok := c.Lookup(property, key); ok {
		c.hits.Add(1)
		return v, nil
	}
	c.misses.Add(1)

	if c.searcher == nil {
		return "", errors.NewConfigError("idcache", "no searcher configured", nil)
	}
	// Entries are keyed case-insensitively, but the graph is searched with
	// the identifier as written.
	raw := strings.TrimSpace(key)
	results, err := c.searcher.Search(ctx, graph.HasStatement(property, raw))
	if err != nil {
		return "", errors.WrapNetwork("search", property+"="+raw, err)
	}

	var value string
	if len(results) > 0 {
		value = results[0]
	}
	if len(results) > 1 {
		c.logger.Warn().
			Str("property", property).
			Str("key", raw).
			Strs("results", results).
			Msg("Identifier search returned several nodes, caching the first")
	}
	c.Set(property, key, value)
	return value, nil
}

// Set stores value for property=key and prunes the property's bucket when
// it reaches capacity.
func (c *Cache) Set(property, key, value string) {
	b := c.bucket(property, true)
	key = Normalize(key)
	now := c.now().UnixNano()

	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[key]
	if !ok {
		e = &entry{}
		b.entries[key] = e
	}
	e.value = value
	e.lastAccess.Store(now)

	if len(b.entries) >= c.capacity {
		c.prune(property, b)
	}
}

// prune drops every entry older than the median access time. Caller holds b.mu.
func (c *Cache) prune(property string, b *bucket) {
	stamps := make([]int64, 0, len(b.entries))
	for _, e := range b.entries {
		stamps = append(stamps, e.lastAccess.Load())
	}
	slices.Sort(stamps)
	median := stamps[len(stamps)/2]

	before := len(b.entries)
	for k, e := range b.entries {
		if e.lastAccess.Load() < median {
			delete(b.entries, k)
		}
	}
	dropped := before - len(b.entries)
	c.evictions.Add(int64(dropped))
	c.logger.Debug().
		Str("property", property).
		Int("dropped", dropped).
		Int("kept", len(b.entries)).
		Msg("Pruned identifier cache")
}

// Len returns the number of entries cached for property.
func (c *Cache) Len(property string) int {
	b := c.bucket(property, false)
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Stats holds cache counters.
type Stats struct {
	Properties int   `json:"properties" yaml:"properties"`
	Entries    int   `json:"entries" yaml:"entries"`
	Hits       int64 `json:"hits" yaml:"hits"`
	Misses     int64 `json:"misses" yaml:"misses"`
	Evictions  int64 `json:"evictions" yaml:"evictions"`
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	buckets := make([]*bucket, 0, len(c.buckets))
	for _, b := range c.buckets {
		buckets = append(buckets, b)
	}
	c.mu.RUnlock()

	s := Stats{
		Properties: len(buckets),
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Evictions:  c.evictions.Load(),
	}
	for _, b := range buckets {
		b.mu.RLock()
		s.Entries += len(b.entries)
		b.mu.RUnlock()
	}
	return s
}
