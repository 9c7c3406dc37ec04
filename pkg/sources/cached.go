package sources

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentstation/authorgraph/pkg/authors"
	"github.com/agentstation/authorgraph/pkg/graph"
)

// Cached wraps a Source and memoizes its Authors and Identifiers results
// for a TTL. Errors are never cached.
type Cached struct {
	Source
	store *gocache.Cache
}

// NewCached wraps src. A ttl of zero or less returns src unchanged.
func NewCached(src Source, ttl time.Duration) Source {
	if ttl <= 0 {
		return src
	}
	return &Cached{Source: src, store: gocache.New(ttl, 2*ttl)}
}

// PublicationID delegates to the wrapped source.
func (c *Cached) PublicationID(entity *graph.Entity, ids map[string]string) (string, bool) {
	return c.Source.PublicationID(entity, ids)
}

// Authors returns a copy of the cached author list, fetching on a miss.
func (c *Cached) Authors(ctx context.Context, publicationID string) ([]authors.Record, error) {
	key := "authors|" + publicationID
	if v, ok := c.store.Get(key); ok {
		return authors.CloneAll(v.([]authors.Record)), nil
	}
	records, err := c.Source.Authors(ctx, publicationID)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, authors.CloneAll(records), gocache.DefaultExpiration)
	return records, nil
}

// Identifiers returns a copy of the cached cross-references, fetching on a miss.
func (c *Cached) Identifiers(ctx context.Context, known map[string]string) (map[string]string, error) {
	key := identifiersKey(known)
	if v, ok := c.store.Get(key); ok {
		return maps.Clone(v.(map[string]string)), nil
	}
	ids, err := c.Source.Identifiers(ctx, known)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, maps.Clone(ids), gocache.DefaultExpiration)
	return ids, nil
}

// ItemCount returns the number of cached results.
func (c *Cached) ItemCount() int {
	return c.store.ItemCount()
}

// Flush drops every cached result.
func (c *Cached) Flush() {
	c.store.Flush()
}

func identifiersKey(known map[string]string) string {
	var b strings.Builder
	b.WriteString("ids")
	for _, k := range slices.Sorted(maps.Keys(known)) {
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(known[k])
	}
	return b.String()
}
