// Package sources defines the external author data sources consulted when
// reconciling a publication. A source maps a publication to its own
// identifier, lists that publication's authors, and can expand a set of
// known external identifiers with cross-references.
package sources

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/agentstation/authorgraph/pkg/authors"
	"github.com/agentstation/authorgraph/pkg/graph"
)

// ID identifies a source.
type ID string

// String returns the string representation of a source ID.
func (id ID) String() string {
	return string(id)
}

// Built-in source IDs.
const (
	GraphItemID ID = "graph_item"
	LocalID     ID = "local"
)

// Source is an external registry of publication metadata.
type Source interface {
	// ID returns the source identifier.
	ID() ID

	// Priority orders sources. Lower values are consulted first.
	Priority() int

	// PublicationID returns this source's identifier for the publication,
	// or false when the source does not know it.
	PublicationID(entity *graph.Entity, ids map[string]string) (string, bool)

	// Authors returns the author list of the publication.
	Authors(ctx context.Context, publicationID string) ([]authors.Record, error)

	// Identifiers returns external ids cross-referenced from known. The
	// result may repeat entries already in known.
	Identifiers(ctx context.Context, known map[string]string) (map[string]string, error)
}

// Sources is a thread-safe container for managing multiple sources.
type Sources struct {
	mu      sync.RWMutex
	sources map[ID]Source
}

// NewSources creates a Sources holding srcs.
func NewSources(srcs ...Source) *Sources {
	s := &Sources{sources: make(map[ID]Source, len(srcs))}
	for _, src := range srcs {
		s.sources[src.ID()] = src
	}
	return s
}

// Get returns a source by ID.
func (s *Sources) Get(id ID) (Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, found := s.sources[id]
	return src, found
}

// Set sets a source by ID.
func (s *Sources) Set(src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[src.ID()] = src
}

// Delete deletes a source by ID.
func (s *Sources) Delete(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sources, id)
}

// Len returns the number of sources.
func (s *Sources) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sources)
}

// List returns all sources ordered by priority, then ID.
func (s *Sources) List() []Source {
	s.mu.RLock()
	list := make([]Source, 0, len(s.sources))
	for _, src := range s.sources {
		list = append(list, src)
	}
	s.mu.RUnlock()

	slices.SortFunc(list, func(a, b Source) int {
		if a.Priority() != b.Priority() {
			return a.Priority() - b.Priority()
		}
		return strings.Compare(string(a.ID()), string(b.ID()))
	})
	return list
}

// IDs returns the source IDs in List order.
func (s *Sources) IDs() []ID {
	list := s.List()
	ids := make([]ID, len(list))
	for i, src := range list {
		ids[i] = src.ID()
	}
	return ids
}
