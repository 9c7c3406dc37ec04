// Package graphitem is the source backed by the publication item itself:
// its author claims and the publication identifiers stored on it.
package graphitem

import (
	"context"
	"maps"

	"github.com/agentstation/authorgraph/pkg/authors"
	"github.com/agentstation/authorgraph/pkg/errors"
	"github.com/agentstation/authorgraph/pkg/graph"
	"github.com/agentstation/authorgraph/pkg/sources"
)

// Priority puts the graph's own data ahead of external registries.
const Priority = 0

// Source reads author lists from the graph.
type Source struct {
	client graph.Client
	vocab  *graph.Vocabulary
}

// New creates a graph-item source.
func New(client graph.Client, vocab *graph.Vocabulary) *Source {
	if vocab == nil {
		vocab = graph.DefaultVocabulary()
	}
	return &Source{client: client, vocab: vocab}
}

// ID returns the source identifier.
func (s *Source) ID() sources.ID { return sources.GraphItemID }

// Priority returns the source priority.
func (s *Source) Priority() int { return Priority }

// PublicationID returns the entity id.
func (s *Source) PublicationID(entity *graph.Entity, _ map[string]string) (string, bool) {
	if entity == nil || entity.ID == "" {
		return "", false
	}
	return entity.ID, true
}

// Authors returns the author claims of the publication item.
func (s *Source) Authors(ctx context.Context, publicationID string) ([]authors.Record, error) {
	if s.client == nil {
		return nil, errors.NewConfigError("graph_item", "graph client is required", nil)
	}
	entity, err := graph.LoadEntity(ctx, s.client, publicationID)
	if err != nil {
		return nil, err
	}
	return authors.FromEntity(entity), nil
}

// Identifiers returns the publication identifiers of every item sharing one
// of the known publication identifiers.
func (s *Source) Identifiers(ctx context.Context, known map[string]string) (map[string]string, error) {
	if s.client == nil {
		return nil, errors.NewConfigError("graph_item", "graph client is required", nil)
	}
	props := s.vocab.PublicationIDProperties()
	found := make(map[string]string)
	var hits []string
	for _, prop := range props {
		value, ok := known[prop]
		if !ok {
			continue
		}
		query := graph.HasStatement(prop, value)
		ids, err := s.client.Search(ctx, query)
		if err != nil {
			return nil, errors.WrapNetwork("search", query, err)
		}
		hits = append(hits, ids...)
	}
	if len(hits) == 0 {
		return found, nil
	}
	entities, err := s.client.LoadEntities(ctx, hits)
	if err != nil {
		return nil, errors.WrapNetwork("load", "cross-referenced items", err)
	}
	for _, id := range hits {
		if e, ok := entities[id]; ok {
			maps.Copy(found, e.ExternalIDs(props))
		}
	}
	return found, nil
}
