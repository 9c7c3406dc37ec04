// Package registry assembles the configured author sources.
// This package is separate from the source implementations to avoid circular dependencies.
package registry

import (
	"slices"
	"time"

	"github.com/agentstation/authorgraph/internal/sources/graphitem"
	"github.com/agentstation/authorgraph/internal/sources/local"
	"github.com/agentstation/authorgraph/pkg/errors"
	"github.com/agentstation/authorgraph/pkg/graph"
	"github.com/agentstation/authorgraph/pkg/sources"
)

// Deps are the dependencies a source factory may use.
type Deps struct {
	Client     graph.Client
	Vocabulary *graph.Vocabulary
	// Dir holds local fixture files.
	Dir string
}

// Factory builds the sources of one kind.
type Factory func(Deps) ([]sources.Source, error)

// registry maps source kinds to their factories
var registry = map[sources.ID]Factory{
	sources.GraphItemID: func(d Deps) ([]sources.Source, error) {
		if d.Client == nil {
			return nil, errors.NewConfigError("sources", "graph_item needs a graph client", nil)
		}
		return []sources.Source{graphitem.New(d.Client, d.Vocabulary)}, nil
	},
	sources.LocalID: func(d Deps) ([]sources.Source, error) {
		if d.Dir == "" {
			return nil, nil
		}
		loaded, err := local.LoadDir(d.Dir)
		if err != nil {
			return nil, errors.NewConfigError("sources", "cannot load local fixtures from "+d.Dir, err)
		}
		out := make([]sources.Source, len(loaded))
		for i, s := range loaded {
			out[i] = s
		}
		return out, nil
	},
}

// Has checks if a source kind has a factory.
func Has(id sources.ID) bool {
	_, ok := registry[id]
	return ok
}

// List returns all registered source kinds.
func List() []sources.ID {
	ids := make([]sources.ID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Build creates the sources of the given kinds, or of every kind when none
// are given. A positive ttl wraps each source in a response cache.
func Build(deps Deps, ttl time.Duration, kinds ...sources.ID) (*sources.Sources, error) {
	if len(kinds) == 0 {
		kinds = List()
	}
	set := sources.NewSources()
	for _, kind := range kinds {
		factory, ok := registry[kind]
		if !ok {
			return nil, &errors.ValidationError{
				Field:   "source",
				Value:   kind,
				Message: "unsupported source: " + kind.String(),
			}
		}
		built, err := factory(deps)
		if err != nil {
			return nil, err
		}
		for _, src := range built {
			if _, dup := set.Get(src.ID()); dup {
				return nil, errors.NewConfigError("sources", "duplicate source id "+src.ID().String(), nil)
			}
			set.Set(sources.NewCached(src, ttl))
		}
	}
	return set, nil
}
