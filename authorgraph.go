// Package authorgraph resolves publication authors to knowledge-graph nodes
// and rewrites authorship claims to match.
//
// An Engine offers two entry points. ReconcilePublication folds the author
// lists of every configured source into one canonical list, resolves each
// author through the identifier cache, and rewrites the publication's claims.
// ProcessRootAuthor takes an author node, groups the free-text author names
// on that author's publications, and links each recurring name to a node
// under a bounded worker pool.
//
// Example usage:
//
//	g, err := memgraph.Load("graph.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine, err := authorgraph.New(
//	    authorgraph.WithGraph(g),
//	    authorgraph.WithConcurrency(5),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := engine.ProcessRootAuthor(ctx, "Q42")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Summary())
package authorgraph

import (
	"context"

	"github.com/agentstation/authorgraph/internal/sources/graphitem"
	"github.com/agentstation/authorgraph/pkg/errors"
	"github.com/agentstation/authorgraph/pkg/graph"
	"github.com/agentstation/authorgraph/pkg/idcache"
	"github.com/agentstation/authorgraph/pkg/logging"
	"github.com/agentstation/authorgraph/pkg/reconcile"
	"github.com/agentstation/authorgraph/pkg/resolve"
	"github.com/agentstation/authorgraph/pkg/sources"
)

// Compile-time interface check to ensure proper implementation.
var _ Engine = (*engine)(nil)

// Engine is the reconciliation entry point.
type Engine interface {
	// Publications reconciles single publications against every source
	Publications

	// RootAuthors links recurring names on a root author's publications
	RootAuthors

	// Hooks provides access to outcome callbacks
	Hooks

	// CacheStats returns identifier cache counters
	CacheStats() idcache.Stats
}

// Publications runs the multi-source path.
type Publications interface {
	ReconcilePublication(ctx context.Context, publicationID string, known map[string]string) (reconcile.Outcome, error)
}

// RootAuthors runs the name-group orchestration.
type RootAuthors interface {
	ProcessRootAuthor(ctx context.Context, rootID string) (*reconcile.Report, error)
}

// engine is the internal implementation of the Engine interface.
type engine struct {
	options *options

	client   graph.Client
	queries  graph.QueryService
	sources  *sources.Sources
	cache    *idcache.Cache
	resolver *resolve.Resolver
	hooks    *hooks
}

// New creates an Engine. A graph client is required.
func New(opts ...Option) (Engine, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}
	if o.client == nil {
		return nil, errors.NewConfigError("engine", "a graph client is required", nil)
	}

	e := &engine{options: o, hooks: newHooks()}

	e.client = o.client
	if o.rateLimit > 0 {
		e.client = graph.NewRateLimited(o.client, o.rateLimit, o.rateBurst)
	}

	e.queries = o.queries
	if e.queries == nil {
		if qs, ok := o.client.(graph.QueryService); ok {
			e.queries = qs
		}
	}

	e.cache = o.cache
	if e.cache == nil {
		e.cache = idcache.New(e.client,
			idcache.WithCapacity(o.cacheCapacity),
			idcache.WithLogger(o.logger),
		)
	}

	e.sources = o.sources
	if e.sources == nil {
		e.sources = sources.NewSources(graphitem.New(e.client, o.vocab))
	}

	e.resolver, err = resolve.New(e.client, e.cache,
		resolve.WithVocabulary(o.vocab),
		resolve.WithDryRun(o.dryRun),
	)
	if err != nil {
		return nil, err
	}

	log := o.logger
	if log == nil {
		log = logging.Default()
	}
	log.Debug().
		Int("sources", e.sources.Len()).
		Int("concurrency", o.concurrency).
		Bool("dry_run", o.dryRun).
		Msg("Engine created")
	return e, nil
}

// CacheStats implements Engine.
func (e *engine) CacheStats() idcache.Stats {
	return e.cache.Stats()
}

// withLogger attaches the configured logger, if any, to ctx.
func (e *engine) withLogger(ctx context.Context) context.Context {
	if e.options.logger == nil {
		return ctx
	}
	return logging.WithLogger(ctx, e.options.logger)
}
