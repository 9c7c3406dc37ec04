// Package resolve links author records to graph nodes. It consults the
// identifier cache first, then searches the graph by name, and creates a
// node only when the search finds nobody. Ambiguous searches are reported,
// never guessed.
package resolve

import (
	"context"
	"maps"
	"slices"

	"github.com/rs/zerolog"

	"github.com/agentstation/authorgraph/pkg/authors"
	"github.com/agentstation/authorgraph/pkg/errors"
	"github.com/agentstation/authorgraph/pkg/graph"
	"github.com/agentstation/authorgraph/pkg/idcache"
	"github.com/agentstation/authorgraph/pkg/logging"
	"github.com/agentstation/authorgraph/pkg/match"
)

// Method records how a node was found.
type Method string

const (
	// MethodExisting means the record already carried a node.
	MethodExisting Method = "existing"
	// MethodCached means an external id was found in the identifier cache.
	MethodCached Method = "cached"
	// MethodCoauthor means a unique co-author node carries exactly this name.
	MethodCoauthor Method = "coauthor"
	// MethodAdopted means a single search hit was confirmed by the co-author index.
	MethodAdopted Method = "adopted"
	// MethodCreated means a new node was written.
	MethodCreated Method = "created"
	// MethodDryRun means a node would have been created.
	MethodDryRun Method = "dry_run"
)

// Resolution is the result of a successful resolve.
type Resolution struct {
	NodeID string
	Method Method
}

// Resolver finds or creates author nodes.
type Resolver struct {
	client graph.Client
	cache  *idcache.Cache
	vocab  *graph.Vocabulary
	logger *zerolog.Logger
	dryRun bool
}

// Option configures a Resolver.
type Option func(*Resolver) error

// WithVocabulary sets the ids used for search filters and new nodes.
func WithVocabulary(v *graph.Vocabulary) Option {
	return func(r *Resolver) error {
		if v == nil {
			return errors.NewValidationError("vocabulary", nil, "cannot be nil")
		}
		r.vocab = v
		return nil
	}
}

// WithLogger sets the logger used instead of the context logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(r *Resolver) error {
		r.logger = logger
		return nil
	}
}

// WithDryRun reports node creations without writing them.
func WithDryRun(enabled bool) Option {
	return func(r *Resolver) error {
		r.dryRun = enabled
		return nil
	}
}

// New creates a Resolver over client and cache.
func New(client graph.Client, cache *idcache.Cache, opts ...Option) (*Resolver, error) {
	if client == nil {
		return nil, errors.NewConfigError("resolve", "graph client is required", nil)
	}
	if cache == nil {
		return nil, errors.NewConfigError("resolve", "identifier cache is required", nil)
	}
	r := &Resolver{client: client, cache: cache, vocab: graph.DefaultVocabulary()}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Resolver) log(ctx context.Context) *zerolog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return logging.FromContext(ctx)
}

// ResolveName resolves a bare name string. A co-author node mapping 1:1 to
// the exact name is adopted without searching.
func (r *Resolver) ResolveName(ctx context.Context, name string, coauthors CoauthorIndex) (Resolution, error) {
	if node, ok := coauthors.Unique(name); ok {
		r.log(ctx).Debug().Str("author", name).Str("node", node).Msg("Adopted co-author node")
		return Resolution{NodeID: node, Method: MethodCoauthor}, nil
	}
	return r.Resolve(ctx, authors.Record{Name: name}, coauthors)
}

// Resolve returns the node for rec.
func (r *Resolver) Resolve(ctx context.Context, rec authors.Record, coauthors CoauthorIndex) (Resolution, error) {
	if rec.NodeID != "" {
		return Resolution{NodeID: rec.NodeID, Method: MethodExisting}, nil
	}
	if len(rec.ExternalIDs) == 0 {
		return Resolution{}, errors.NewUnresolvableError(rec.Name, "no external identifiers")
	}

	props := slices.Sorted(maps.Keys(rec.ExternalIDs))
	for _, prop := range props {
		node, err := r.cache.Get(ctx, prop, rec.ExternalIDs[prop])
		if err != nil {
			return Resolution{}, err
		}
		if node != "" {
			r.log(logging.WithProperty(ctx, prop)).Debug().
				Str("node", node).
				Msg("Resolved author from identifier cache")
			return Resolution{NodeID: node, Method: MethodCached}, nil
		}
	}

	if rec.Name == "" {
		return Resolution{}, errors.NewUnresolvableError(rec.Display(), "no name to search for")
	}

	log := r.log(ctx)
	query := graph.NameQuery(match.Simplify(rec.Name), r.vocab.Human)
	hits, err := r.client.Search(ctx, query)
	if err != nil {
		return Resolution{}, errors.WrapNetwork("search", query, err)
	}

	switch len(hits) {
	case 0:
		return r.create(ctx, rec)
	case 1:
		if node, ok := coauthors.Unique(rec.Name); ok && node == hits[0] {
			r.remember(rec, node)
			log.Debug().Str("author", rec.Name).Str("node", node).Msg("Adopted search hit confirmed by co-author")
			return Resolution{NodeID: node, Method: MethodAdopted}, nil
		}
		return Resolution{}, r.ambiguous(log, rec, hits, coauthors)
	default:
		return Resolution{}, r.ambiguous(log, rec, hits, coauthors)
	}
}

func (r *Resolver) create(ctx context.Context, rec authors.Record) (Resolution, error) {
	log := r.log(ctx)
	item := NewAuthorItem(rec, r.vocab)

	if r.dryRun {
		log.Info().Str("author", rec.Name).Msg("Dry run: would create author node")
		return Resolution{Method: MethodDryRun}, nil
	}

	node, err := r.client.CreateItem(ctx, item)
	if err != nil {
		return Resolution{}, errors.WrapNetwork("create", rec.Name, err)
	}
	r.remember(rec, node)
	log.Info().Str("author", rec.Name).Str("node", node).Msg("Created author node")
	return Resolution{NodeID: node, Method: MethodCreated}, nil
}

// remember caches node under every external id of rec.
func (r *Resolver) remember(rec authors.Record, node string) {
	for prop, id := range rec.ExternalIDs {
		r.cache.Set(prop, id, node)
	}
}

func (r *Resolver) ambiguous(log *zerolog.Logger, rec authors.Record, hits []string, coauthors CoauthorIndex) error {
	candidates := make([]errors.ScoredCandidate, 0, len(hits))
	for _, h := range hits {
		candidates = append(candidates, errors.ScoredCandidate{ID: h, Label: coauthors.Label(h)})
	}
	err := errors.NewAmbiguousMatchError(rec.Name, candidates)
	log.Warn().Err(err).Str("author", rec.Name).Strs("candidates", hits).Msg("Author search is ambiguous, leaving unresolved")
	return err
}

// NewAuthorItem builds the entity written for a new author: label and
// aliases from the names, human and researcher claims, and one claim per
// external id.
func NewAuthorItem(rec authors.Record, vocab *graph.Vocabulary) *graph.Entity {
	item := graph.NewEntity("")
	item.SetLabel(vocab.Language, rec.Name)
	for _, alt := range rec.AlternateNames {
		item.AddAlias(vocab.Language, alt)
	}
	item.AddClaim(graph.NewClaim(graph.PropertyInstanceOf, graph.ItemValue(vocab.Human)))
	item.AddClaim(graph.NewClaim(graph.PropertyOccupation, graph.ItemValue(vocab.Researcher)))
	for _, prop := range slices.Sorted(maps.Keys(rec.ExternalIDs)) {
		item.AddClaim(graph.NewClaim(prop, graph.StringValue(rec.ExternalIDs[prop])))
	}
	return item
}
