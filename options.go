package authorgraph

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/authorgraph/pkg/constants"
	"github.com/agentstation/authorgraph/pkg/errors"
	"github.com/agentstation/authorgraph/pkg/graph"
	"github.com/agentstation/authorgraph/pkg/idcache"
	"github.com/agentstation/authorgraph/pkg/sources"
)

// Option is a function that configures an Engine
type Option func(*options) error

// options holds the engine configuration.
type options struct {
	client        graph.Client
	queries       graph.QueryService
	sources       *sources.Sources
	cache         *idcache.Cache
	vocab         *graph.Vocabulary
	logger        *zerolog.Logger
	concurrency   int
	cacheCapacity int
	rateLimit     float64
	rateBurst     int
	dryRun        bool
}

func defaults() *options {
	return &options{
		vocab:         graph.DefaultVocabulary(),
		concurrency:   constants.MaxConcurrentPublications,
		cacheCapacity: constants.IdentifierCacheCapacity,
		rateLimit:     constants.DefaultRateLimit,
		rateBurst:     constants.BurstSize,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithGraph sets the graph client. If it also answers root-author queries
// it is used as the query service unless WithQueryService overrides it.
func WithGraph(client graph.Client) Option {
	return func(o *options) error {
		o.client = client
		return nil
	}
}

// WithQueryService sets the service answering root-author queries.
func WithQueryService(q graph.QueryService) Option {
	return func(o *options) error {
		o.queries = q
		return nil
	}
}

// WithSources sets the author sources. Defaults to the graph item alone.
func WithSources(s *sources.Sources) Option {
	return func(o *options) error {
		if s == nil {
			return errors.NewValidationError("sources", nil, "cannot be nil")
		}
		o.sources = s
		return nil
	}
}

// WithCache shares an identifier cache between engines.
func WithCache(c *idcache.Cache) Option {
	return func(o *options) error {
		o.cache = c
		return nil
	}
}

// WithCacheCapacity sets the per-property capacity of the engine's own cache.
func WithCacheCapacity(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return errors.NewValidationError("cache_capacity", n, "must be positive")
		}
		o.cacheCapacity = n
		return nil
	}
}

// WithConcurrency caps the number of name groups processed at once.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return errors.NewValidationError("concurrency", n, "must be positive")
		}
		o.concurrency = n
		return nil
	}
}

// WithVocabulary overrides the property and item ids used on the graph.
func WithVocabulary(v *graph.Vocabulary) Option {
	return func(o *options) error {
		if v == nil {
			return errors.NewValidationError("vocabulary", nil, "cannot be nil")
		}
		o.vocab = v
		return nil
	}
}

// WithLogger sets the engine logger. Without it the context logger is used.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithRateLimit throttles graph calls to rps requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) error {
		o.rateLimit = rps
		o.rateBurst = burst
		return nil
	}
}

// WithDryRun computes diffs without writing to the graph.
func WithDryRun(enabled bool) Option {
	return func(o *options) error {
		o.dryRun = enabled
		return nil
	}
}
