// Package app provides the application context and dependency management
// for the authorgraph CLI. It centralizes configuration, logging and the
// lazily built reconciliation engine.
package app

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/agentstation/authorgraph"
	"github.com/agentstation/authorgraph/internal/appcontext"
	"github.com/agentstation/authorgraph/internal/memgraph"
	"github.com/agentstation/authorgraph/internal/sources/registry"
	"github.com/agentstation/authorgraph/pkg/errors"
	"github.com/agentstation/authorgraph/pkg/graph"
	"github.com/agentstation/authorgraph/pkg/sources"
)

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// App represents the authorgraph application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	viper  *viper.Viper
	config *Config

	// Logger
	logger *zerolog.Logger

	// Command output, stdout when nil
	out io.Writer

	// Lazily loaded state, guarded by mu
	mu        sync.RWMutex
	graph     *memgraph.Graph
	graphPath string
	sources   *sources.Sources
	engine    authorgraph.Engine
	saved     int
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		viper:   newViper(),
	}

	config, err := readConfig(app.viper, "")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// EffectiveConfig returns a copy of the merged configuration.
func (a *App) EffectiveConfig() any {
	return *a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// DryRun reports whether writes are suppressed.
func (a *App) DryRun() bool {
	return a.config.DryRun
}

// Concurrency returns the task limit.
func (a *App) Concurrency() int {
	return a.config.Concurrency
}

// Engine returns the engine, creating it lazily if needed.
// This is thread-safe and ensures only one instance is created.
func (a *App) Engine() (authorgraph.Engine, error) {
	a.mu.RLock()
	if a.engine != nil {
		eng := a.engine
		a.mu.RUnlock()
		return eng, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.engine != nil {
		return a.engine, nil
	}
	if err := a.loadLocked(); err != nil {
		return nil, err
	}

	eng, err := authorgraph.New(
		authorgraph.WithGraph(a.graph),
		authorgraph.WithSources(a.sources),
		authorgraph.WithConcurrency(a.config.Concurrency),
		authorgraph.WithCacheCapacity(a.config.CacheCapacity),
		authorgraph.WithRateLimit(a.config.RateLimit, a.config.RateBurst),
		authorgraph.WithDryRun(a.config.DryRun),
		authorgraph.WithLogger(a.logger),
	)
	if err != nil {
		return nil, errors.WrapResource("create", "engine", "", err)
	}
	a.engine = eng
	return eng, nil
}

// Sources returns the configured author sources.
func (a *App) Sources() (*sources.Sources, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.loadLocked(); err != nil {
		return nil, err
	}
	return a.sources, nil
}

// loadLocked reads the graph snapshot and builds the sources. Caller holds mu.
func (a *App) loadLocked() error {
	if a.graph == nil {
		path, err := a.config.GraphFile()
		if err != nil {
			return err
		}
		g, err := memgraph.Load(path)
		if err != nil {
			return errors.NewConfigError("graph", "cannot load graph snapshot", err)
		}
		a.graph = g
		a.graphPath = path
		a.saved = g.Writes()
		a.logger.Debug().Str("path", path).Int("entities", g.Len()).Msg("Loaded graph snapshot")
	}

	if a.sources == nil {
		dir, err := a.config.LocalSourcesDir()
		if err != nil {
			return err
		}
		kinds := make([]sources.ID, 0, len(a.config.Sources))
		for _, k := range a.config.Sources {
			kinds = append(kinds, sources.ID(k))
		}
		deps := registry.Deps{
			Client:     a.graph,
			Vocabulary: graph.DefaultVocabulary(),
			Dir:        dir,
		}
		srcs, err := registry.Build(deps, a.config.SourceCacheTTL, kinds...)
		if err != nil {
			return err
		}
		a.sources = srcs
	}
	return nil
}

// Persist saves the graph snapshot when writes were applied since the last
// save. It does nothing in dry-run mode.
func (a *App) Persist() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.config.DryRun || a.graph == nil || a.graphPath == "" {
		return nil
	}
	writes := a.graph.Writes()
	if writes == a.saved {
		return nil
	}
	if err := a.graph.Save(a.graphPath); err != nil {
		return err
	}
	a.logger.Info().
		Str("path", a.graphPath).
		Int("writes", writes-a.saved).
		Msg("Saved graph snapshot")
	a.saved = writes
	return nil
}

// Shutdown performs graceful shutdown of the application, keeping any
// writes that completed before an interrupt.
func (a *App) Shutdown(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- a.Persist() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return errors.WrapResource("shutdown", "graph", a.graphPath, ctx.Err())
	}
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration. Flags given on the command line
// still override it.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if err := config.Validate(); err != nil {
			return err
		}
		setDefaults(a.viper, config)
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithGraph sets an already loaded graph. path is where Persist saves it;
// an empty path disables saving.
func WithGraph(g *memgraph.Graph, path string) Option {
	return func(a *App) error {
		a.graph = g
		a.graphPath = path
		a.saved = g.Writes()
		return nil
	}
}

// WithOutput redirects command output.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}
