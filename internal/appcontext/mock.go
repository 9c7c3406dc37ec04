package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/authorgraph"
	"github.com/agentstation/authorgraph/pkg/constants"
	"github.com/agentstation/authorgraph/pkg/sources"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	EngineFunc  func() (authorgraph.Engine, error)
	SourcesFunc func() (*sources.Sources, error)
	PersistFunc func() error
	LoggerFunc  func() *zerolog.Logger
	Format      string
	Dry         bool
	Limit       int

	// Persisted counts Persist calls.
	Persisted int
}

var _ Interface = (*Mock)(nil)

// Engine returns an engine using the mock function or nil.
func (m *Mock) Engine() (authorgraph.Engine, error) {
	if m.EngineFunc != nil {
		return m.EngineFunc()
	}
	return nil, nil
}

// Sources returns sources using the mock function or an empty set.
func (m *Mock) Sources() (*sources.Sources, error) {
	if m.SourcesFunc != nil {
		return m.SourcesFunc()
	}
	return sources.NewSources(), nil
}

// Persist records the call and runs the mock function.
func (m *Mock) Persist() error {
	m.Persisted++
	if m.PersistFunc != nil {
		return m.PersistFunc()
	}
	return nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns Format.
func (m *Mock) OutputFormat() string {
	return m.Format
}

// DryRun returns Dry.
func (m *Mock) DryRun() bool {
	return m.Dry
}

// Concurrency returns Limit or the default task limit.
func (m *Mock) Concurrency() int {
	if m.Limit > 0 {
		return m.Limit
	}
	return constants.MaxConcurrentPublications
}

// Version returns "dev".
func (m *Mock) Version() string { return "dev" }

// Commit returns "unknown".
func (m *Mock) Commit() string { return "unknown" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }
