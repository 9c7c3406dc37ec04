// Package appcontext provides the application context interface shared by
// every command, so command packages depend on a contract instead of the
// concrete App.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/authorgraph"
	"github.com/agentstation/authorgraph/pkg/sources"
)

// Interface defines what commands need from the application.
type Interface interface {
	// Engine returns the reconciliation engine, creating it lazily.
	// It fails with a configuration error when the graph snapshot is missing.
	Engine() (authorgraph.Engine, error)

	// Sources returns the configured author sources.
	Sources() (*sources.Sources, error)

	// Persist saves graph writes made since the last call.
	// It does nothing in dry-run mode.
	Persist() error

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format.
	OutputFormat() string

	// DryRun reports whether writes are suppressed.
	DryRun() bool

	// Concurrency returns the task limit for batch commands.
	Concurrency() int

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
