// Package constants provides shared constants used throughout the authorgraph
// codebase. This includes timeouts, limits, file permissions, and the default
// values of configuration keys.
package constants

import "time"

// Timeout constants
const (
	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// PublicationTimeout bounds the reconciliation of a single publication
	PublicationTimeout = 2 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants
const (
	// MaxConcurrentPublications is the number of publications reconciled at once
	MaxConcurrentPublications = 5

	// IdentifierCacheCapacity is the per-property entry limit of the identifier cache
	IdentifierCacheCapacity = 10000
)

// Rate limiting constants
const (
	// DefaultRateLimit is the default graph requests per second. Zero disables limiting.
	DefaultRateLimit = 0

	// BurstSize is the token bucket burst size for rate limiting
	BurstSize = 5
)

// Cache constants
const (
	// SourceCacheTTL is how long source responses are reused
	SourceCacheTTL = 15 * time.Minute
)

// Path constants
const (
	// DefaultGraphPath is the default graph snapshot
	DefaultGraphPath = "graph.yaml"

	// DefaultSourcesPath is the default directory of local source fixtures
	DefaultSourcesPath = "sources"

	// DefaultConfigFile is the config file name looked up in the home directory
	DefaultConfigFile = ".authorgraph"
)

// Format constants
const (
	// TimeFormatHuman is a human-readable time format
	TimeFormatHuman = "Jan 2, 2006 at 3:04pm MST"
)

// EnvPrefix is the prefix of environment variables read by the CLI.
const EnvPrefix = "AUTHORGRAPH"
