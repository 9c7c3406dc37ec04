// Package logging provides structured logging for the authorgraph system using zerolog.
// Console output is used when stderr is a terminal, JSON otherwise.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Str("publication", "Q42").Msg("Reconciling author claims")
//
//	// Carry a logger through a reconciliation task
//	ctx := logging.WithPublication(ctx, "Q42")
//	logging.FromContext(ctx).Debug().Msg("Loaded snapshot")
package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/authorgraph/pkg/constants"
)

// Environment keys consulted when building the process-wide logger.
var (
	envLevel  = constants.EnvPrefix + "_LOG_LEVEL"
	envFormat = constants.EnvPrefix + "_LOG_FORMAT"
	envOutput = constants.EnvPrefix + "_LOG_OUTPUT"
)

var defaultLogger = NewLoggerFromConfig(ConfigFromEnv())

// ConfigFromEnv returns DefaultConfig overridden by the AUTHORGRAPH_LOG_*
// environment variables. Library callers that never build their own logger
// get this one.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv(envLevel); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv(envFormat); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv(envOutput); v != "" {
		cfg.Output = v
	}
	cfg.AddCaller = parseLevel(cfg.Level) <= zerolog.DebugLevel
	return cfg
}

// Default returns the process-wide logger used when a context carries none.
func Default() *zerolog.Logger {
	return &defaultLogger
}
