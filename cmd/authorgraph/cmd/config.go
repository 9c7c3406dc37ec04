package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/authorgraph/internal/cmd/output"
)

// ConfigSource supplies the effective configuration.
type ConfigSource interface {
	EffectiveConfig() any
	OutputFormat() string
}

// NewConfigCommand creates the config command, which prints the settings
// after flags, environment, .env files and the config file are merged.
func NewConfigCommand(app ConfigSource) *cobra.Command {
	return &cobra.Command{
		Use:     "config",
		GroupID: "management",
		Short:   "Show effective configuration",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format := output.DetectFormat(app.OutputFormat())
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), app.EffectiveConfig())
		},
	}
}
