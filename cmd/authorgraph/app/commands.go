package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/authorgraph/cmd/authorgraph/cmd"
	"github.com/agentstation/authorgraph/cmd/authorgraph/cmd/author"
	"github.com/agentstation/authorgraph/cmd/authorgraph/cmd/publication"
	"github.com/agentstation/authorgraph/cmd/authorgraph/cmd/sources"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(author.NewCommand(a))
	rootCmd.AddCommand(publication.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(sources.NewCommand(a))
	rootCmd.AddCommand(cmd.NewConfigCommand(a))

	// Utility commands
	rootCmd.AddCommand(cmd.NewVersionCommand(a))
	rootCmd.AddCommand(cmd.NewManCommand())
	rootCmd.AddCommand(cmd.NewCompletionCommand())
}
