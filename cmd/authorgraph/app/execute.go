package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/authorgraph/internal/cmd/output"
)

// Execute runs the authorgraph CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "authorgraph",
		Short:   "Author identity reconciliation for a knowledge graph",
		Version: a.version,
		Long: `Authorgraph links the author claims of scholarly publications in a
knowledge graph to author nodes.

It merges the author lists reported by several sources, resolves each
author to an existing node by external identifier or unambiguous name,
creates nodes for authors nobody has recorded yet, and rewrites free-text
author claims as linked ones while keeping their qualifiers and references.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	cfg := a.config
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.authorgraph.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", "", "output format: table, wide, json, yaml, markdown")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.StringP("graph", "g", cfg.GraphPath, "graph snapshot file")
	flags.String("sources-dir", cfg.SourcesDir, "directory of local source files")
	flags.StringSlice("sources", cfg.Sources, "source kinds to enable (default all)")
	flags.IntP("concurrency", "c", cfg.Concurrency, "maximum concurrent tasks")
	flags.Int("cache-capacity", cfg.CacheCapacity, "identifier cache entries per property")
	flags.Float64("rate-limit", cfg.RateLimit, "graph requests per second (0 disables)")
	flags.Int("rate-burst", cfg.RateBurst, "graph request burst size")
	flags.Duration("source-cache-ttl", cfg.SourceCacheTTL, "how long source responses are reused (0 disables)")
	flags.BoolP("dry-run", "n", cfg.DryRun, "compute changes without writing them")

	if a.out != nil {
		rootCmd.SetOut(a.out)
	}
	rootCmd.SetVersionTemplate("authorgraph {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs. Flags are layered over
// the environment, config file and defaults, and the logger is rebuilt.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	root := cmd.Root()
	if err := bindFlags(a.viper, root.PersistentFlags()); err != nil {
		return err
	}

	config, err := readConfig(a.viper, mustGetString(root, "config"))
	if err != nil {
		return err
	}
	if _, err := output.ParseFormat(config.Format); err != nil {
		return err
	}
	a.config = config

	logger := NewLogger(config)
	a.logger = &logger

	return nil
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetString retrieves a persistent string flag or panics if the flag
// doesn't exist. This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.PersistentFlags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
