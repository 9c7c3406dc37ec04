// Package author implements the author command, which links the recurring
// free-text author names on a root author's publications.
package author

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/authorgraph"
	"github.com/agentstation/authorgraph/internal/cmd/output"
	"github.com/agentstation/authorgraph/pkg/constants"
	"github.com/agentstation/authorgraph/pkg/idcache"
)

// AppContext defines the interface that the author command needs from the app.
type AppContext interface {
	Engine() (authorgraph.Engine, error)
	Persist() error
	Logger() *zerolog.Logger
	OutputFormat() string
	DryRun() bool
}

// NewCommand creates the author command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	var showStats bool

	cmd := &cobra.Command{
		Use:     "author <root-id>",
		GroupID: "core",
		Short:   "Link recurring author names on a root author's publications",
		Long: `Author finds every free-text author name that appears on at least two
publications of the root author, resolves each name to a graph node, and
replaces the free-text claims with linked author claims.

A name is linked only when it resolves without doubt: a unique co-author
with exactly that label, a single search hit confirmed by the co-author
list, or no hit at all (a new node is created). Ambiguous names are
reported as skipped.`,
		Example: `  authorgraph author Q42                 # Link names on Q42's publications
  authorgraph author Q42 --dry-run       # Show what would change
  authorgraph author Q42 -o json --stats # Machine-readable report with cache counters`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, args[0], showStats)
		},
	}

	cmd.Flags().BoolVar(&showStats, "stats", false, "include identifier cache statistics")

	return cmd
}

func run(cmd *cobra.Command, app AppContext, rootID string, showStats bool) error {
	engine, err := app.Engine()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
	defer cancel()

	app.Logger().Info().Str("root", rootID).Bool("dry_run", app.DryRun()).Msg("Processing root author")
	report, runErr := engine.ProcessRootAuthor(ctx, rootID)
	if report == nil {
		return runErr
	}

	// Writes that completed before a fatal error are kept.
	if err := app.Persist(); err != nil {
		return err
	}

	var stats *idcache.Stats
	if showStats {
		s := engine.CacheStats()
		stats = &s
	}
	view := output.NewReportView(report, stats, app.DryRun())
	if err := output.FormatReport(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), view); err != nil {
		return err
	}
	return runErr
}
