// Package publication implements the publication command, which reconciles
// the author claims of individual publications against every source.
package publication

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/authorgraph"
	"github.com/agentstation/authorgraph/internal/cmd/output"
	"github.com/agentstation/authorgraph/pkg/constants"
	"github.com/agentstation/authorgraph/pkg/idcache"
	"github.com/agentstation/authorgraph/pkg/reconcile"
	"github.com/agentstation/authorgraph/pkg/worker"
)

// AppContext defines the interface that the publication command needs from the app.
type AppContext interface {
	Engine() (authorgraph.Engine, error)
	Persist() error
	Logger() *zerolog.Logger
	OutputFormat() string
	DryRun() bool
	Concurrency() int
}

// Flags are the publication command options.
type Flags struct {
	// Known maps identifier properties to values, e.g. P356=10.1000/xyz.
	Known     map[string]string
	ShowStats bool
}

// NewCommand creates the publication command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "publication <id>...",
		Aliases: []string{"pub"},
		GroupID: "core",
		Short:   "Reconcile the author claims of publications",
		Long: `Publication merges the author lists every source reports for a
publication, resolves each author to a graph node, and edits the
publication so its author claims match the merged list.

Known identifiers given with --id are used to find the publication in
sources before its own identifiers are read.`,
		Example: `  authorgraph publication Q10                        # Reconcile one publication
  authorgraph publication Q10 Q11 Q12 --dry-run      # Several at once, no writes
  authorgraph publication Q10 --id P356=10.1000/xyz  # Seed a known DOI`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, args, flags)
		},
	}

	cmd.Flags().StringToStringVar(&flags.Known, "id", nil, "known identifier as PROPERTY=VALUE (repeatable)")
	cmd.Flags().BoolVar(&flags.ShowStats, "stats", false, "include identifier cache statistics")

	return cmd
}

func run(cmd *cobra.Command, app AppContext, ids []string, flags *Flags) error {
	engine, err := app.Engine()
	if err != nil {
		return err
	}

	report := reconcile.NewReport()
	engine.OnOutcome(func(o reconcile.Outcome) {
		if o.Unit == reconcile.UnitAuthor {
			report.Add(o)
		}
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
	defer cancel()

	tasks := make([]worker.Task[reconcile.Outcome], 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, worker.Task[reconcile.Outcome]{
			Key: id,
			Run: func(ctx context.Context) (reconcile.Outcome, error) {
				ctx, cancel := context.WithTimeout(ctx, constants.PublicationTimeout)
				defer cancel()
				return engine.ReconcilePublication(ctx, id, flags.Known)
			},
		})
	}

	app.Logger().Info().Int("publications", len(ids)).Bool("dry_run", app.DryRun()).Msg("Reconciling publications")
	results, runErr := worker.Run(ctx, app.Concurrency(), tasks)
	for _, r := range results {
		if r.Err != nil {
			report.Add(reconcile.Skipped(reconcile.UnitPublication, r.Key, r.Err))
			continue
		}
		report.Add(r.Value)
	}
	report.Finish()

	if err := app.Persist(); err != nil {
		return err
	}

	var stats *idcache.Stats
	if flags.ShowStats {
		s := engine.CacheStats()
		stats = &s
	}
	view := output.NewReportView(report, stats, app.DryRun())
	if err := output.FormatReport(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), view); err != nil {
		return err
	}
	return runErr
}
