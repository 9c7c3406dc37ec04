package authorgraph

import (
	"context"
	"slices"
	"strings"

	"github.com/agentstation/authorgraph/pkg/authors"
	"github.com/agentstation/authorgraph/pkg/errors"
	"github.com/agentstation/authorgraph/pkg/graph"
	"github.com/agentstation/authorgraph/pkg/logging"
	"github.com/agentstation/authorgraph/pkg/reconcile"
	"github.com/agentstation/authorgraph/pkg/resolve"
	"github.com/agentstation/authorgraph/pkg/worker"
)

// NameGroup is a free-text author name and the publications carrying it.
type NameGroup struct {
	Name         string
	Publications []string
}

// GroupNames groups publications by trimmed author name. Names on fewer
// than two distinct publications, and names without an interior space, are
// dropped. Groups are ordered by name; publications keep first-seen order.
func GroupNames(pairs []graph.NamedPublication) []NameGroup {
	index := make(map[string]int)
	var groups []NameGroup
	for _, p := range pairs {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, NameGroup{Name: name})
		}
		if !slices.Contains(groups[i].Publications, p.PublicationID) {
			groups[i].Publications = append(groups[i].Publications, p.PublicationID)
		}
	}

	kept := slices.DeleteFunc(groups, func(g NameGroup) bool {
		return len(g.Publications) < 2 || !strings.Contains(g.Name, " ")
	})
	slices.SortFunc(kept, func(a, b NameGroup) int { return strings.Compare(a.Name, b.Name) })
	return kept
}

// ProcessRootAuthor links every recurring free-text name on the root
// author's publications to a node and rewrites those claims. Each name
// group is an independent task; a failing group is reported as skipped
// publications. The error is non-nil only for configuration failures or
// when the root author's publications cannot be listed.
func (e *engine) ProcessRootAuthor(ctx context.Context, rootID string) (*reconcile.Report, error) {
	ctx = logging.WithRoot(e.withLogger(ctx), rootID)
	log := logging.FromContext(ctx)
	report := reconcile.NewReport()

	if e.queries == nil {
		return nil, errors.NewConfigError("engine", "root author processing needs a query service", nil)
	}

	pairs, err := e.queries.PublicationNames(ctx, rootID)
	if err != nil {
		return nil, errors.WrapNetwork("list publications", rootID, err)
	}
	coauthors, err := e.queries.Coauthors(ctx, rootID)
	if err != nil {
		return nil, errors.WrapNetwork("list coauthors", rootID, err)
	}
	index := resolve.NewCoauthorIndex(coauthors)
	groups := GroupNames(pairs)

	log.Info().
		Int("names", len(pairs)).
		Int("groups", len(groups)).
		Int("coauthors", index.Len()).
		Msg("Processing root author")

	tasks := make([]worker.Task[[]reconcile.Outcome], len(groups))
	for i, g := range groups {
		tasks[i] = worker.Task[[]reconcile.Outcome]{
			Key: g.Name,
			Run: func(ctx context.Context) ([]reconcile.Outcome, error) {
				return e.processGroup(logging.WithAuthor(ctx, g.Name), g, index)
			},
		}
	}

	results, runErr := worker.Run(ctx, e.options.concurrency, tasks)
	for i, r := range results {
		if r.Err != nil {
			log.Warn().Err(r.Err).Str("author", r.Key).Msg("Name group failed")
			for _, pub := range groups[i].Publications {
				report.Add(e.emit(reconcile.Skipped(reconcile.UnitPublication, pub, r.Err)))
			}
			continue
		}
		report.Add(r.Value...)
	}
	report.Finish()

	log.Info().Str("summary", report.Summary()).Dur("duration", report.Duration()).Msg("Root author processed")
	return report, runErr
}

// processGroup resolves one name and reconciles it on each of its
// publications. Resolution failures skip every publication in the group.
func (e *engine) processGroup(ctx context.Context, g NameGroup, coauthors resolve.CoauthorIndex) ([]reconcile.Outcome, error) {
	log := logging.FromContext(ctx)

	res, err := e.resolver.ResolveName(ctx, g.Name, coauthors)
	if err == nil && res.NodeID == "" {
		err = errors.NewUnresolvableError(g.Name, "no node in dry run")
	}
	if err != nil {
		if errors.IsFatal(err) {
			return nil, err
		}
		log.Info().Err(err).Msg("Name left unresolved")
		out := make([]reconcile.Outcome, 0, len(g.Publications))
		for _, pub := range g.Publications {
			out = append(out, e.emit(reconcile.Skipped(reconcile.UnitPublication, pub, err)))
		}
		return out, nil
	}

	var out []reconcile.Outcome
	if res.Method == resolve.MethodCreated {
		out = append(out, e.emit(reconcile.Created(reconcile.UnitAuthor, g.Name, res.NodeID)))
	}
	log.Debug().Str("node", res.NodeID).Str("method", string(res.Method)).Msg("Name resolved")

	for _, pub := range g.Publications {
		o, err := e.linkName(logging.WithPublication(ctx, pub), pub, g.Name, res.NodeID)
		if err != nil {
			return out, err
		}
		out = append(out, o)
	}
	return out, nil
}

// linkName reconciles a single author on one fresh publication snapshot.
func (e *engine) linkName(ctx context.Context, pubID, name, node string) (reconcile.Outcome, error) {
	original, err := graph.LoadEntity(ctx, e.client, pubID)
	if err != nil {
		return e.skip(ctx, pubID, err)
	}

	author := authors.Record{Name: name, NodeID: node, ListPosition: listPosition(original, name)}
	reconciler, err := reconcile.New(reconcile.WithClaimFilter(func(existing authors.Record) bool {
		return strings.TrimSpace(existing.Name) == name || existing.NodeID == node
	}))
	if err != nil {
		return reconcile.Outcome{}, err
	}

	modified := original.Clone()
	reconciler.Reconcile(ctx, modified, []authors.Record{author})

	diff := graph.ComputeDiff(original, modified)
	if diff.IsEmpty() {
		return e.emit(reconcile.NoChange(reconcile.UnitPublication, pubID, pubID)), nil
	}
	if e.options.dryRun {
		out := reconcile.Updated(reconcile.UnitPublication, pubID, pubID, diff.Summary())
		out.Reason = "dry run"
		return e.emit(out), nil
	}

	id, err := e.client.ApplyDiff(ctx, original, modified)
	if err != nil {
		return e.skip(ctx, pubID, errors.WrapNetwork("apply", pubID, err))
	}
	logging.FromContext(ctx).Info().Str("node", node).Str("diff", diff.Summary()).Msg("Linked author name")
	return e.emit(reconcile.Updated(reconcile.UnitPublication, pubID, id, diff.Summary())), nil
}

// listPosition returns the list position of the only free-text claim
// carrying exactly name, or "".
func listPosition(pub *graph.Entity, name string) string {
	var found []graph.Claim
	for _, c := range pub.ClaimsFor(graph.PropertyAuthorName) {
		if strings.TrimSpace(c.Value.Text()) == name {
			found = append(found, c)
		}
	}
	if len(found) != 1 {
		return ""
	}
	v, _ := found[0].Qualifier(graph.PropertyListPosition)
	return v.Text()
}
