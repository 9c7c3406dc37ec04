package authorgraph

import (
	"context"
	"maps"

	"github.com/agentstation/authorgraph/pkg/authors"
	"github.com/agentstation/authorgraph/pkg/errors"
	"github.com/agentstation/authorgraph/pkg/graph"
	"github.com/agentstation/authorgraph/pkg/logging"
	"github.com/agentstation/authorgraph/pkg/reconcile"
	"github.com/agentstation/authorgraph/pkg/resolve"
	"github.com/agentstation/authorgraph/pkg/sources"
)

// ReconcilePublication merges the author lists every source holds for the
// publication, resolves the merged authors and rewrites the publication's
// authorship claims. Per-publication failures are reported as a skipped
// outcome; the error is non-nil only for configuration failures.
func (e *engine) ReconcilePublication(ctx context.Context, publicationID string, known map[string]string) (reconcile.Outcome, error) {
	ctx = logging.WithPublication(e.withLogger(ctx), publicationID)
	log := logging.FromContext(ctx)

	original, err := graph.LoadEntity(ctx, e.client, publicationID)
	if err != nil {
		return e.skip(ctx, publicationID, err)
	}

	ids := maps.Clone(known)
	if ids == nil {
		ids = make(map[string]string)
	}
	maps.Copy(ids, original.ExternalIDs(e.options.vocab.PublicationIDProperties()))
	ids = e.expandIdentifiers(ctx, ids)

	canonical, err := e.collectAuthors(ctx, original, ids)
	if err != nil {
		return reconcile.Outcome{}, err
	}

	if err := e.resolveAll(ctx, canonical); err != nil {
		return reconcile.Outcome{}, err
	}

	reconciler, err := reconcile.New()
	if err != nil {
		return reconcile.Outcome{}, err
	}
	modified := original.Clone()
	changes := reconciler.Reconcile(ctx, modified, canonical)

	diff := graph.ComputeDiff(original, modified)
	if diff.IsEmpty() {
		log.Debug().Msg("Publication already up to date")
		return e.emit(reconcile.NoChange(reconcile.UnitPublication, publicationID, publicationID)), nil
	}

	log.Info().
		Int("added", changes.Added).
		Int("updated", changes.Updated).
		Int("removed", changes.Removed).
		Int("ambiguous", changes.Ambiguous).
		Str("diff", diff.Summary()).
		Msg("Reconciled authorship claims")

	if e.options.dryRun {
		out := reconcile.Updated(reconcile.UnitPublication, publicationID, publicationID, diff.Summary())
		out.Reason = "dry run"
		return e.emit(out), nil
	}

	node, err := e.client.ApplyDiff(ctx, original, modified)
	if err != nil {
		return e.skip(ctx, publicationID, errors.WrapNetwork("apply", publicationID, err))
	}
	return e.emit(reconcile.Updated(reconcile.UnitPublication, publicationID, node, diff.Summary())), nil
}

// skip reports a per-publication failure, passing fatal errors through.
func (e *engine) skip(ctx context.Context, publicationID string, err error) (reconcile.Outcome, error) {
	if errors.IsFatal(err) {
		return reconcile.Outcome{}, err
	}
	logging.FromContext(ctx).Warn().Err(err).Msg("Skipping publication")
	return e.emit(reconcile.Skipped(reconcile.UnitPublication, publicationID, err)), nil
}

// expandIdentifiers asks every source for cross-references until no new
// identifier appears. Existing values are never overwritten.
func (e *engine) expandIdentifiers(ctx context.Context, ids map[string]string) map[string]string {
	log := logging.FromContext(ctx)
	list := e.sources.List()
	for round := 0; round <= len(list); round++ {
		grew := false
		for _, src := range list {
			found, err := src.Identifiers(ctx, maps.Clone(ids))
			if err != nil {
				log.Warn().Err(err).Str("source", src.ID().String()).Msg("Cross-reference lookup failed")
				continue
			}
			for prop, value := range found {
				if _, ok := ids[prop]; !ok && value != "" {
					ids[prop] = value
					grew = true
				}
			}
		}
		if !grew {
			break
		}
	}
	return ids
}

// collectAuthors merges the author lists of every source that knows the
// publication, in priority order. A failing source is skipped.
func (e *engine) collectAuthors(ctx context.Context, entity *graph.Entity, ids map[string]string) ([]authors.Record, error) {
	var canonical []authors.Record
	for _, src := range e.sources.List() {
		pubID, ok := src.PublicationID(entity, ids)
		if !ok {
			continue
		}
		records, err := fetchAuthors(ctx, src, pubID)
		if err != nil {
			if errors.IsFatal(err) {
				return nil, err
			}
			logging.FromContext(ctx).Warn().Err(err).
				Str("source", src.ID().String()).
				Str("source_id", pubID).
				Msg("Source failed, continuing without it")
			continue
		}
		canonical = reconcile.Merge(canonical, records)
	}
	return canonical, nil
}

func fetchAuthors(ctx context.Context, src sources.Source, pubID string) ([]authors.Record, error) {
	records, err := src.Authors(logging.WithSource(ctx, src.ID().String()), pubID)
	if err != nil {
		return nil, errors.WrapNetwork("fetch authors", src.ID().String()+":"+pubID, err)
	}
	return records, nil
}

// resolveAll links canonical authors to nodes in place. Authors that cannot
// be resolved stay as they are and end up as free-text claims.
func (e *engine) resolveAll(ctx context.Context, canonical []authors.Record) error {
	for i, rec := range canonical {
		if rec.Resolved() {
			continue
		}
		actx := logging.WithAuthor(ctx, rec.Display())
		res, err := e.resolver.Resolve(actx, rec, resolve.CoauthorIndex{})
		if err != nil {
			if errors.IsFatal(err) {
				return err
			}
			logging.FromContext(actx).Info().Err(err).Msg("Author left unresolved")
			continue
		}
		canonical[i].NodeID = res.NodeID
		if res.Method == resolve.MethodCreated {
			e.emit(reconcile.Created(reconcile.UnitAuthor, rec.Display(), res.NodeID))
		}
	}
	return nil
}
