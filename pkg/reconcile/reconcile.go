// Package reconcile merges author lists from several sources and rewrites a
// publication's authorship claims against the merged list.
package reconcile

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/agentstation/authorgraph/pkg/authors"
	"github.com/agentstation/authorgraph/pkg/errors"
	"github.com/agentstation/authorgraph/pkg/graph"
	"github.com/agentstation/authorgraph/pkg/logging"
	"github.com/agentstation/authorgraph/pkg/match"
)

// Reconciler rewrites authorship claims on a publication snapshot.
type Reconciler interface {
	// Reconcile mutates publication in place so its authorship claims agree
	// with canonical, and reports what changed.
	Reconcile(ctx context.Context, publication *graph.Entity, canonical []authors.Record) Changes
}

// ClaimFilter selects which existing authorship claims take part in a pass.
type ClaimFilter func(existing authors.Record) bool

// Changes counts the claim edits made by one pass.
type Changes struct {
	Added     int
	Updated   int
	Removed   int
	Ambiguous int
}

// Any reports whether the pass edited anything.
func (c Changes) Any() bool {
	return c.Added+c.Updated+c.Removed > 0
}

type reconciler struct {
	logger *zerolog.Logger
	filter ClaimFilter
}

// Option configures a Reconciler
type Option func(*reconciler) error

// New creates a new Reconciler with options
func New(opts ...Option) (Reconciler, error) {
	r := &reconciler{}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// WithLogger sets the logger used instead of the context logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(r *reconciler) error {
		if logger == nil {
			return errors.NewValidationError("logger", nil, "cannot be nil")
		}
		r.logger = logger
		return nil
	}
}

// WithClaimFilter restricts the per-claim pass to claims accepted by filter.
// Claims rejected by the filter are left untouched.
func WithClaimFilter(filter ClaimFilter) Option {
	return func(r *reconciler) error {
		if filter == nil {
			return errors.NewValidationError("filter", nil, "cannot be nil")
		}
		r.filter = filter
		return nil
	}
}

func (r *reconciler) log(ctx context.Context) *zerolog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return logging.FromContext(ctx)
}

// slot is one existing authorship claim during a pass.
type slot struct {
	claim   graph.Claim
	record  authors.Record
	parsed  bool
	removed bool
}

// Reconcile implements Reconciler.
func (r *reconciler) Reconcile(ctx context.Context, pub *graph.Entity, canonical []authors.Record) Changes {
	var slots []*slot
	for _, prop := range []string{graph.PropertyAuthor, graph.PropertyAuthorName} {
		for _, c := range pub.ClaimsFor(prop) {
			rec, ok := authors.FromClaim(c)
			slots = append(slots, &slot{claim: c, record: rec, parsed: ok})
		}
	}

	if len(slots) == 0 {
		return synthesize(pub, canonical)
	}

	log := r.log(ctx)
	var changes Changes
	for i, s := range slots {
		if !s.parsed || (r.filter != nil && !r.filter(s.record)) {
			continue
		}

		m, ok := match.FindBestMatch(s.record, canonical)
		if !ok {
			if ties := match.Ties(s.record, canonical); ties != nil {
				changes.Ambiguous++
				err := errors.NewAmbiguousMatchError(s.record.Display(), scored(ties, canonical))
				log.Warn().Err(err).Str("claim", s.claim.ID).Msg("Ambiguous authorship claim left untouched")
			}
			continue
		}
		candidate := canonical[m.Index]

		if candidate.NodeID != "" &&
			nodeOnOtherClaim(slots, i, candidate.NodeID) &&
			s.record.ListPosition == candidate.ListPosition {
			s.removed = true
			changes.Removed++
			log.Debug().Str("claim", s.claim.ID).Str("node", candidate.NodeID).Msg("Removing duplicate authorship claim")
			continue
		}

		if candidate.NodeID == "" {
			continue
		}

		fresh := resynthesize(s.claim, candidate)
		if !fresh.Equal(s.claim) {
			if fresh.Property == s.claim.Property {
				changes.Updated++
			} else {
				changes.Added++
				changes.Removed++
			}
			log.Debug().
				Str("claim", s.claim.ID).
				Str("from", s.claim.Value.Text()).
				Str("to", fresh.Value.Text()).
				Int("score", m.Score).
				Msg("Resynthesized authorship claim")
		}
		s.claim = fresh
		s.record, _ = authors.FromClaim(fresh)
	}

	rebuild(pub, slots)
	return changes
}

// synthesize writes one claim per canonical author in order. Authors
// without a list position get their 1-based ordinal.
func synthesize(pub *graph.Entity, canonical []authors.Record) Changes {
	var changes Changes
	for i, rec := range canonical {
		rec = rec.Clone()
		if rec.ListPosition == "" {
			rec.ListPosition = strconv.Itoa(i + 1)
		}
		if c, ok := rec.Claim(); ok {
			pub.AddClaim(c)
			changes.Added++
		}
	}
	return changes
}

// resynthesize builds the claim for candidate on top of old. Qualifiers keep
// the order old stores them in: a property the fresh claim sets is rewritten
// where it first appears, and properties old lacks are appended. References
// carry over, and the claim id survives when the property is unchanged.
func resynthesize(old graph.Claim, candidate authors.Record) graph.Claim {
	fresh, _ := candidate.Claim()
	qualifiers := make([]graph.Snak, 0, len(old.Qualifiers)+len(fresh.Qualifiers))
	written := map[string]bool{}
	emit := func(property string) {
		written[property] = true
		for _, q := range fresh.Qualifiers {
			if q.Property == property {
				qualifiers = append(qualifiers, q)
			}
		}
	}
	for _, q := range old.Qualifiers {
		switch {
		case !fresh.HasQualifier(q.Property):
			qualifiers = append(qualifiers, q)
		case !written[q.Property]:
			emit(q.Property)
		}
	}
	for _, q := range fresh.Qualifiers {
		if !written[q.Property] {
			emit(q.Property)
		}
	}
	fresh.Qualifiers = qualifiers
	fresh.References = old.Clone().References
	if fresh.Property == old.Property {
		fresh.ID = old.ID
	}
	return fresh
}

func nodeOnOtherClaim(slots []*slot, self int, node string) bool {
	for j, other := range slots {
		if j != self && !other.removed && other.parsed && other.record.NodeID == node {
			return true
		}
	}
	return false
}

// rebuild writes the surviving claims back, grouped by their current property.
func rebuild(pub *graph.Entity, slots []*slot) {
	grouped := map[string][]graph.Claim{}
	for _, s := range slots {
		if s.removed {
			continue
		}
		grouped[s.claim.Property] = append(grouped[s.claim.Property], s.claim)
	}
	pub.SetClaims(graph.PropertyAuthor, grouped[graph.PropertyAuthor])
	pub.SetClaims(graph.PropertyAuthorName, grouped[graph.PropertyAuthorName])
}

func scored(ties []match.Match, canonical []authors.Record) []errors.ScoredCandidate {
	out := make([]errors.ScoredCandidate, 0, len(ties))
	for _, t := range ties {
		c := canonical[t.Index]
		id := c.NodeID
		if id == "" {
			id = "#" + strconv.Itoa(t.Index+1)
		}
		out = append(out, errors.ScoredCandidate{ID: id, Label: c.Name, Score: t.Score})
	}
	return out
}
