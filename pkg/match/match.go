// Package match scores pairs of author records and picks the single best
// candidate from a list. Ties at the top score are never broken.
package match

import (
	"sort"

	"github.com/agentstation/authorgraph/pkg/authors"
)

// Score weights.
const (
	NodeScore          = 100
	ExternalIDWeight   = 90
	NameTokenWeight    = 50
	ListPositionWeight = 30
)

// Score rates how likely a and b denote the same person. When both carry a
// node the node decides alone. The name component grows with the number of
// shared tokens and is not capped.
func Score(a, b authors.Record) int {
	if a.NodeID != "" && b.NodeID != "" {
		if a.NodeID == b.NodeID {
			return NodeScore
		}
		return 0
	}

	score := 0
	for prop, v := range a.ExternalIDs {
		if other, ok := b.ExternalIDs[prop]; ok && other == v {
			score += ExternalIDWeight
		}
	}
	if a.Name != "" && b.Name != "" {
		score += AuthorNamesMatch(a.Name, b.Name) * NameTokenWeight
	}
	if a.ListPosition != "" && a.ListPosition == b.ListPosition {
		score += ListPositionWeight
	}
	return score
}

// Match is a scored candidate.
type Match struct {
	Index int
	Score int
}

// Rank scores every candidate, highest first, ties in input order.
func Rank(r authors.Record, candidates []authors.Record) []Match {
	out := make([]Match, len(candidates))
	for i, c := range candidates {
		out[i] = Match{Index: i, Score: Score(r, c)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// FindBestMatch returns the candidate with the unique highest positive
// score. A zero maximum or a tie at the maximum is no match.
func FindBestMatch(r authors.Record, candidates []authors.Record) (Match, bool) {
	best := Match{Index: -1}
	tied := false
	for i, c := range candidates {
		s := Score(r, c)
		switch {
		case s > best.Score:
			best = Match{Index: i, Score: s}
			tied = false
		case s == best.Score && s > 0:
			tied = true
		}
	}
	if best.Score <= 0 || tied {
		return Match{Index: -1}, false
	}
	return best, true
}

// Ties returns the candidates sharing the top positive score when more
// than one does, nil otherwise.
func Ties(r authors.Record, candidates []authors.Record) []Match {
	ranked := Rank(r, candidates)
	if len(ranked) < 2 || ranked[0].Score <= 0 || ranked[1].Score != ranked[0].Score {
		return nil
	}
	n := 1
	for n < len(ranked) && ranked[n].Score == ranked[0].Score {
		n++
	}
	return ranked[:n]
}
