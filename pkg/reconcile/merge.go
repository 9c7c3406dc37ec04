package reconcile

import (
	"github.com/agentstation/authorgraph/pkg/authors"
	"github.com/agentstation/authorgraph/pkg/match"
)

// Merge folds the author list from one source into the canonical list.
// An empty canonical list becomes a copy of from. Otherwise each record is
// absorbed into its best match, or appended when there is none or the best
// score is tied.
//
// Records copied into the canonical list get their alternate names sorted
// and deduplicated, whichever source they come from.
func Merge(into, from []authors.Record) []authors.Record {
	if len(into) == 0 {
		out := authors.CloneAll(from)
		for i := range out {
			out[i] = normalized(out[i])
		}
		return out
	}
	for _, r := range from {
		if m, ok := match.FindBestMatch(r, into); ok {
			into[m.Index].Absorb(r)
			continue
		}
		into = append(into, normalized(r))
	}
	return into
}

func normalized(r authors.Record) authors.Record {
	out := r.Clone()
	out.AlternateNames = nil
	out.AddAlternateNames(r.AlternateNames...)
	return out
}
