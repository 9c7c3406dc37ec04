package reconcile

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/agentstation/authorgraph/pkg/errors"
)

// Kind is the user-visible result of processing one unit.
type Kind string

const (
	// KindCreated means a new node was created.
	KindCreated Kind = "created"
	// KindUpdated means an existing node was edited.
	KindUpdated Kind = "updated"
	// KindNoChange means the reconciler made no net change.
	KindNoChange Kind = "no_change"
	// KindSkipped means the unit was abandoned; Reason says why.
	KindSkipped Kind = "skipped"
)

// Unit types.
const (
	UnitPublication = "publication"
	UnitAuthor      = "author"
)

// Outcome reports what happened to one unit of work.
type Outcome struct {
	Unit   string `json:"unit" yaml:"unit"`
	ID     string `json:"id" yaml:"id"`
	Kind   Kind   `json:"kind" yaml:"kind"`
	NodeID string `json:"node_id,omitempty" yaml:"node_id,omitempty"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Diff   string `json:"diff,omitempty" yaml:"diff,omitempty"`
	Err    error  `json:"-" yaml:"-"`
}

// Created reports a newly created node.
func Created(unit, id, nodeID string) Outcome {
	return Outcome{Unit: unit, ID: id, Kind: KindCreated, NodeID: nodeID}
}

// Updated reports an edited node with its diff summary.
func Updated(unit, id, nodeID, diff string) Outcome {
	return Outcome{Unit: unit, ID: id, Kind: KindUpdated, NodeID: nodeID, Diff: diff}
}

// NoChange reports a unit that needed no edit.
func NoChange(unit, id, nodeID string) Outcome {
	return Outcome{Unit: unit, ID: id, Kind: KindNoChange, NodeID: nodeID, Reason: errors.ErrEmptyDiff.Error()}
}

// Skipped reports an abandoned unit. The reason is derived from err.
func Skipped(unit, id string, err error) Outcome {
	return Outcome{Unit: unit, ID: id, Kind: KindSkipped, Reason: reason(err), Err: err}
}

// SkippedWithReason reports an abandoned unit without an underlying error.
func SkippedWithReason(unit, id, why string) Outcome {
	return Outcome{Unit: unit, ID: id, Kind: KindSkipped, Reason: why}
}

func reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.IsAmbiguous(err):
		return "ambiguous: " + err.Error()
	case errors.IsUnresolvable(err):
		return "unresolvable: " + err.Error()
	case errors.IsNetwork(err):
		return "network: " + err.Error()
	case errors.IsNotFound(err):
		return "not found: " + err.Error()
	default:
		return err.Error()
	}
}

// String renders the outcome on one line.
func (o Outcome) String() string {
	switch o.Kind {
	case KindSkipped:
		return fmt.Sprintf("%s %s: skipped (%s)", o.Unit, o.ID, o.Reason)
	case KindUpdated:
		return fmt.Sprintf("%s %s: updated %s (%s)", o.Unit, o.ID, o.NodeID, o.Diff)
	default:
		return fmt.Sprintf("%s %s: %s %s", o.Unit, o.ID, o.Kind, o.NodeID)
	}
}

// Report collects outcomes from concurrent tasks.
type Report struct {
	mu       sync.Mutex
	outcomes []Outcome
	started  time.Time
	finished time.Time
}

// NewReport starts a report.
func NewReport() *Report {
	return &Report{started: time.Now()}
}

// Add records outcomes. Safe for concurrent use.
func (r *Report) Add(outcomes ...Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcomes...)
}

// Finish stamps the end time.
func (r *Report) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = time.Now()
}

// Duration returns the elapsed time between start and finish.
func (r *Report) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished.IsZero() {
		return time.Since(r.started)
	}
	return r.finished.Sub(r.started)
}

// Outcomes returns the outcomes sorted by unit, id and kind.
func (r *Report) Outcomes() []Outcome {
	r.mu.Lock()
	out := slices.Clone(r.outcomes)
	r.mu.Unlock()

	slices.SortStableFunc(out, func(a, b Outcome) int {
		return cmp.Or(
			cmp.Compare(a.Unit, b.Unit),
			cmp.Compare(a.ID, b.ID),
			cmp.Compare(a.Kind, b.Kind),
		)
	})
	return out
}

// Counts returns the number of outcomes per kind.
func (r *Report) Counts() map[Kind]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[Kind]int)
	for _, o := range r.outcomes {
		counts[o.Kind]++
	}
	return counts
}

// Summary returns a human-readable summary of the report.
func (r *Report) Summary() string {
	counts := r.Counts()
	parts := make([]string, 0, 4)
	for _, k := range []Kind{KindCreated, KindUpdated, KindNoChange, KindSkipped} {
		parts = append(parts, fmt.Sprintf("%d %s", counts[k], strings.ReplaceAll(string(k), "_", " ")))
	}
	return strings.Join(parts, ", ")
}
