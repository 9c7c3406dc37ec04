// Package authors holds the source-agnostic author record and its
// conversion to and from graph authorship claims.
package authors

import (
	"maps"
	"slices"
	"sort"
	"strings"
)

// Record is one author mention. Empty strings mean "unset".
type Record struct {
	// Name is the display or byline name captured by a source.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// AlternateNames are other observed spellings, kept sorted and unique.
	AlternateNames []string `json:"alternate_names,omitempty" yaml:"alternate_names,omitempty"`

	// ExternalIDs maps an identifier property (e.g. ORCID) to its value.
	ExternalIDs map[string]string `json:"external_ids,omitempty" yaml:"external_ids,omitempty"`

	// NodeID is the resolved graph node. When set it decides identity.
	NodeID string `json:"node_id,omitempty" yaml:"node_id,omitempty"`

	// ListPosition is the ordinal on one publication, not a personal attribute.
	ListPosition string `json:"list_position,omitempty" yaml:"list_position,omitempty"`
}

// HasSignal reports whether the record carries anything that can link it.
func (r Record) HasSignal() bool {
	return r.NodeID != "" || len(r.ExternalIDs) > 0 || r.Name != ""
}

// Resolved reports whether the record is linked to a node.
func (r Record) Resolved() bool {
	return r.NodeID != ""
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	out := r
	out.AlternateNames = slices.Clone(r.AlternateNames)
	if r.ExternalIDs != nil {
		out.ExternalIDs = maps.Clone(r.ExternalIDs)
	}
	return out
}

// Display returns the best human-readable handle for logs.
func (r Record) Display() string {
	switch {
	case r.Name != "":
		return r.Name
	case r.NodeID != "":
		return r.NodeID
	}
	if props := slices.Sorted(maps.Keys(r.ExternalIDs)); len(props) > 0 {
		return props[0] + ":" + r.ExternalIDs[props[0]]
	}
	return "(anonymous)"
}

// SetExternalID stores an identifier, ignoring blank values.
func (r *Record) SetExternalID(property, value string) {
	value = strings.TrimSpace(value)
	if property == "" || value == "" {
		return
	}
	if r.ExternalIDs == nil {
		r.ExternalIDs = make(map[string]string)
	}
	r.ExternalIDs[property] = value
}

// AddAlternateNames unions names into the alternate-name set.
func (r *Record) AddAlternateNames(names ...string) {
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			r.AlternateNames = append(r.AlternateNames, n)
		}
	}
	sort.Strings(r.AlternateNames)
	r.AlternateNames = slices.Compact(r.AlternateNames)
}

// Absorb merges other into r. Scalars are first-wins, external ids from
// other overwrite, alternate names are unioned.
func (r *Record) Absorb(other Record) {
	if r.Name == "" {
		r.Name = other.Name
	}
	if r.NodeID == "" {
		r.NodeID = other.NodeID
	}
	if r.ListPosition == "" {
		r.ListPosition = other.ListPosition
	}
	for p, v := range other.ExternalIDs {
		r.SetExternalID(p, v)
	}
	r.AddAlternateNames(other.AlternateNames...)
}

// CloneAll deep-copies a list preserving order.
func CloneAll(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
