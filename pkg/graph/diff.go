package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates an item was added.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates an item was updated.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates an item was removed.
	ChangeTypeRemove ChangeType = "remove"
)

// FieldChange represents a change to a label or alias list.
type FieldChange struct {
	Path     string     // e.g. "labels.en", "aliases.de"
	OldValue string     // Previous value (string representation)
	NewValue string     // New value (string representation)
	Type     ChangeType // Type of change
}

// ClaimUpdate pairs the stored and desired versions of one claim.
type ClaimUpdate struct {
	Existing Claim
	New      Claim
}

// Diff is the set of edits transforming one entity snapshot into another.
type Diff struct {
	EntityID string
	Added    []Claim
	Updated  []ClaimUpdate
	Removed  []Claim
	Fields   []FieldChange
}

// ComputeDiff compares two snapshots of the same entity. Claims are paired
// by ID; a claim without an ID in modified is an addition.
func ComputeDiff(original, modified *Entity) *Diff {
	d := &Diff{}
	if modified != nil {
		d.EntityID = modified.ID
	}
	if original == nil {
		original = NewEntity(d.EntityID)
	}
	if modified == nil {
		modified = NewEntity(original.ID)
	}
	if d.EntityID == "" {
		d.EntityID = original.ID
	}

	existing := make(map[string]Claim)
	for _, prop := range original.Properties() {
		for _, c := range original.Claims[prop] {
			if c.ID != "" {
				existing[c.ID] = c
			}
		}
	}

	seen := make(map[string]bool)
	for _, prop := range modified.Properties() {
		for _, c := range modified.Claims[prop] {
			old, ok := existing[c.ID]
			switch {
			case c.ID == "" || !ok:
				d.Added = append(d.Added, c)
			case !old.Equal(c):
				d.Updated = append(d.Updated, ClaimUpdate{Existing: old, New: c})
			}
			if c.ID != "" {
				seen[c.ID] = true
			}
		}
	}

	for _, prop := range original.Properties() {
		for _, c := range original.Claims[prop] {
			if c.ID != "" && !seen[c.ID] {
				d.Removed = append(d.Removed, c)
			}
		}
	}

	d.Fields = append(d.Fields, diffStrings("labels", original.Labels, modified.Labels)...)
	d.Fields = append(d.Fields, diffAliases(original.Aliases, modified.Aliases)...)
	return d
}

func diffStrings(prefix string, before, after map[string]string) []FieldChange {
	var changes []FieldChange
	keys := slices.Sorted(maps.Keys(mergeKeys(before, after)))
	for _, k := range keys {
		o, hadOld := before[k]
		n, hasNew := after[k]
		path := prefix + "." + k
		switch {
		case !hadOld && hasNew:
			changes = append(changes, FieldChange{Path: path, NewValue: n, Type: ChangeTypeAdd})
		case hadOld && !hasNew:
			changes = append(changes, FieldChange{Path: path, OldValue: o, Type: ChangeTypeRemove})
		case o != n:
			changes = append(changes, FieldChange{Path: path, OldValue: o, NewValue: n, Type: ChangeTypeUpdate})
		}
	}
	return changes
}

func diffAliases(before, after map[string][]string) []FieldChange {
	join := func(m map[string][]string) map[string]string {
		out := make(map[string]string, len(m))
		for k, v := range m {
			if len(v) > 0 {
				out[k] = strings.Join(v, "|")
			}
		}
		return out
	}
	return diffStrings("aliases", join(before), join(after))
}

func mergeKeys(a, b map[string]string) map[string]struct{} {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	return keys
}

// IsEmpty reports whether the diff contains no edits.
func (d *Diff) IsEmpty() bool {
	return d == nil || (len(d.Added) == 0 && len(d.Updated) == 0 && len(d.Removed) == 0 && len(d.Fields) == 0)
}

// HasChanges is the inverse of IsEmpty.
func (d *Diff) HasChanges() bool {
	return !d.IsEmpty()
}

// Summary returns a one-line description of the diff.
func (d *Diff) Summary() string {
	if d.IsEmpty() {
		return "no changes"
	}
	var parts []string
	if n := len(d.Added); n > 0 {
		parts = append(parts, fmt.Sprintf("%d claims added", n))
	}
	if n := len(d.Updated); n > 0 {
		parts = append(parts, fmt.Sprintf("%d claims updated", n))
	}
	if n := len(d.Removed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d claims removed", n))
	}
	if n := len(d.Fields); n > 0 {
		parts = append(parts, fmt.Sprintf("%d label/alias changes", n))
	}
	return strings.Join(parts, ", ")
}
