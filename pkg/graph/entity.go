// Package graph defines the knowledge-graph data model (entities, claims,
// qualifiers, references), the diff used as the unit of write, and the
// client interfaces the reconciliation engine talks to.
package graph

import (
	"maps"
	"slices"
)

// Value is either an item reference or a string literal.
type Value struct {
	Item   string `json:"item,omitempty" yaml:"item,omitempty"`
	String string `json:"string,omitempty" yaml:"string,omitempty"`
}

// ItemValue returns a value referencing the node id.
func ItemValue(id string) Value { return Value{Item: id} }

// StringValue returns a string literal value.
func StringValue(s string) Value { return Value{String: s} }

// IsItem reports whether v references a node.
func (v Value) IsItem() bool { return v.Item != "" }

// Text returns the node id for item values and the literal otherwise.
func (v Value) Text() string {
	if v.IsItem() {
		return v.Item
	}
	return v.String
}

// Snak is a property-value pair used for qualifiers and reference parts.
type Snak struct {
	Property string `json:"property" yaml:"property"`
	Value    Value  `json:"value" yaml:"value"`
}

// Reference is provenance metadata attached to a claim.
type Reference struct {
	Snaks []Snak `json:"snaks" yaml:"snaks"`
}

// Claim is a single statement on an entity.
// ID is assigned by the graph; an empty ID marks a claim not yet written.
type Claim struct {
	ID         string      `json:"id,omitempty" yaml:"id,omitempty"`
	Property   string      `json:"property" yaml:"property"`
	Value      Value       `json:"value" yaml:"value"`
	Qualifiers []Snak      `json:"qualifiers,omitempty" yaml:"qualifiers,omitempty"`
	References []Reference `json:"references,omitempty" yaml:"references,omitempty"`
}

// NewClaim creates an unsaved claim.
func NewClaim(property string, value Value) Claim {
	return Claim{Property: property, Value: value}
}

// Qualifier returns the first qualifier value for property.
func (c Claim) Qualifier(property string) (Value, bool) {
	for _, q := range c.Qualifiers {
		if q.Property == property {
			return q.Value, true
		}
	}
	return Value{}, false
}

// HasQualifier reports whether any qualifier uses property.
func (c Claim) HasQualifier(property string) bool {
	_, ok := c.Qualifier(property)
	return ok
}

// AddQualifier appends a qualifier.
func (c *Claim) AddQualifier(property string, value Value) {
	c.Qualifiers = append(c.Qualifiers, Snak{Property: property, Value: value})
}

// Clone returns a deep copy of the claim.
func (c Claim) Clone() Claim {
	out := c
	out.Qualifiers = slices.Clone(c.Qualifiers)
	if c.References != nil {
		out.References = make([]Reference, len(c.References))
		for i, r := range c.References {
			out.References[i] = Reference{Snaks: slices.Clone(r.Snaks)}
		}
	}
	return out
}

// Equal compares claims including qualifier and reference order.
func (c Claim) Equal(other Claim) bool {
	if c.ID != other.ID || c.Property != other.Property || c.Value != other.Value {
		return false
	}
	if !slices.Equal(c.Qualifiers, other.Qualifiers) {
		return false
	}
	return slices.EqualFunc(c.References, other.References, func(a, b Reference) bool {
		return slices.Equal(a.Snaks, b.Snaks)
	})
}

// Entity is a node snapshot: labels, aliases and claims grouped by property.
type Entity struct {
	ID      string              `json:"id" yaml:"id"`
	Labels  map[string]string   `json:"labels,omitempty" yaml:"labels,omitempty"`
	Aliases map[string][]string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Claims  map[string][]Claim  `json:"claims,omitempty" yaml:"claims,omitempty"`
}

// NewEntity creates an empty entity.
func NewEntity(id string) *Entity {
	return &Entity{
		ID:      id,
		Labels:  make(map[string]string),
		Aliases: make(map[string][]string),
		Claims:  make(map[string][]Claim),
	}
}

// Clone returns a deep copy of the entity.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	out := NewEntity(e.ID)
	maps.Copy(out.Labels, e.Labels)
	for lang, aliases := range e.Aliases {
		out.Aliases[lang] = slices.Clone(aliases)
	}
	for prop, claims := range e.Claims {
		cloned := make([]Claim, len(claims))
		for i, c := range claims {
			cloned[i] = c.Clone()
		}
		out.Claims[prop] = cloned
	}
	return out
}

// Label returns the label in lang, or "".
func (e *Entity) Label(lang string) string {
	return e.Labels[lang]
}

// SetLabel sets the label in lang.
func (e *Entity) SetLabel(lang, label string) {
	if e.Labels == nil {
		e.Labels = make(map[string]string)
	}
	e.Labels[lang] = label
}

// AddAlias appends an alias in lang unless already present.
func (e *Entity) AddAlias(lang, alias string) {
	if e.Aliases == nil {
		e.Aliases = make(map[string][]string)
	}
	if !slices.Contains(e.Aliases[lang], alias) && e.Labels[lang] != alias {
		e.Aliases[lang] = append(e.Aliases[lang], alias)
	}
}

// ClaimsFor returns the claims for property.
func (e *Entity) ClaimsFor(property string) []Claim {
	return e.Claims[property]
}

// AddClaim appends a claim under its property.
func (e *Entity) AddClaim(c Claim) {
	if e.Claims == nil {
		e.Claims = make(map[string][]Claim)
	}
	e.Claims[c.Property] = append(e.Claims[c.Property], c)
}

// SetClaims replaces the claims for property, dropping the key when empty.
func (e *Entity) SetClaims(property string, claims []Claim) {
	if len(claims) == 0 {
		delete(e.Claims, property)
		return
	}
	if e.Claims == nil {
		e.Claims = make(map[string][]Claim)
	}
	e.Claims[property] = claims
}

// Properties returns the claim properties in sorted order.
func (e *Entity) Properties() []string {
	return slices.Sorted(maps.Keys(e.Claims))
}

// FirstString returns the first string or item value stored under property.
func (e *Entity) FirstString(property string) (string, bool) {
	for _, c := range e.Claims[property] {
		if text := c.Value.Text(); text != "" {
			return text, true
		}
	}
	return "", false
}

// ExternalIDs returns the first value of every listed property present on the entity.
func (e *Entity) ExternalIDs(properties []string) map[string]string {
	ids := make(map[string]string)
	for _, p := range properties {
		if v, ok := e.FirstString(p); ok {
			ids[p] = v
		}
	}
	return ids
}
