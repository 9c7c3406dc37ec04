package authors

import (
	"github.com/agentstation/authorgraph/pkg/graph"
)

// Claim synthesizes the authorship claim for the record. Resolved records
// become an item claim qualified by list position and named-as; others
// become a free-text claim qualified by list position. Records with neither
// a node nor a name produce no claim.
func (r Record) Claim() (graph.Claim, bool) {
	var c graph.Claim
	switch {
	case r.NodeID != "":
		c = graph.NewClaim(graph.PropertyAuthor, graph.ItemValue(r.NodeID))
		if r.ListPosition != "" {
			c.AddQualifier(graph.PropertyListPosition, graph.StringValue(r.ListPosition))
		}
		if r.Name != "" {
			c.AddQualifier(graph.PropertyNamedAs, graph.StringValue(r.Name))
		}
	case r.Name != "":
		c = graph.NewClaim(graph.PropertyAuthorName, graph.StringValue(r.Name))
		if r.ListPosition != "" {
			c.AddQualifier(graph.PropertyListPosition, graph.StringValue(r.ListPosition))
		}
	default:
		return graph.Claim{}, false
	}
	return c, true
}

// FromClaim parses an authorship claim back into a record. Claims of any
// other property, or with a value of the wrong kind, are ignored.
func FromClaim(c graph.Claim) (Record, bool) {
	var r Record
	switch c.Property {
	case graph.PropertyAuthor:
		if !c.Value.IsItem() {
			return Record{}, false
		}
		r.NodeID = c.Value.Item
		if v, ok := c.Qualifier(graph.PropertyNamedAs); ok {
			r.Name = v.String
		}
	case graph.PropertyAuthorName:
		if c.Value.IsItem() || c.Value.String == "" {
			return Record{}, false
		}
		r.Name = c.Value.String
	default:
		return Record{}, false
	}
	if v, ok := c.Qualifier(graph.PropertyListPosition); ok {
		r.ListPosition = v.String
	}
	return r, true
}

// IsAuthorship reports whether property is one of the two authorship kinds.
func IsAuthorship(property string) bool {
	return property == graph.PropertyAuthor || property == graph.PropertyAuthorName
}

// FromEntity parses every authorship claim on a publication, item claims first.
func FromEntity(e *graph.Entity) []Record {
	var out []Record
	for _, prop := range []string{graph.PropertyAuthor, graph.PropertyAuthorName} {
		for _, c := range e.ClaimsFor(prop) {
			if r, ok := FromClaim(c); ok {
				out = append(out, r)
			}
		}
	}
	return out
}
