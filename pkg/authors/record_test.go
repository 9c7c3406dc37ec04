package authors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/authorgraph/pkg/authors"
	"github.com/agentstation/authorgraph/pkg/graph"
)

func TestAbsorb(t *testing.T) {
	target := authors.Record{
		Name:           "Jane Doe",
		AlternateNames: []string{"J. Doe"},
		ExternalIDs:    map[string]string{"P496": "old", "P214": "viaf"},
	}
	target.Absorb(authors.Record{
		Name:           "Jane Q. Doe",
		NodeID:         "Q7",
		ListPosition:   "3",
		AlternateNames: []string{"Doe, Jane", "J. Doe"},
		ExternalIDs:    map[string]string{"P496": "new"},
	})

	assert.Equal(t, "Jane Doe", target.Name, "first source wins for name")
	assert.Equal(t, "Q7", target.NodeID, "unset node is filled")
	assert.Equal(t, "3", target.ListPosition)
	assert.Equal(t, map[string]string{"P496": "new", "P214": "viaf"}, target.ExternalIDs)
	assert.Equal(t, []string{"Doe, Jane", "J. Doe"}, target.AlternateNames)

	target.Absorb(authors.Record{NodeID: "Q8", ListPosition: "4"})
	assert.Equal(t, "Q7", target.NodeID)
	assert.Equal(t, "3", target.ListPosition)
}

func TestCloneIsDeep(t *testing.T) {
	r := authors.Record{AlternateNames: []string{"a"}, ExternalIDs: map[string]string{"P496": "x"}}
	c := r.Clone()
	c.AlternateNames[0] = "b"
	c.ExternalIDs["P496"] = "y"
	assert.Equal(t, "a", r.AlternateNames[0])
	assert.Equal(t, "x", r.ExternalIDs["P496"])

	assert.Nil(t, authors.CloneAll(nil))
}

func TestHasSignalAndDisplay(t *testing.T) {
	assert.False(t, authors.Record{ListPosition: "1"}.HasSignal())
	assert.True(t, authors.Record{ExternalIDs: map[string]string{"P496": "x"}}.HasSignal())
	assert.Equal(t, "P496:x", authors.Record{ExternalIDs: map[string]string{"P496": "x"}}.Display())
	assert.Equal(t, "Q1", authors.Record{NodeID: "Q1"}.Display())
	assert.Equal(t, "(anonymous)", authors.Record{}.Display())
}

func TestClaimRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		record   authors.Record
		property string
	}{
		{"resolved", authors.Record{NodeID: "Q123", Name: "A. Smith", ListPosition: "2"}, graph.PropertyAuthor},
		{"resolved without name", authors.Record{NodeID: "Q123"}, graph.PropertyAuthor},
		{"free text", authors.Record{Name: "A. Smith", ListPosition: "1"}, graph.PropertyAuthorName},
		{"free text without position", authors.Record{Name: "Bob"}, graph.PropertyAuthorName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := tt.record.Claim()
			require.True(t, ok)
			assert.Equal(t, tt.property, c.Property)

			back, ok := authors.FromClaim(c)
			require.True(t, ok)
			assert.Equal(t, tt.record, back)
		})
	}
}

func TestClaimQualifierOrder(t *testing.T) {
	c, ok := authors.Record{NodeID: "Q1", Name: "Ann", ListPosition: "5"}.Claim()
	require.True(t, ok)
	assert.Equal(t, []graph.Snak{
		{Property: graph.PropertyListPosition, Value: graph.StringValue("5")},
		{Property: graph.PropertyNamedAs, Value: graph.StringValue("Ann")},
	}, c.Qualifiers)
}

func TestNoClaimWithoutSignal(t *testing.T) {
	_, ok := authors.Record{ListPosition: "1", ExternalIDs: map[string]string{"P496": "x"}}.Claim()
	assert.False(t, ok)
}

func TestFromClaimIgnoresOtherKinds(t *testing.T) {
	_, ok := authors.FromClaim(graph.NewClaim("P31", graph.ItemValue("Q13442814")))
	assert.False(t, ok)

	_, ok = authors.FromClaim(graph.NewClaim(graph.PropertyAuthor, graph.StringValue("not an item")))
	assert.False(t, ok)

	_, ok = authors.FromClaim(graph.NewClaim(graph.PropertyAuthorName, graph.ItemValue("Q1")))
	assert.False(t, ok)
}

func TestFromEntity(t *testing.T) {
	e := graph.NewEntity("Q100")
	e.AddClaim(graph.NewClaim(graph.PropertyAuthorName, graph.StringValue("Bob")))
	e.AddClaim(graph.NewClaim(graph.PropertyAuthor, graph.ItemValue("Q1")))
	e.AddClaim(graph.NewClaim("P1476", graph.StringValue("Title")))

	records := authors.FromEntity(e)
	require.Len(t, records, 2)
	assert.Equal(t, "Q1", records[0].NodeID)
	assert.Equal(t, "Bob", records[1].Name)
	assert.True(t, authors.IsAuthorship(graph.PropertyAuthor))
	assert.False(t, authors.IsAuthorship("P31"))
}
