package graphitem_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/authorgraph/internal/memgraph"
	"github.com/agentstation/authorgraph/internal/sources/graphitem"
	"github.com/agentstation/authorgraph/pkg/errors"
	"github.com/agentstation/authorgraph/pkg/graph"
)

func newGraph(t *testing.T) *memgraph.Graph {
	t.Helper()
	g := memgraph.New()

	pub := graph.NewEntity("Q10")
	pub.AddClaim(graph.NewClaim("P356", graph.StringValue("10.1000/XYZ")))
	author := graph.NewClaim(graph.PropertyAuthor, graph.ItemValue("Q1"))
	author.AddQualifier(graph.PropertyListPosition, graph.StringValue("1"))
	pub.AddClaim(author)
	name := graph.NewClaim(graph.PropertyAuthorName, graph.StringValue("Charles Babbage"))
	name.AddQualifier(graph.PropertyListPosition, graph.StringValue("2"))
	pub.AddClaim(name)
	g.Put(pub)

	preprint := graph.NewEntity("Q11")
	preprint.AddClaim(graph.NewClaim("P356", graph.StringValue("10.1000/xyz")))
	preprint.AddClaim(graph.NewClaim("P698", graph.StringValue("12345")))
	g.Put(preprint)
	return g
}

func TestAuthors(t *testing.T) {
	g := newGraph(t)
	src := graphitem.New(g, nil)

	entity, _ := g.Entity("Q10")
	id, ok := src.PublicationID(entity, nil)
	require.True(t, ok)
	assert.Equal(t, "Q10", id)

	records, err := src.Authors(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Q1", records[0].NodeID)
	assert.Equal(t, "1", records[0].ListPosition)
	assert.Equal(t, "Charles Babbage", records[1].Name)

	_, err = src.Authors(context.Background(), "Q99")
	assert.True(t, errors.IsNotFound(err))
}

func TestIdentifiers(t *testing.T) {
	src := graphitem.New(newGraph(t), nil)

	ids, err := src.Identifiers(context.Background(), map[string]string{"P356": "10.1000/XYZ"})
	require.NoError(t, err)
	assert.Equal(t, "12345", ids["P698"])
}

func TestPublicationIDWithoutEntity(t *testing.T) {
	_, ok := graphitem.New(memgraph.New(), nil).PublicationID(nil, nil)
	assert.False(t, ok)
}
