package publication_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/authorgraph"
	"github.com/agentstation/authorgraph/cmd/authorgraph/cmd/publication"
	"github.com/agentstation/authorgraph/internal/appcontext"
	"github.com/agentstation/authorgraph/internal/memgraph"
	"github.com/agentstation/authorgraph/pkg/graph"
	"github.com/agentstation/authorgraph/pkg/logging"
)

func testGraph() *memgraph.Graph {
	g := memgraph.New()
	ada := graph.NewEntity("Q1")
	ada.SetLabel("en", "Ada Lovelace")
	g.Put(ada)

	for _, id := range []string{"Q10", "Q11", "Q12"} {
		pub := graph.NewEntity(id)
		c := graph.NewClaim(graph.PropertyAuthor, graph.ItemValue("Q1"))
		c.AddQualifier(graph.PropertyListPosition, graph.StringValue("1"))
		pub.AddClaim(c)
		g.Put(pub)
	}
	return g
}

func run(t *testing.T, app publication.AppContext, args ...string) map[string]any {
	t.Helper()
	cmd := publication.NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var view map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	return view
}

func TestPublicationCommand(t *testing.T) {
	g := testGraph()
	engine, err := authorgraph.New(authorgraph.WithGraph(g), authorgraph.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	app := &appcontext.Mock{
		EngineFunc: func() (authorgraph.Engine, error) { return engine, nil },
		Format:     "json",
		Limit:      2,
	}

	view := run(t, app, "Q10", "Q11", "Q12", "Q404", "--id", "P356=10.1000/xyz")
	assert.Equal(t, "0 created, 0 updated, 3 no change, 1 skipped", view["summary"])
	assert.Equal(t, 1, app.Persisted)

	outcomes, ok := view["outcomes"].([]any)
	require.True(t, ok)
	require.Len(t, outcomes, 4)
	last, ok := outcomes[3].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Q404", last["id"])
	assert.Equal(t, "skipped", last["kind"])
}
