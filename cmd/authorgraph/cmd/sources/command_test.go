package sources_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/authorgraph/cmd/authorgraph/cmd/sources"
	"github.com/agentstation/authorgraph/internal/appcontext"
	"github.com/agentstation/authorgraph/internal/memgraph"
	"github.com/agentstation/authorgraph/internal/sources/graphitem"
	"github.com/agentstation/authorgraph/internal/sources/local"
	"github.com/agentstation/authorgraph/pkg/graph"
	pkgsources "github.com/agentstation/authorgraph/pkg/sources"
)

func configured(t *testing.T) *pkgsources.Sources {
	t.Helper()
	registry, err := local.New(local.File{ID: "registry", Key: "P356"})
	require.NoError(t, err)
	return pkgsources.NewSources(
		registry,
		graphitem.New(memgraph.New(), graph.DefaultVocabulary()),
	)
}

func execute(t *testing.T, app sources.AppContext, args ...string) string {
	t.Helper()
	cmd := sources.NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestRowsInMergeOrder(t *testing.T) {
	rows := sources.Rows(configured(t))
	assert.Equal(t, []sources.Row{
		{ID: "graph_item", Priority: 0},
		{ID: "registry", Priority: 10},
	}, rows)
}

func TestSourcesCommandJSON(t *testing.T) {
	srcs := configured(t)
	app := &appcontext.Mock{
		SourcesFunc: func() (*pkgsources.Sources, error) { return srcs, nil },
		Format:      "json",
	}
	out := execute(t, app)
	assert.JSONEq(t, `[{"id":"graph_item","priority":0},{"id":"registry","priority":10}]`, out)
}

func TestSourcesCommandKinds(t *testing.T) {
	out := execute(t, &appcontext.Mock{Format: "yaml"}, "--kinds")
	assert.Contains(t, out, "graph_item")
	assert.Contains(t, out, "local")
}
