package graph_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/authorgraph/pkg/errors"
	"github.com/agentstation/authorgraph/pkg/graph"
)

func publication() *graph.Entity {
	e := graph.NewEntity("Q100")
	e.SetLabel("en", "A paper")
	c := graph.NewClaim(graph.PropertyAuthorName, graph.StringValue("A. Smith"))
	c.ID = "Q100$1"
	c.AddQualifier(graph.PropertyListPosition, graph.StringValue("1"))
	c.References = []graph.Reference{{Snaks: []graph.Snak{{Property: "P248", Value: graph.ItemValue("Q5188229")}}}}
	e.AddClaim(c)
	return e
}

func TestEntityClone(t *testing.T) {
	e := publication()
	clone := e.Clone()

	clone.Claims[graph.PropertyAuthorName][0].Qualifiers[0].Value = graph.StringValue("9")
	clone.Claims[graph.PropertyAuthorName][0].References[0].Snaks[0].Property = "P854"
	clone.SetLabel("en", "changed")

	orig := e.ClaimsFor(graph.PropertyAuthorName)[0]
	v, ok := orig.Qualifier(graph.PropertyListPosition)
	require.True(t, ok)
	assert.Equal(t, "1", v.String)
	assert.Equal(t, "P248", orig.References[0].Snaks[0].Property)
	assert.Equal(t, "A paper", e.Label("en"))
}

func TestEntityAliasesAndIDs(t *testing.T) {
	e := graph.NewEntity("Q1")
	e.SetLabel("en", "Jane Doe")
	e.AddAlias("en", "Jane Doe")
	e.AddAlias("en", "J. Doe")
	e.AddAlias("en", "J. Doe")
	assert.Equal(t, []string{"J. Doe"}, e.Aliases["en"])

	e.AddClaim(graph.NewClaim("P356", graph.StringValue("10.1/xyz")))
	e.AddClaim(graph.NewClaim("P698", graph.StringValue("12345")))
	ids := e.ExternalIDs([]string{"P356", "P698", "P932"})
	assert.Equal(t, map[string]string{"P356": "10.1/xyz", "P698": "12345"}, ids)
	assert.Equal(t, []string{"P356", "P698"}, e.Properties())
}

func TestComputeDiff(t *testing.T) {
	t.Run("identical snapshots", func(t *testing.T) {
		e := publication()
		d := graph.ComputeDiff(e, e.Clone())
		assert.True(t, d.IsEmpty())
		assert.Equal(t, "no changes", d.Summary())
	})

	t.Run("replace free-text claim with item claim", func(t *testing.T) {
		original := publication()
		modified := original.Clone()
		modified.SetClaims(graph.PropertyAuthorName, nil)
		modified.AddClaim(graph.NewClaim(graph.PropertyAuthor, graph.ItemValue("Q123")))

		d := graph.ComputeDiff(original, modified)
		require.Len(t, d.Added, 1)
		require.Len(t, d.Removed, 1)
		assert.Empty(t, d.Updated)
		assert.Equal(t, "Q123", d.Added[0].Value.Item)
		assert.Equal(t, "Q100$1", d.Removed[0].ID)
		assert.Equal(t, "1 claims added, 1 claims removed", d.Summary())
	})

	t.Run("qualifier change is an update", func(t *testing.T) {
		original := publication()
		modified := original.Clone()
		modified.Claims[graph.PropertyAuthorName][0].AddQualifier(graph.PropertyNamedAs, graph.StringValue("Smith"))

		d := graph.ComputeDiff(original, modified)
		require.Len(t, d.Updated, 1)
		assert.Equal(t, "Q100$1", d.Updated[0].Existing.ID)
	})

	t.Run("new entity", func(t *testing.T) {
		item := graph.NewEntity("")
		item.SetLabel("en", "Jane Doe")
		item.AddAlias("en", "J. Doe")
		item.AddClaim(graph.NewClaim(graph.PropertyInstanceOf, graph.ItemValue("Q5")))

		d := graph.ComputeDiff(nil, item)
		assert.Len(t, d.Added, 1)
		assert.Equal(t, []graph.FieldChange{
			{Path: "labels.en", NewValue: "Jane Doe", Type: graph.ChangeTypeAdd},
			{Path: "aliases.en", NewValue: "J. Doe", Type: graph.ChangeTypeAdd},
		}, d.Fields)
	})
}

func TestQueries(t *testing.T) {
	assert.Equal(t, "haswbstatement:P496=0000-0001", graph.HasStatement("P496", "0000-0001"))
	assert.Equal(t, `"Jane Doe" haswbstatement:P31=Q5`, graph.NameQuery(` Jane "Doe `, "Q5"))
}

func TestVocabulary(t *testing.T) {
	v := graph.DefaultVocabulary()
	assert.Same(t, v, graph.DefaultVocabulary())
	assert.Contains(t, v.AuthorIDProperties(), "P496")
	assert.Equal(t, "DOI", v.IDName("P356"))
	assert.Equal(t, "P9999", v.IDName("P9999"))
	item, ok := v.LanguageItem(v.Language)
	assert.True(t, ok)
	assert.Equal(t, "Q1860", item)
}

type countingClient struct {
	loads, writes atomic.Int32
}

func (c *countingClient) LoadEntities(_ context.Context, ids []string) (map[string]*graph.Entity, error) {
	c.loads.Add(1)
	out := make(map[string]*graph.Entity)
	for _, id := range ids {
		if id == "Q100" {
			out[id] = publication()
		}
	}
	return out, nil
}

func (c *countingClient) Search(context.Context, string) ([]string, error) { return nil, nil }

func (c *countingClient) CreateItem(context.Context, *graph.Entity) (string, error) {
	c.writes.Add(1)
	return "Q1", nil
}

func (c *countingClient) ApplyDiff(_ context.Context, _, modified *graph.Entity) (string, error) {
	c.writes.Add(1)
	return modified.ID, nil
}

func TestLoadEntity(t *testing.T) {
	client := &countingClient{}
	e, err := graph.LoadEntity(context.Background(), client, "Q100")
	require.NoError(t, err)
	assert.Equal(t, "Q100", e.ID)

	_, err = graph.LoadEntity(context.Background(), client, "Q404")
	assert.True(t, errors.IsNotFound(err))
}

func TestRateLimited(t *testing.T) {
	inner := &countingClient{}
	client := graph.NewRateLimited(inner, 1000, 1)
	ctx := context.Background()

	e := publication()
	id, err := client.ApplyDiff(ctx, e, e.Clone())
	require.NoError(t, err)
	assert.Equal(t, "Q100", id)
	assert.Equal(t, int32(0), inner.writes.Load(), "empty diff must not reach the client")

	_, err = client.CreateItem(ctx, graph.NewEntity(""))
	require.NoError(t, err)
	assert.Equal(t, int32(1), inner.writes.Load())

	client.SetRate(graph.OpRead, 0.001, 1)
	_, err = client.LoadEntities(ctx, []string{"Q100"})
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = client.LoadEntities(waitCtx, []string{"Q100"})
	require.Error(t, err, "second read should exceed the tiny read budget")
	assert.True(t, errors.IsRateLimited(err))
	assert.Equal(t, int32(1), inner.loads.Load())

	canceled, stop := context.WithCancel(ctx)
	stop()
	_, err = client.CreateItem(canceled, graph.NewEntity(""))
	require.Error(t, err)
	assert.True(t, errors.IsCanceled(err))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.IsRateLimited(err))
	assert.Equal(t, int32(1), inner.writes.Load())
}
