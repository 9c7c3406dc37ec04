package authorgraph_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/authorgraph"
	"github.com/agentstation/authorgraph/internal/memgraph"
	"github.com/agentstation/authorgraph/internal/sources/graphitem"
	"github.com/agentstation/authorgraph/internal/sources/local"
	"github.com/agentstation/authorgraph/pkg/authors"
	"github.com/agentstation/authorgraph/pkg/errors"
	"github.com/agentstation/authorgraph/pkg/graph"
	"github.com/agentstation/authorgraph/pkg/logging"
	"github.com/agentstation/authorgraph/pkg/reconcile"
	"github.com/agentstation/authorgraph/pkg/sources"
)

const doi = "10.1000/XYZ"

func human(id, label string, ids map[string]string) *graph.Entity {
	e := graph.NewEntity(id)
	e.SetLabel("en", label)
	e.AddClaim(graph.NewClaim(graph.PropertyInstanceOf, graph.ItemValue("Q5")))
	for p, v := range ids {
		e.AddClaim(graph.NewClaim(p, graph.StringValue(v)))
	}
	return e
}

func publication(id string, claims ...graph.Claim) *graph.Entity {
	e := graph.NewEntity(id)
	e.SetLabel("en", "Publication "+id)
	for _, c := range claims {
		e.AddClaim(c)
	}
	return e
}

func authorName(name, position string) graph.Claim {
	c := graph.NewClaim(graph.PropertyAuthorName, graph.StringValue(name))
	if position != "" {
		c.AddQualifier(graph.PropertyListPosition, graph.StringValue(position))
	}
	return c
}

func authorItem(node, name, position string) graph.Claim {
	c := graph.NewClaim(graph.PropertyAuthor, graph.ItemValue(node))
	c.AddQualifier(graph.PropertyListPosition, graph.StringValue(position))
	if name != "" {
		c.AddQualifier(graph.PropertyNamedAs, graph.StringValue(name))
	}
	return c
}

func registrySource(t *testing.T, records ...authors.Record) *local.Source {
	t.Helper()
	src, err := local.New(local.File{
		ID:  "registry",
		Key: "P356",
		Publications: []local.Publication{{
			IDs:     map[string]string{"P356": doi},
			Authors: records,
		}},
	})
	require.NoError(t, err)
	return src
}

func newEngine(t *testing.T, g *memgraph.Graph, extra []sources.Source, opts ...authorgraph.Option) authorgraph.Engine {
	t.Helper()
	srcs := sources.NewSources(graphitem.New(g, nil))
	for _, s := range extra {
		srcs.Set(s)
	}
	opts = append([]authorgraph.Option{
		authorgraph.WithGraph(g),
		authorgraph.WithSources(srcs),
		authorgraph.WithLogger(logging.NewNopLogger()),
	}, opts...)
	e, err := authorgraph.New(opts...)
	require.NoError(t, err)
	return e
}

func stored(t *testing.T, g *memgraph.Graph, id string) *graph.Entity {
	t.Helper()
	e, ok := g.Entity(id)
	require.True(t, ok)
	return e
}

func TestNewRequiresGraph(t *testing.T) {
	_, err := authorgraph.New()
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))

	_, err = authorgraph.New(authorgraph.WithGraph(memgraph.New()), authorgraph.WithConcurrency(0))
	assert.True(t, errors.IsValidationError(err))
}

func TestReconcileSynthesizesFreeTextClaims(t *testing.T) {
	g := memgraph.New()
	g.Put(publication("Q10", graph.NewClaim("P356", graph.StringValue(doi))))
	e := newEngine(t, g, []sources.Source{registrySource(t,
		authors.Record{Name: "Alice Liddell"},
		authors.Record{Name: "Bob Dylan"},
	)})

	out, err := e.ReconcilePublication(context.Background(), "Q10", nil)
	require.NoError(t, err)
	assert.Equal(t, reconcile.KindUpdated, out.Kind)

	claims := stored(t, g, "Q10").ClaimsFor(graph.PropertyAuthorName)
	require.Len(t, claims, 2)
	for i, want := range []struct{ name, pos string }{{"Alice Liddell", "1"}, {"Bob Dylan", "2"}} {
		assert.Equal(t, want.name, claims[i].Value.String)
		pos, ok := claims[i].Qualifier(graph.PropertyListPosition)
		require.True(t, ok)
		assert.Equal(t, want.pos, pos.String)
	}
	assert.Empty(t, stored(t, g, "Q10").ClaimsFor(graph.PropertyAuthor))

	again, err := e.ReconcilePublication(context.Background(), "Q10", nil)
	require.NoError(t, err)
	assert.Equal(t, reconcile.KindNoChange, again.Kind)
}

func TestReconcileUpgradesFreeTextClaimToNode(t *testing.T) {
	orcid := "0000-0002-1825-0097"
	g := memgraph.New()
	g.Put(human("Q123", "Alan Smith", map[string]string{"P496": orcid}))

	old := authorName("A. Smith", "1")
	old.AddQualifier("P1810", graph.StringValue("Smith, A."))
	old.References = []graph.Reference{{Snaks: []graph.Snak{{Property: "P248", Value: graph.ItemValue("Q5188229")}}}}
	g.Put(publication("Q10", graph.NewClaim("P356", graph.StringValue(doi)), old))

	e := newEngine(t, g, []sources.Source{registrySource(t,
		authors.Record{Name: "A. Smith", ExternalIDs: map[string]string{"P496": orcid}, ListPosition: "1"},
	)})

	out, err := e.ReconcilePublication(context.Background(), "Q10", nil)
	require.NoError(t, err)
	assert.Equal(t, reconcile.KindUpdated, out.Kind)

	pub := stored(t, g, "Q10")
	assert.Empty(t, pub.ClaimsFor(graph.PropertyAuthorName))
	items := pub.ClaimsFor(graph.PropertyAuthor)
	require.Len(t, items, 1)

	c := items[0]
	assert.Equal(t, "Q123", c.Value.Item)
	named, _ := c.Qualifier(graph.PropertyNamedAs)
	assert.Equal(t, "A. Smith", named.String)
	pos, _ := c.Qualifier(graph.PropertyListPosition)
	assert.Equal(t, "1", pos.String)
	kept, ok := c.Qualifier("P1810")
	require.True(t, ok)
	assert.Equal(t, "Smith, A.", kept.String)
	if diff := cmp.Diff(old.References, c.References); diff != "" {
		t.Errorf("references changed (-want +got):\n%s", diff)
	}
}

func TestReconcileKeepsStoredQualifierOrder(t *testing.T) {
	g := memgraph.New()
	g.Put(human("Q123", "Alice Smith", nil))
	c := graph.NewClaim(graph.PropertyAuthor, graph.ItemValue("Q123"))
	c.AddQualifier(graph.PropertyNamedAs, graph.StringValue("Alice Smith"))
	c.AddQualifier(graph.PropertyListPosition, graph.StringValue("1"))
	g.Put(publication("Q10", c))
	e := newEngine(t, g, nil)

	out, err := e.ReconcilePublication(context.Background(), "Q10", nil)
	require.NoError(t, err)
	assert.Equal(t, reconcile.KindNoChange, out.Kind)
	assert.Zero(t, g.Writes())

	items := stored(t, g, "Q10").ClaimsFor(graph.PropertyAuthor)
	require.Len(t, items, 1)
	assert.Equal(t, c.Qualifiers, items[0].Qualifiers)
}

func TestReconcileCreatesMissingAuthor(t *testing.T) {
	hopper := authors.Record{
		Name:           "Grace Hopper",
		AlternateNames: []string{"G. Hopper"},
		ExternalIDs:    map[string]string{"P496": "0000-0001"},
	}
	src, err := local.New(local.File{
		ID:  "registry",
		Key: "P356",
		Publications: []local.Publication{
			{IDs: map[string]string{"P356": doi}, Authors: []authors.Record{hopper}},
			{IDs: map[string]string{"P356": "10.1000/other"}, Authors: []authors.Record{hopper}},
		},
	})
	require.NoError(t, err)

	g := memgraph.New()
	g.Put(publication("Q10", graph.NewClaim("P356", graph.StringValue(doi))))
	g.Put(publication("Q50", graph.NewClaim("P356", graph.StringValue("10.1000/other"))))
	e := newEngine(t, g, []sources.Source{src})

	var mu sync.Mutex
	var created []reconcile.Outcome
	e.OnOutcome(func(o reconcile.Outcome) {
		if o.Kind == reconcile.KindCreated {
			mu.Lock()
			created = append(created, o)
			mu.Unlock()
		}
	})

	_, err = e.ReconcilePublication(context.Background(), "Q10", nil)
	require.NoError(t, err)

	require.Len(t, created, 1)
	assert.Equal(t, reconcile.UnitAuthor, created[0].Unit)
	node := created[0].NodeID
	author := stored(t, g, node)
	assert.Equal(t, "Grace Hopper", author.Label("en"))
	assert.Equal(t, []string{"G. Hopper"}, author.Aliases["en"])

	items := stored(t, g, "Q10").ClaimsFor(graph.PropertyAuthor)
	require.Len(t, items, 1)
	assert.Equal(t, node, items[0].Value.Item)

	// The second publication finds the new node through the identifier cache.
	out, err := e.ReconcilePublication(context.Background(), "Q50", nil)
	require.NoError(t, err)
	assert.Equal(t, reconcile.KindUpdated, out.Kind)
	assert.Len(t, created, 1)
	assert.Equal(t, 3, g.Len())
	assert.Positive(t, e.CacheStats().Hits)

	items = stored(t, g, "Q50").ClaimsFor(graph.PropertyAuthor)
	require.Len(t, items, 1)
	assert.Equal(t, node, items[0].Value.Item)
}

func TestReconcileLeavesAmbiguousAuthorUnresolved(t *testing.T) {
	g := memgraph.New()
	g.Put(human("Q20", "Jane Doe", nil))
	g.Put(human("Q21", "Jane Doe", nil))
	g.Put(publication("Q10", graph.NewClaim("P356", graph.StringValue(doi))))
	e := newEngine(t, g, []sources.Source{registrySource(t,
		authors.Record{Name: "Jane Doe", ExternalIDs: map[string]string{"P496": "0000-0003"}},
	)})

	_, err := e.ReconcilePublication(context.Background(), "Q10", nil)
	require.NoError(t, err)

	pub := stored(t, g, "Q10")
	assert.Empty(t, pub.ClaimsFor(graph.PropertyAuthor))
	require.Len(t, pub.ClaimsFor(graph.PropertyAuthorName), 1)
	assert.Equal(t, 3, g.Len(), "no author node is created")
}

type failingSource struct{}

func (failingSource) ID() sources.ID { return "broken" }
func (failingSource) Priority() int  { return 1 }
func (failingSource) PublicationID(_ *graph.Entity, ids map[string]string) (string, bool) {
	return ids["P356"], true
}
func (failingSource) Authors(context.Context, string) ([]authors.Record, error) {
	return nil, errors.New("connection reset")
}
func (failingSource) Identifiers(context.Context, map[string]string) (map[string]string, error) {
	return nil, errors.New("connection reset")
}

func TestReconcileSurvivesFailingSource(t *testing.T) {
	g := memgraph.New()
	g.Put(publication("Q10", graph.NewClaim("P356", graph.StringValue(doi))))
	e := newEngine(t, g, []sources.Source{
		failingSource{},
		registrySource(t, authors.Record{Name: "Alice Liddell"}),
	})

	out, err := e.ReconcilePublication(context.Background(), "Q10", nil)
	require.NoError(t, err)
	assert.Equal(t, reconcile.KindUpdated, out.Kind)
	assert.Len(t, stored(t, g, "Q10").ClaimsFor(graph.PropertyAuthorName), 1)
}

func TestReconcileUsesKnownIdentifiers(t *testing.T) {
	g := memgraph.New()
	g.Put(publication("Q10"))
	e := newEngine(t, g, []sources.Source{registrySource(t, authors.Record{Name: "Alice Liddell"})})

	out, err := e.ReconcilePublication(context.Background(), "Q10", map[string]string{"P356": doi})
	require.NoError(t, err)
	assert.Equal(t, reconcile.KindUpdated, out.Kind)
}

func TestReconcileMissingPublicationIsSkipped(t *testing.T) {
	e := newEngine(t, memgraph.New(), nil)
	out, err := e.ReconcilePublication(context.Background(), "Q404", nil)
	require.NoError(t, err)
	assert.Equal(t, reconcile.KindSkipped, out.Kind)
	assert.Contains(t, out.Reason, "not found")
}

func TestReconcileDryRun(t *testing.T) {
	g := memgraph.New()
	g.Put(publication("Q10", graph.NewClaim("P356", graph.StringValue(doi))))
	e := newEngine(t, g,
		[]sources.Source{registrySource(t, authors.Record{Name: "Grace Hopper", ExternalIDs: map[string]string{"P496": "0000-0001"}})},
		authorgraph.WithDryRun(true),
	)

	out, err := e.ReconcilePublication(context.Background(), "Q10", nil)
	require.NoError(t, err)
	assert.Equal(t, reconcile.KindUpdated, out.Kind)
	assert.Equal(t, "dry run", out.Reason)
	assert.Zero(t, g.Writes())
	assert.Empty(t, stored(t, g, "Q10").ClaimsFor(graph.PropertyAuthorName))
}
