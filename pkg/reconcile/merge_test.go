package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/authorgraph/pkg/authors"
	"github.com/agentstation/authorgraph/pkg/reconcile"
)

func TestMergeIntoEmptyClones(t *testing.T) {
	from := []authors.Record{
		{Name: "Alice", ExternalIDs: map[string]string{"P496": "a"}},
		{Name: "Bob"},
		{Name: "Carol"},
	}

	merged := reconcile.Merge(nil, from)
	require.Equal(t, from, merged)

	merged[0].ExternalIDs["P496"] = "changed"
	merged[1].Name = "Robert"
	assert.Equal(t, "a", from[0].ExternalIDs["P496"], "result must not alias the source list")
	assert.Equal(t, "Bob", from[1].Name)
}

func TestMergeNormalizesAlternateNames(t *testing.T) {
	merged := reconcile.Merge(nil, []authors.Record{
		{Name: "Alice Liddell", AlternateNames: []string{"Liddell, A.", "A. Liddell", "Liddell, A.", " "}},
	})
	require.Len(t, merged, 1)
	assert.Equal(t, []string{"A. Liddell", "Liddell, A."}, merged[0].AlternateNames)

	merged = reconcile.Merge(merged, []authors.Record{
		{Name: "Bob Dylan", AlternateNames: []string{"Zimmerman, R.", "B. Dylan", "B. Dylan"}},
	})
	require.Len(t, merged, 2)
	assert.Equal(t, []string{"B. Dylan", "Zimmerman, R."}, merged[1].AlternateNames)
}

func TestMergeAbsorbsMatches(t *testing.T) {
	into := []authors.Record{
		{Name: "Alice Smith", ExternalIDs: map[string]string{"P496": "0000-0001"}},
		{Name: "Bob Jones", ListPosition: "2"},
	}
	from := []authors.Record{
		{Name: "A. Smith", NodeID: "Q5", ExternalIDs: map[string]string{"P496": "0000-0001", "P214": "v1"}, AlternateNames: []string{"Smith, A."}},
		{Name: "Carol White"},
	}

	merged := reconcile.Merge(into, from)
	require.Len(t, merged, 3)

	alice := merged[0]
	assert.Equal(t, "Alice Smith", alice.Name)
	assert.Equal(t, "Q5", alice.NodeID)
	assert.Equal(t, map[string]string{"P496": "0000-0001", "P214": "v1"}, alice.ExternalIDs)
	assert.Equal(t, []string{"Smith, A."}, alice.AlternateNames)

	assert.Equal(t, "Bob Jones", merged[1].Name)
	assert.Equal(t, "Carol White", merged[2].Name)
}

func TestMergeAppendsOnTie(t *testing.T) {
	into := []authors.Record{{Name: "John Smith"}, {Name: "Jane Smith"}}
	merged := reconcile.Merge(into, []authors.Record{{Name: "J. Smith"}})

	require.Len(t, merged, 3)
	assert.Equal(t, "J. Smith", merged[2].Name)
	assert.Equal(t, "John Smith", merged[0].Name)
}

func TestMergeOrderOfSources(t *testing.T) {
	first := []authors.Record{{Name: "Alice Smith", ListPosition: "1"}}
	second := []authors.Record{{Name: "Alice Smith", ListPosition: "1", NodeID: "Q1"}}
	third := []authors.Record{{Name: "Alice Smith", ListPosition: "1", NodeID: "Q2"}}

	merged := reconcile.Merge(nil, first)
	merged = reconcile.Merge(merged, second)
	merged = reconcile.Merge(merged, third)

	require.Len(t, merged, 2, "the third record is vetoed by the node now set on the first")
	assert.Equal(t, "Q1", merged[0].NodeID)
	assert.Equal(t, "Q2", merged[1].NodeID)
}
