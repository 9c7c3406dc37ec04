package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/authorgraph/pkg/authors"
	"github.com/agentstation/authorgraph/pkg/match"
)

func TestScoreNodeVeto(t *testing.T) {
	a := authors.Record{NodeID: "Q1", Name: "Magnus Manske", ExternalIDs: map[string]string{"P496": "0000-0001-5916-0947"}, ListPosition: "1"}
	b := a.Clone()
	b.NodeID = "Q2"

	assert.Equal(t, 0, match.Score(a, b), "distinct nodes veto every other signal")

	b.NodeID = "Q1"
	b.Name = "Someone Else"
	b.ExternalIDs = nil
	assert.Equal(t, 100, match.Score(a, b), "equal nodes score the maximum regardless of other fields")
}

func TestScoreExternalIDs(t *testing.T) {
	a := authors.Record{ExternalIDs: map[string]string{"P496": "x", "P214": "y", "P213": "z"}}
	b := authors.Record{ExternalIDs: map[string]string{"P496": "x", "P214": "y", "P213": "other"}}
	assert.Equal(t, 180, match.Score(a, b))
}

func TestScoreNamesAndPosition(t *testing.T) {
	a := authors.Record{Name: "Alice Smith", ListPosition: "2"}
	b := authors.Record{Name: "Smith Alice", ListPosition: "2"}
	assert.Equal(t, 2*50+30, match.Score(a, b))

	b.ListPosition = "3"
	assert.Equal(t, 100, match.Score(a, b))

	noName := authors.Record{ListPosition: "2"}
	assert.Equal(t, 30, match.Score(a, noName))
}

func TestScoreOneSidedNode(t *testing.T) {
	a := authors.Record{NodeID: "Q1", Name: "Alice Smith"}
	b := authors.Record{Name: "Alice Smith"}
	assert.Equal(t, 100, match.Score(a, b), "a node on one side only falls through to the other rules")
}

func TestScoreNoSignal(t *testing.T) {
	empty := authors.Record{}
	full := authors.Record{Name: "Alice Smith", ExternalIDs: map[string]string{"P496": "x"}}
	assert.Equal(t, 0, match.Score(empty, full))
	assert.Equal(t, 0, match.Score(full, empty))
}

func TestAuthorNamesMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"Manske M", "Manske HM", 1},
		{"Heinrich M Manske", "manske heinrich", 2},
		{"Notmyname M Manske", "Heinrich M Manske", 1},
		{"Jürgen Müller", "Juergen Muller", 1},
		{"JÜRGEN Müller", "jurgen muller", 2},
		{"Smith, Alice", "Alice Smith", 2},
		{"Al Bo", "Al Bo", 0},
		{"Anna Anna", "Anna", 2},
		{"", "Anna", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, match.AuthorNamesMatch(tt.a, tt.b))
		})
	}
}

func TestAsciify(t *testing.T) {
	assert.Equal(t, "aouaaaeenicss", match.Asciify("äöüáàâéèñïçß"))
	assert.Equal(t, "plain", match.Asciify("plain"))
	assert.Equal(t, "ø", match.Asciify("ø"), "characters outside the table are kept")
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"heinrich", "manske"}, match.Tokens("Manske, Heinrich M."))
	assert.Empty(t, match.Tokens("A. B."))
}

func TestSimplify(t *testing.T) {
	assert.Equal(t, "A Smith", match.Simplify("A. Smith"))
	assert.Equal(t, "Jose Garcia-Lopez", match.Simplify("José García-López"))
	assert.Equal(t, "O'Brien J", match.Simplify("  O'Brien,   J. "))
}

func TestFindBestMatch(t *testing.T) {
	candidates := []authors.Record{
		{Name: "Bob Jones"},
		{Name: "Alice Smith", ListPosition: "1"},
		{Name: "Carol White"},
	}

	m, ok := match.FindBestMatch(authors.Record{Name: "Alice Smith", ListPosition: "1"}, candidates)
	assert.True(t, ok)
	assert.Equal(t, match.Match{Index: 1, Score: 130}, m)

	_, ok = match.FindBestMatch(authors.Record{Name: "Dave Brown"}, candidates)
	assert.False(t, ok, "zero maximum is no match")

	_, ok = match.FindBestMatch(authors.Record{Name: "Bob"}, nil)
	assert.False(t, ok)
}

func TestFindBestMatchTie(t *testing.T) {
	candidates := []authors.Record{
		{Name: "John Smith"},
		{Name: "Smith Unrelated", ListPosition: "9"},
		{Name: "Jane Smith"},
	}
	r := authors.Record{Name: "J. Smith"}

	m, ok := match.FindBestMatch(r, candidates)
	assert.False(t, ok, "ties at the maximum are never resolved")
	assert.Equal(t, -1, m.Index)

	ties := match.Ties(r, candidates)
	assert.Len(t, ties, 3)
	for _, tie := range ties {
		assert.Equal(t, 50, tie.Score)
	}
}

func TestTieBelowUniqueMaximum(t *testing.T) {
	candidates := []authors.Record{
		{Name: "John Smith"},
		{Name: "Jane Smith"},
		{Name: "Jane Smith", ListPosition: "4"},
	}
	m, ok := match.FindBestMatch(authors.Record{Name: "Jane Smith", ListPosition: "4"}, candidates)
	assert.True(t, ok, "a tie below the maximum does not block the unique best")
	assert.Equal(t, 2, m.Index)
	assert.Nil(t, match.Ties(authors.Record{Name: "Jane Smith", ListPosition: "4"}, candidates))
}

func TestRank(t *testing.T) {
	ranked := match.Rank(authors.Record{Name: "Alice Smith"}, []authors.Record{
		{Name: "Bob"}, {Name: "Alice Smith"}, {Name: "Smith"},
	})
	assert.Equal(t, []match.Match{{Index: 1, Score: 100}, {Index: 2, Score: 50}, {Index: 0, Score: 0}}, ranked)
}
