package memgraph

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/agentstation/authorgraph/pkg/errors"
	"github.com/agentstation/authorgraph/pkg/graph"
	"github.com/agentstation/authorgraph/pkg/match"
)

const statementPrefix = "haswbstatement:"

// Statement is a haswbstatement filter. An empty Value matches any value.
type Statement struct {
	Property string
	Value    string
}

// Query is a parsed search. Every term and every statement must match.
type Query struct {
	Terms      []string
	Statements []Statement
}

// ParseQuery splits query into quoted phrases, bare words and statement filters.
func ParseQuery(query string) (Query, error) {
	var q Query
	fields, err := splitQuoted(query)
	if err != nil {
		return q, err
	}
	for _, f := range fields {
		if !f.quoted && strings.HasPrefix(f.text, statementPrefix) {
			prop, value, _ := strings.Cut(strings.TrimPrefix(f.text, statementPrefix), "=")
			if prop == "" {
				return q, errors.NewValidationError("query", query, "statement filter without property")
			}
			q.Statements = append(q.Statements, Statement{Property: prop, Value: fold(value)})
			continue
		}
		if term := normalize(f.text); term != "" {
			q.Terms = append(q.Terms, term)
		}
	}
	if len(q.Terms) == 0 && len(q.Statements) == 0 {
		return q, errors.NewValidationError("query", query, "empty query")
	}
	return q, nil
}

type field struct {
	text   string
	quoted bool
}

func splitQuoted(s string) ([]field, error) {
	var (
		fields []field
		cur    strings.Builder
		quoted bool
	)
	flush := func(wasQuoted bool) {
		if cur.Len() > 0 {
			fields = append(fields, field{text: cur.String(), quoted: wasQuoted})
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			flush(quoted)
			quoted = !quoted
		case r == ' ' && !quoted:
			flush(false)
		default:
			cur.WriteRune(r)
		}
	}
	if quoted {
		return nil, errors.NewValidationError("query", s, "unterminated quote")
	}
	flush(false)
	return fields, nil
}

// Matches reports whether e satisfies q.
func (q Query) Matches(e *graph.Entity) bool {
	for _, st := range q.Statements {
		if !hasStatement(e, st) {
			return false
		}
	}
	if len(q.Terms) == 0 {
		return true
	}
	names := entityNames(e)
	for _, term := range q.Terms {
		if !containsPhrase(names, term) {
			return false
		}
	}
	return true
}

func hasStatement(e *graph.Entity, st Statement) bool {
	for _, c := range e.ClaimsFor(st.Property) {
		if st.Value == "" || fold(c.Value.Text()) == st.Value {
			return true
		}
	}
	return false
}

func entityNames(e *graph.Entity) []string {
	var names []string
	for _, l := range e.Labels {
		names = append(names, normalize(l))
	}
	for _, aliases := range e.Aliases {
		for _, a := range aliases {
			names = append(names, normalize(a))
		}
	}
	return names
}

// containsPhrase matches term against whole words of any name.
func containsPhrase(names []string, term string) bool {
	for _, n := range names {
		if n == term || strings.Contains(" "+n+" ", " "+term+" ") {
			return true
		}
	}
	return false
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func normalize(s string) string {
	return fold(match.Simplify(s))
}
