// Package memgraph is an in-memory knowledge graph. It implements the graph
// client and query interfaces over a map of entities, persists to a YAML
// snapshot, and understands the small search language used by the engine:
// quoted phrases and bare words matched against labels and aliases, plus
// haswbstatement:P=v filters.
package memgraph

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/agentstation/authorgraph/pkg/errors"
	"github.com/agentstation/authorgraph/pkg/graph"
)

// Compile-time interface checks.
var (
	_ graph.Client       = (*Graph)(nil)
	_ graph.QueryService = (*Graph)(nil)
)

// Graph is safe for concurrent use.
type Graph struct {
	mu       sync.RWMutex
	entities map[string]*graph.Entity
	nextItem int
	nextStmt int
	writes   int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{entities: make(map[string]*graph.Entity), nextItem: 1, nextStmt: 1}
}

// Put stores a copy of e, assigning an id to it and to any claim lacking one.
// It returns the entity id.
func (g *Graph) Put(e *graph.Entity) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.put(e.Clone())
}

func (g *Graph) put(e *graph.Entity) string {
	if e.ID == "" {
		e.ID = g.newItemID()
	} else {
		g.observeID(e.ID)
	}
	for prop, claims := range e.Claims {
		for i := range claims {
			claims[i].Property = prop
			if claims[i].ID == "" {
				claims[i].ID = g.newStatementID(e.ID)
			} else {
				g.observeStatementID(claims[i].ID)
			}
		}
	}
	g.entities[e.ID] = e
	return e.ID
}

func (g *Graph) newItemID() string {
	for {
		id := "Q" + strconv.Itoa(g.nextItem)
		g.nextItem++
		if _, taken := g.entities[id]; !taken {
			return id
		}
	}
}

func (g *Graph) observeID(id string) {
	if n, err := strconv.Atoi(strings.TrimPrefix(id, "Q")); err == nil && n >= g.nextItem {
		g.nextItem = n + 1
	}
}

func (g *Graph) newStatementID(entityID string) string {
	id := fmt.Sprintf("%s$%d", entityID, g.nextStmt)
	g.nextStmt++
	return id
}

func (g *Graph) observeStatementID(id string) {
	_, suffix, ok := strings.Cut(id, "$")
	if !ok {
		return
	}
	if n, err := strconv.Atoi(suffix); err == nil && n >= g.nextStmt {
		g.nextStmt = n + 1
	}
}

// Entity returns a copy of the stored entity.
func (g *Graph) Entity(id string) (*graph.Entity, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.entities[id]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

// Len returns the number of entities.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entities)
}

// Writes returns the number of CreateItem and non-empty ApplyDiff calls.
func (g *Graph) Writes() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.writes
}

// LoadEntities implements graph.Client.
func (g *Graph) LoadEntities(ctx context.Context, ids []string) (map[string]*graph.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make(map[string]*graph.Entity, len(ids))
	for _, id := range ids {
		if e, ok := g.entities[id]; ok {
			out[id] = e.Clone()
		}
	}
	return out, nil
}

// Search implements graph.Client. Results are sorted by id.
func (g *Graph) Search(ctx context.Context, query string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q, err := ParseQuery(query)
	if err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	var hits []string
	for _, id := range g.sortedIDs() {
		if q.Matches(g.entities[id]) {
			hits = append(hits, id)
		}
	}
	return hits, nil
}

// CreateItem implements graph.Client.
func (g *Graph) CreateItem(ctx context.Context, item *graph.Entity) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if item == nil {
		return "", errors.NewValidationError("item", nil, "cannot be nil")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	e := item.Clone()
	if e.ID != "" {
		if _, exists := g.entities[e.ID]; exists {
			return "", errors.NewResourceError("create", "entity", e.ID, errors.New("already exists"))
		}
	}
	g.writes++
	return g.put(e), nil
}

// ApplyDiff implements graph.Client. Edits are applied onto the stored
// entity claim by claim, so concurrent edits to other claims survive.
func (g *Graph) ApplyDiff(ctx context.Context, original, modified *graph.Entity) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if modified == nil {
		return "", errors.NewValidationError("modified", nil, "cannot be nil")
	}
	diff := graph.ComputeDiff(original, modified)
	if diff.IsEmpty() {
		return modified.ID, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if modified.ID == "" {
		g.writes++
		return g.put(modified.Clone()), nil
	}
	stored, ok := g.entities[modified.ID]
	if !ok {
		return "", errors.NewNotFoundError("entity", modified.ID)
	}

	next := stored.Clone()
	for _, c := range diff.Removed {
		if !removeClaim(next, c.ID) {
			return "", errors.NewNotFoundError("claim", c.ID)
		}
	}
	for _, u := range diff.Updated {
		if !removeClaim(next, u.Existing.ID) {
			return "", errors.NewNotFoundError("claim", u.Existing.ID)
		}
		next.AddClaim(u.New.Clone())
	}
	for _, c := range diff.Added {
		c = c.Clone()
		c.ID = g.newStatementID(next.ID)
		next.AddClaim(c)
	}
	for _, f := range diff.Fields {
		applyField(next, modified, f)
	}

	g.entities[next.ID] = next
	g.writes++
	return next.ID, nil
}

func removeClaim(e *graph.Entity, id string) bool {
	for prop, claims := range e.Claims {
		for i, c := range claims {
			if c.ID == id {
				e.SetClaims(prop, slices.Delete(slices.Clone(claims), i, i+1))
				return true
			}
		}
	}
	return false
}

func applyField(dst, src *graph.Entity, f graph.FieldChange) {
	kind, lang, _ := strings.Cut(f.Path, ".")
	switch kind {
	case "labels":
		if v, ok := src.Labels[lang]; ok {
			dst.SetLabel(lang, v)
		} else {
			delete(dst.Labels, lang)
		}
	case "aliases":
		if v := src.Aliases[lang]; len(v) > 0 {
			dst.Aliases[lang] = slices.Clone(v)
		} else {
			delete(dst.Aliases, lang)
		}
	}
}

// PublicationNames implements graph.QueryService.
func (g *Graph) PublicationNames(ctx context.Context, rootID string) ([]graph.NamedPublication, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []graph.NamedPublication
	for _, id := range g.sortedIDs() {
		e := g.entities[id]
		if !authoredBy(e, rootID) {
			continue
		}
		for _, c := range e.ClaimsFor(graph.PropertyAuthorName) {
			if name := c.Value.Text(); name != "" {
				out = append(out, graph.NamedPublication{PublicationID: id, Name: name})
			}
		}
	}
	return out, nil
}

// Coauthors implements graph.QueryService.
func (g *Graph) Coauthors(ctx context.Context, rootID string) ([]graph.Coauthor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := make(map[string]bool)
	var out []graph.Coauthor
	for _, id := range g.sortedIDs() {
		e := g.entities[id]
		if !authoredBy(e, rootID) {
			continue
		}
		for _, c := range e.ClaimsFor(graph.PropertyAuthor) {
			node := c.Value.Item
			if node == "" || node == rootID || seen[node] {
				continue
			}
			seen[node] = true
			label := ""
			if a, ok := g.entities[node]; ok {
				label = a.Label(graph.DefaultVocabulary().Language)
			}
			out = append(out, graph.Coauthor{NodeID: node, Label: label})
		}
	}
	return out, nil
}

func authoredBy(e *graph.Entity, rootID string) bool {
	return slices.ContainsFunc(e.ClaimsFor(graph.PropertyAuthor), func(c graph.Claim) bool {
		return c.Value.Item == rootID
	})
}

// sortedIDs orders ids numerically where possible. Callers hold the lock.
func (g *Graph) sortedIDs() []string {
	ids := slices.Collect(maps.Keys(g.entities))
	slices.SortFunc(ids, compareIDs)
	return ids
}

func compareIDs(a, b string) int {
	na, errA := strconv.Atoi(strings.TrimPrefix(a, "Q"))
	nb, errB := strconv.Atoi(strings.TrimPrefix(b, "Q"))
	if errA == nil && errB == nil && na != nb {
		return na - nb
	}
	return strings.Compare(a, b)
}
