package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentstation/authorgraph/pkg/errors"
)

// Client is the knowledge-graph transport used by the engine.
type Client interface {
	// LoadEntities returns a fresh snapshot per id. Missing ids are absent from the map.
	LoadEntities(ctx context.Context, ids []string) (map[string]*Entity, error)

	// Search returns node ids matching query. Queries combine free-text
	// terms with HasStatement filters.
	Search(ctx context.Context, query string) ([]string, error)

	// CreateItem writes a new node and returns its id.
	CreateItem(ctx context.Context, item *Entity) (string, error)

	// ApplyDiff writes the edits between original and modified and returns
	// the entity id. It is a no-op when the diff is empty.
	ApplyDiff(ctx context.Context, original, modified *Entity) (string, error)
}

// NamedPublication links a publication to a free-text author name on it.
type NamedPublication struct {
	PublicationID string
	Name          string
}

// Coauthor is a resolved author node sharing a publication with the root author.
type Coauthor struct {
	NodeID string
	Label  string
}

// QueryService answers the root-author questions the orchestrator needs.
type QueryService interface {
	// PublicationNames returns (publication, author name string) pairs for
	// publications authored by root.
	PublicationNames(ctx context.Context, rootID string) ([]NamedPublication, error)

	// Coauthors returns resolved co-author nodes of root with their labels.
	Coauthors(ctx context.Context, rootID string) ([]Coauthor, error)
}

// LoadEntity loads a single entity, returning a NotFoundError when absent.
func LoadEntity(ctx context.Context, c Client, id string) (*Entity, error) {
	entities, err := c.LoadEntities(ctx, []string{id})
	if err != nil {
		return nil, errors.WrapNetwork("load", id, err)
	}
	entity, ok := entities[id]
	if !ok || entity == nil {
		return nil, errors.NewNotFoundError("entity", id)
	}
	return entity, nil
}

// HasStatement builds a search filter requiring property=value.
func HasStatement(property, value string) string {
	return fmt.Sprintf("haswbstatement:%s=%s", property, value)
}

// NameQuery builds a search for a person name restricted to class.
func NameQuery(name, class string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), `"`, "")
	return fmt.Sprintf(`"%s" %s`, name, HasStatement(PropertyInstanceOf, class))
}
