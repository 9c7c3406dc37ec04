package memgraph

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/authorgraph/pkg/constants"
	"github.com/agentstation/authorgraph/pkg/errors"
	"github.com/agentstation/authorgraph/pkg/graph"
)

// snapshot is the on-disk form of a graph.
type snapshot struct {
	Entities []*graph.Entity `yaml:"entities"`
}

// Parse builds a graph from YAML snapshot data.
func Parse(data []byte) (*Graph, error) {
	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, errors.WrapParse("yaml", "graph snapshot", err)
	}
	g := New()
	for i, e := range snap.Entities {
		if e == nil {
			continue
		}
		if e.ID == "" {
			return nil, errors.NewParseError("yaml", "graph snapshot", "entity without id at index "+strconv.Itoa(i), nil)
		}
		if e.Labels == nil {
			e.Labels = make(map[string]string)
		}
		if e.Aliases == nil {
			e.Aliases = make(map[string][]string)
		}
		if e.Claims == nil {
			e.Claims = make(map[string][]graph.Claim)
		}
		g.put(e)
	}
	return g, nil
}

// Load reads a snapshot file.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(data)
}

// Marshal returns the YAML snapshot of the graph, entities ordered by id.
func (g *Graph) Marshal() ([]byte, error) {
	g.mu.RLock()
	snap := snapshot{Entities: make([]*graph.Entity, 0, len(g.entities))}
	for _, id := range g.sortedIDs() {
		snap.Entities = append(snap.Entities, g.entities[id].Clone())
	}
	g.mu.RUnlock()

	data, err := yaml.MarshalWithOptions(snap,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return nil, errors.WrapParse("yaml", "graph snapshot", err)
	}
	return data, nil
}

// Save writes the snapshot to path, creating parent directories.
func (g *Graph) Save(path string) error {
	data, err := g.Marshal()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return errors.WrapIO("create", dir, err)
		}
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
