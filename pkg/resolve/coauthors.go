package resolve

import (
	"slices"
	"strings"

	"github.com/agentstation/authorgraph/pkg/graph"
)

// CoauthorIndex maps an exact co-author label to the nodes carrying it.
type CoauthorIndex struct {
	byName map[string][]string
	byNode map[string]string
}

// NewCoauthorIndex indexes co-authors by trimmed label.
func NewCoauthorIndex(coauthors []graph.Coauthor) CoauthorIndex {
	ix := CoauthorIndex{byName: map[string][]string{}, byNode: map[string]string{}}
	for _, c := range coauthors {
		label := strings.TrimSpace(c.Label)
		if label == "" || c.NodeID == "" {
			continue
		}
		if !slices.Contains(ix.byName[label], c.NodeID) {
			ix.byName[label] = append(ix.byName[label], c.NodeID)
		}
		ix.byNode[c.NodeID] = label
	}
	return ix
}

// Unique returns the node when exactly one co-author carries name.
func (ix CoauthorIndex) Unique(name string) (string, bool) {
	nodes := ix.byName[strings.TrimSpace(name)]
	if len(nodes) != 1 {
		return "", false
	}
	return nodes[0], true
}

// Nodes returns every node carrying name.
func (ix CoauthorIndex) Nodes(name string) []string {
	return slices.Clone(ix.byName[strings.TrimSpace(name)])
}

// Label returns the label of a known co-author node.
func (ix CoauthorIndex) Label(node string) string {
	return ix.byNode[node]
}

// Len returns the number of distinct labels.
func (ix CoauthorIndex) Len() int {
	return len(ix.byName)
}
