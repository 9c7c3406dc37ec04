// Package local is a source backed by YAML fixture files. Each file
// describes one registry: its id, priority, the identifier property it keys
// publications by, and the author lists it holds.
package local

import (
	"context"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/cases"

	"github.com/agentstation/authorgraph/pkg/authors"
	"github.com/agentstation/authorgraph/pkg/errors"
	"github.com/agentstation/authorgraph/pkg/graph"
	"github.com/agentstation/authorgraph/pkg/sources"
)

// DefaultPriority applies when a fixture sets none.
const DefaultPriority = 10

// Publication is one fixture entry.
type Publication struct {
	IDs     map[string]string `yaml:"ids"`
	Authors []authors.Record  `yaml:"authors"`
}

// File is the fixture file layout.
type File struct {
	ID           sources.ID    `yaml:"id"`
	Priority     int           `yaml:"priority"`
	Key          string        `yaml:"key"`
	Publications []Publication `yaml:"publications"`
}

// Source serves publications from a fixture.
type Source struct {
	file File
}

// New creates a source from a parsed fixture.
func New(f File) (*Source, error) {
	if f.ID == "" {
		f.ID = sources.LocalID
	}
	if f.Key == "" {
		return nil, errors.NewValidationError("key", f.Key, "fixture "+f.ID.String()+" needs a key property")
	}
	if f.Priority == 0 {
		f.Priority = DefaultPriority
	}
	return &Source{file: f}, nil
}

// Parse reads a fixture from YAML data.
func Parse(data []byte, name string) (*Source, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	if f.ID == "" {
		f.ID = sources.ID(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	}
	return New(f)
}

// LoadDir reads every *.yaml and *.yml file in dir, in name order.
func LoadDir(dir string) ([]*Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapIO("read", dir, err)
	}
	var out []*Source
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapIO("read", path, err)
		}
		src, err := Parse(data, path)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

// ID returns the source identifier.
func (s *Source) ID() sources.ID { return s.file.ID }

// Priority returns the source priority.
func (s *Source) Priority() int { return s.file.Priority }

// Key returns the identifier property publications are keyed by.
func (s *Source) Key() string { return s.file.Key }

// PublicationID returns the known identifier under the fixture's key.
func (s *Source) PublicationID(_ *graph.Entity, ids map[string]string) (string, bool) {
	id, ok := ids[s.file.Key]
	return id, ok && id != ""
}

// Authors returns a copy of the publication's author list.
func (s *Source) Authors(ctx context.Context, publicationID string) ([]authors.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, p := range s.file.Publications {
		if equalFold(p.IDs[s.file.Key], publicationID) {
			return authors.CloneAll(p.Authors), nil
		}
	}
	return nil, errors.NewNotFoundError("publication", publicationID)
}

// Identifiers returns the ids of every publication sharing a known id.
func (s *Source) Identifiers(ctx context.Context, known map[string]string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	found := make(map[string]string)
	for _, p := range s.file.Publications {
		if shares(p.IDs, known) {
			maps.Copy(found, p.IDs)
		}
	}
	return found, nil
}

func shares(ids, known map[string]string) bool {
	for _, prop := range slices.Sorted(maps.Keys(ids)) {
		if v, ok := known[prop]; ok && equalFold(v, ids[prop]) {
			return true
		}
	}
	return false
}

func equalFold(a, b string) bool {
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(a)) == fold.String(strings.TrimSpace(b))
}
