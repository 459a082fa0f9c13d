package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/graph"
)

const fileExt = ".json"

// FileSource reads topology payloads from <dir>/<collection>.json.
type FileSource struct {
	dir string
}

// NewFileSource creates a source rooted at dir. The directory must exist.
func NewFileSource(dir string) (*FileSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "topology directory")
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s is not a directory", dir)
	}
	return &FileSource{dir: dir}, nil
}

// Name implements [Source].
func (s *FileSource) Name() string { return "file:" + s.dir }

// Dir returns the root directory.
func (s *FileSource) Dir() string { return s.dir }

// Collections implements [Source]. Files whose base name is not a valid
// collection name are skipped.
func (s *FileSource) Collections(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		name := strings.TrimSuffix(e.Name(), fileExt)
		if errors.ValidateCollectionName(name) == nil {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Topology implements [Source].
func (s *FileSource) Topology(ctx context.Context, collection string) (graph.Topology, error) {
	if err := checkName(collection); err != nil {
		return graph.Topology{}, err
	}
	path := filepath.Join(s.dir, collection+fileExt)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return graph.Topology{}, notFound(collection)
	}
	return graph.ReadTopologyFile(path)
}

var _ Source = (*FileSource)(nil)
