package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/topology"
)

// Topology is the raw topology payload.
type Topology struct {
	Vertices map[string]map[string]any `json:"vertices" bson:"vertices"`
	Edges    []map[string]any          `json:"edges" bson:"edges"`
}

// Model normalizes the payload into a [topology.Model].
func (t Topology) Model() (*topology.Model, error) {
	var vertices map[string]topology.Attrs
	if t.Vertices != nil {
		vertices = make(map[string]topology.Attrs, len(t.Vertices))
		for id, attrs := range t.Vertices {
			vertices[id] = topology.Attrs(attrs)
		}
	}
	var edges []topology.Attrs
	if t.Edges != nil {
		edges = make([]topology.Attrs, len(t.Edges))
		for i, e := range t.Edges {
			edges[i] = topology.Attrs(e)
		}
	}
	return topology.Build(vertices, edges)
}

// UnmarshalTopology decodes a topology payload. Syntax errors and payloads
// of the wrong shape are DATA_SHAPE errors.
func UnmarshalTopology(data []byte) (Topology, error) {
	var t Topology
	if err := json.Unmarshal(data, &t); err != nil {
		return Topology{}, errors.Wrap(errors.ErrCodeDataShape, err, "decode topology")
	}
	return t, nil
}

// ReadTopology decodes a topology payload from r.
func ReadTopology(r io.Reader) (Topology, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Topology{}, fmt.Errorf("read topology: %w", err)
	}
	return UnmarshalTopology(data)
}

// ReadTopologyFile decodes the topology payload stored at path.
func ReadTopologyFile(path string) (Topology, error) {
	f, err := os.Open(path)
	if err != nil {
		return Topology{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTopology(f)
}

// VertexCount returns the number of vertices in the payload.
func (t Topology) VertexCount() int { return len(t.Vertices) }
