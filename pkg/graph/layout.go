package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/topoviz/pkg/highlight"
	"github.com/matzehuels/topoviz/pkg/layout"
	"github.com/matzehuels/topoviz/pkg/topology"
)

// Layout is the serialized result of one layout pass, ready for a renderer.
type Layout struct {
	Collection string                 `json:"collection,omitempty" bson:"collection,omitempty"`
	Variant    layout.Variant         `json:"variant" bson:"variant"`
	Fallback   bool                   `json:"fallback,omitempty" bson:"fallback,omitempty"`
	Reason     string                 `json:"reason,omitempty" bson:"reason,omitempty"`
	Elements   []Element              `json:"elements" bson:"elements"`
	Dropped    []topology.DroppedEdge `json:"dropped,omitempty" bson:"dropped,omitempty"`
	Styles     Stylesheet             `json:"styles,omitempty" bson:"styles,omitempty"`
}

// Export builds the serialized form of a layout pass.
func Export(collection string, m *topology.Model, res *layout.Result, marks highlight.Marks) Layout {
	l := Layout{
		Collection: collection,
		Elements:   Elements(m, res, marks),
		Dropped:    m.Dropped(),
	}
	if res != nil {
		l.Variant, l.Fallback, l.Reason = res.Variant, res.Fallback, res.Reason
	}
	return l
}

// Nodes returns the node elements.
func (l *Layout) Nodes() []Element { return l.group(GroupNodes) }

// Edges returns the edge elements.
func (l *Layout) Edges() []Element { return l.group(GroupEdges) }

func (l *Layout) group(g string) []Element {
	var out []Element
	for _, e := range l.Elements {
		if e.Group == g {
			out = append(out, e)
		}
	}
	return out
}

// MarshalLayout encodes l as indented JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout decodes a serialized layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteLayout writes l as JSON to w.
func WriteLayout(l Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteLayoutFile writes l to path.
func WriteLayoutFile(l Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteLayout(l, f)
}
