package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/highlight"
	"github.com/matzehuels/topoviz/pkg/layout"
)

const closPayload = `{
  "vertices": {
    "a": {"tier": "dc-tier-0", "name": "spine-1"},
    "b": {"tier": "dc-tier-0", "name": "spine-2"},
    "c": {"tier": "dc-prefix", "prefix": "10.0.0.0", "prefix_len": 24},
    "d": {"name": "untiered"}
  },
  "edges": [
    {"_id": "ac", "_from": "a", "_to": "c", "load": "75"},
    {"_id": "ca", "_from": "c", "_to": "a"},
    {"_id": "ax", "_from": "a", "_to": "missing"},
    {"_id": "ad", "_from": "a", "_to": "d"}
  ]
}`

func TestUnmarshalTopology(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"valid", closPayload, ""},
		{"syntax error", `{"vertices":`, errors.ErrCodeDataShape},
		{"missing edges", `{"vertices": {"a": {}}}`, errors.ErrCodeDataShape},
		{"missing vertices", `{"edges": []}`, errors.ErrCodeDataShape},
		{"empty but well formed", `{"vertices": {}, "edges": []}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo, err := UnmarshalTopology([]byte(tt.body))
			if err == nil {
				_, err = topo.Model()
			}
			if tt.code == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExport(t *testing.T) {
	topo, err := UnmarshalTopology([]byte(closPayload))
	if err != nil {
		t.Fatal(err)
	}
	m, err := topo.Model()
	if err != nil {
		t.Fatal(err)
	}
	res, err := layout.NewEngine(layout.DefaultConfig()).Run(layout.VariantClos, m, nil)
	if err != nil {
		t.Fatal(err)
	}

	e := highlight.NewEngine(m)
	e.MarkSelection("a", "c")
	l := Export("fabric", m, res, e.Marks())

	if l.Variant != layout.VariantClos || l.Fallback {
		t.Errorf("variant = %s fallback = %v", l.Variant, l.Fallback)
	}
	if len(l.Dropped) != 1 || l.Dropped[0].ID != "ax" {
		t.Errorf("dropped = %+v, want edge ax", l.Dropped)
	}

	nodes := l.Nodes()
	if len(nodes) != 4 {
		t.Fatalf("nodes = %d, want 4", len(nodes))
	}
	byID := map[string]Element{}
	for _, n := range nodes {
		byID[n.Data.ID] = n
	}
	if p := byID["c"].Position; p == nil || p.X != byID["a"].Position.X {
		t.Errorf("leaf c should sit under parent a: %+v vs %+v", p, byID["a"].Position)
	}
	if d := byID["d"]; !d.Data.Hidden || d.Position != nil {
		t.Errorf("untiered d should be hidden without position: %+v", d)
	}
	if !byID["a"].HasClass(highlight.SourceSelected) || !byID["c"].HasClass(highlight.DestSelected) {
		t.Errorf("selection classes missing: a=%q c=%q", byID["a"].Classes, byID["c"].Classes)
	}
	if byID["c"].Data.Label != "10.0.0.0/24" {
		t.Errorf("label = %q", byID["c"].Data.Label)
	}

	edges := l.Edges()
	if len(edges) != 2 {
		t.Fatalf("edges = %d, want 2 (ac deduplicated, ax dropped)", len(edges))
	}
	if edges[0].Data.ID != "ac" || edges[0].Data.Load == nil || *edges[0].Data.Load != 75 {
		t.Errorf("first edge = %+v", edges[0].Data)
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	topo, _ := UnmarshalTopology([]byte(closPayload))
	m, _ := topo.Model()
	res, _ := layout.NewEngine(layout.DefaultConfig()).Run(layout.VariantCircle, m, nil)
	l := Export("fabric", m, res, highlight.Marks{})
	l.Styles = DefaultStylesheet()

	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout() error: %v", err)
	}
	if len(back.Elements) != len(l.Elements) || back.Variant != layout.VariantCircle {
		t.Errorf("round trip lost data: %d elements, variant %s", len(back.Elements), back.Variant)
	}

	again, _ := MarshalLayout(back)
	first, _ := MarshalLayout(l)
	if !bytes.Equal(first, again) {
		t.Error("serialization is not stable")
	}
}

func TestDefaultStylesheet(t *testing.T) {
	s := DefaultStylesheet()
	for _, c := range highlight.Classes {
		if _, ok := s.ForClass(c); !ok {
			t.Errorf("no rule for class %s", c)
		}
	}
}

func TestReadTopologyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fabric.json")
	if err := os.WriteFile(path, []byte(closPayload), 0o644); err != nil {
		t.Fatal(err)
	}
	topo, err := ReadTopologyFile(path)
	if err != nil {
		t.Fatalf("ReadTopologyFile() error: %v", err)
	}
	if topo.VertexCount() != 4 {
		t.Errorf("VertexCount() = %d, want 4", topo.VertexCount())
	}
	if _, err := ReadTopologyFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("missing file should fail")
	}
}
