package pipeline

import (
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topoviz/pkg/cache"
	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/graph"
	"github.com/matzehuels/topoviz/pkg/highlight"
	"github.com/matzehuels/topoviz/pkg/layout"
)

// memSource serves fixed payloads and counts reads.
type memSource struct {
	topologies map[string]graph.Topology
	reads      atomic.Int32
}

func (s *memSource) Name() string { return "mem" }

func (s *memSource) Collections(context.Context) ([]string, error) {
	var out []string
	for k := range s.topologies {
		out = append(out, k)
	}
	return out, nil
}

func (s *memSource) Topology(_ context.Context, c string) (graph.Topology, error) {
	s.reads.Add(1)
	t, ok := s.topologies[c]
	if !ok {
		return graph.Topology{}, errors.New(errors.ErrCodeCollectionNotFound, "collection %q not found", c)
	}
	return t, nil
}

func fabric() graph.Topology {
	return graph.Topology{
		Vertices: map[string]map[string]any{
			"igp_node/r1": {"name": "r1"},
			"igp_node/r2": {"name": "r2"},
			"bgp_node/a1": {},
			"prefix/p1":   {"prefix": "10.0.0.0", "prefix_len": 24},
		},
		Edges: []map[string]any{
			{"_id": "e1", "_from": "igp_node/r1", "_to": "igp_node/r2", "load": 75},
			{"_id": "e2", "_from": "igp_node/r2", "_to": "prefix/p1"},
			{"_id": "e3", "_from": "igp_node/r1", "_to": "igp_node/gone"},
		},
	}
}

func newRunner(t *testing.T, c cache.Cache) (*Runner, *memSource) {
	t.Helper()
	src := &memSource{topologies: map[string]graph.Topology{
		"fabric": fabric(),
		"broken": {Vertices: map[string]map[string]any{}},
	}}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return NewRunner(src, c, nil, nil, logger), src
}

func TestRunnerLayout(t *testing.T) {
	r, _ := newRunner(t, nil)
	res, err := r.Layout(context.Background(), "fabric", Options{Variant: "ring"})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	if res.Stats.VertexCount != 4 || res.Stats.EdgeCount != 2 || res.Stats.Dropped != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.Placement.Variant != layout.VariantRing || res.Placement.Fallback {
		t.Errorf("placement = %s", res.Placement)
	}
	if len(res.Layout.Nodes()) != 4 || len(res.Layout.Edges()) != 2 {
		t.Errorf("layout has %d nodes, %d edges", len(res.Layout.Nodes()), len(res.Layout.Edges()))
	}
	if len(res.Layout.Dropped) != 1 {
		t.Errorf("dropped = %v", res.Layout.Dropped)
	}
	if len(res.Layout.Styles) == 0 {
		t.Error("layout should carry the stylesheet")
	}
	if res.TopologyHash == "" {
		t.Error("topology hash should be set")
	}
}

func TestRunnerLayoutErrors(t *testing.T) {
	r, _ := newRunner(t, nil)
	ctx := context.Background()

	tests := []struct {
		name       string
		collection string
		opts       Options
		code       errors.Code
	}{
		{"unknown collection", "absent", Options{}, errors.ErrCodeCollectionNotFound},
		{"missing edge list", "broken", Options{}, errors.ErrCodeDataShape},
		{"bad variant", "fabric", Options{Variant: "spiral"}, errors.ErrCodeInvalidVariant},
		{"bad name", "no such", Options{}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Layout(ctx, tt.collection, tt.opts)
			if !errors.Has(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRunnerCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r, src := newRunner(t, fc)
	ctx := context.Background()
	opts := Options{Collection: "fabric", Variant: "circle", Formats: []string{"json", "dot"}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.FetchHit || first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.FetchHit || !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if src.reads.Load() != 1 {
		t.Errorf("source read %d times, want 1", src.reads.Load())
	}
	if string(first.Artifacts["dot"]) != string(second.Artifacts["dot"]) {
		t.Error("cached artifact differs from rendered one")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.FetchHit || src.reads.Load() != 2 {
		t.Error("refresh should bypass the cache")
	}
}

func TestRunnerMarksReachArtifacts(t *testing.T) {
	r, _ := newRunner(t, nil)
	marks := highlight.Marks{
		Nodes: map[string][]highlight.Class{"igp_node/r1": {highlight.SourceSelected}},
		Edges: map[string][]highlight.Class{"e1": {highlight.Selected, highlight.HighLoad}},
	}
	res, err := r.Execute(context.Background(), Options{
		Collection: "fabric",
		Formats:    []string{"json", "dot"},
		Marks:      marks,
	})
	if err != nil {
		t.Fatal(err)
	}

	l, err := graph.UnmarshalLayout(res.Artifacts["json"])
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, e := range l.Edges() {
		if e.Data.ID == "e1" {
			found = e.HasClass(highlight.HighLoad) && e.HasClass(highlight.Selected)
		}
	}
	if !found {
		t.Error("edge e1 should carry its marks in the JSON layout")
	}
	if !strings.Contains(string(res.Artifacts["dot"]), `color="#fb8c00"`) {
		t.Errorf("DOT output should color the high-load edge:\n%s", res.Artifacts["dot"])
	}
}

func TestRunnerWithoutSource(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil, log.NewWithOptions(io.Discard, log.Options{}))
	if _, err := r.Layout(context.Background(), "fabric", Options{}); !errors.Has(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
	if _, err := r.Collections(context.Background()); err == nil {
		t.Error("Collections without a source should fail")
	}
}

func TestRunnerModel(t *testing.T) {
	r, src := newRunner(t, nil)
	m, err := r.Model(context.Background(), "fabric", false)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Has("prefix/p1") || src.reads.Load() != 1 {
		t.Errorf("model missing vertices or source not read")
	}
	if _, err := r.Model(context.Background(), "broken", false); !errors.Has(err, errors.ErrCodeDataShape) {
		t.Errorf("broken payload error = %v, want DATA_SHAPE", err)
	}
}
