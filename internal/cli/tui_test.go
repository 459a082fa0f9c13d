package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/pathquery"
	"github.com/matzehuels/topoviz/pkg/selection"
	"github.com/matzehuels/topoviz/pkg/topology"
)

func newTestController(t *testing.T, q pathquery.Querier) *selection.Controller {
	t.Helper()
	m, err := topology.Build(
		map[string]topology.Attrs{
			"igp_node/r1": {"name": "r1"},
			"igp_node/r2": {"name": "r2"},
			"igp_node/r3": {"name": "r3"},
		},
		[]topology.Attrs{
			{"_id": "e1", "_from": "igp_node/r1", "_to": "igp_node/r2", "load": 95},
			{"_id": "e2", "_from": "igp_node/r2", "_to": "igp_node/r3"},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	ctrl, err := selection.New(m, selection.Options{Collection: "fabric", Querier: q})
	if err != nil {
		t.Fatal(err)
	}
	return ctrl
}

var twoHops = pathquery.QuerierFunc(func(_ context.Context, req pathquery.Request) (*pathquery.Result, error) {
	if req.Destination == "igp_node/r3" {
		return &pathquery.Result{}, nil
	}
	return &pathquery.Result{Found: true, HopCount: 1, Hops: []pathquery.Hop{{VertexID: req.Source}, {VertexID: req.Destination, EdgeID: "e1"}}}, nil
})

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds keys to m, running any returned command synchronously.
func press(m exploreModel, keys ...string) exploreModel {
	for _, k := range keys {
		next, cmd := m.Update(key(k))
		m = next.(exploreModel)
		if cmd == nil {
			continue
		}
		if msg := cmd(); msg != nil {
			if _, quit := msg.(tea.QuitMsg); quit {
				continue
			}
			next, _ = m.Update(msg)
			m = next.(exploreModel)
		}
	}
	return m
}

func TestExploreFreeModePath(t *testing.T) {
	m := newExploreModel(context.Background(), newTestController(t, twoHops))

	m = press(m, "enter", "down", "enter")
	if m.state.Phase != selection.PhaseDestinationSelected {
		t.Fatalf("phase after two taps = %s", m.state.Phase)
	}

	m = press(m, "4") // load
	if m.state.Phase != selection.PhasePathHighlighted || m.state.Constraint != pathquery.Load {
		t.Fatalf("state after query = %+v", m.state)
	}
	if len(m.marks.EdgeClasses("e1")) == 0 {
		t.Error("path edge should be marked")
	}
	if view := m.View(); !strings.Contains(view, "1 hops") || !strings.Contains(view, "igp_node/r1") {
		t.Errorf("view missing path summary:\n%s", view)
	}

	m = press(m, "esc")
	if m.state.Phase != selection.PhaseIdle || !m.marks.Empty() {
		t.Errorf("esc should clear the selection, got %s", m.state.Phase)
	}
}

func TestExploreNoPath(t *testing.T) {
	m := newExploreModel(context.Background(), newTestController(t, twoHops))
	m = press(m, "enter", "down", "down", "enter", "1")
	if m.message != "no path found" || m.err != nil {
		t.Errorf("message = %q, err = %v", m.message, m.err)
	}
	if !m.state.NoPath {
		t.Error("state should record the missing path")
	}
}

func TestExploreConstraintNeedsSelection(t *testing.T) {
	m := newExploreModel(context.Background(), newTestController(t, twoHops))
	m = press(m, "2")
	if m.busy || m.message == "" {
		t.Errorf("constraint without a selection should only set a hint, got busy=%v message=%q", m.busy, m.message)
	}
}

func TestExploreWorkload(t *testing.T) {
	m := newExploreModel(context.Background(), newTestController(t, twoHops))
	m = press(m, "m", "m")
	if m.state.Mode != selection.ModeWorkload {
		t.Fatalf("mode = %s, want workload", m.state.Mode)
	}
	m = press(m, "enter", "down", "enter", "down", "enter", "c")
	if m.err != nil {
		t.Fatalf("compute error: %v", m.err)
	}
	if m.state.Phase != selection.PhaseComputed || !strings.Contains(m.message, "1 paths, 2 failed") {
		t.Errorf("after compute: phase %s, message %q", m.state.Phase, m.message)
	}
}

func TestExploreQueryFailure(t *testing.T) {
	failing := pathquery.QuerierFunc(func(context.Context, pathquery.Request) (*pathquery.Result, error) {
		return nil, errors.New(errors.ErrCodePathQuery, "graph service unavailable")
	})
	m := newExploreModel(context.Background(), newTestController(t, failing))
	m = press(m, "enter", "down", "enter", "1")
	if !errors.Has(m.err, errors.ErrCodePathQuery) {
		t.Fatalf("err = %v, want PATH_QUERY_FAILED", m.err)
	}
	if !strings.Contains(m.View(), "graph service unavailable") {
		t.Error("view should show the query error")
	}
}

func TestExploreCursorBounds(t *testing.T) {
	m := newExploreModel(context.Background(), newTestController(t, twoHops))
	m = press(m, "up", "down", "down", "down", "down")
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestNextMode(t *testing.T) {
	tests := map[selection.Mode]selection.Mode{
		selection.ModeFree:       selection.ModeSequential,
		selection.ModeSequential: selection.ModeWorkload,
		selection.ModeWorkload:   selection.ModeFree,
		"":                       selection.ModeFree,
	}
	for in, want := range tests {
		if got := nextMode(in); got != want {
			t.Errorf("nextMode(%q) = %q, want %q", in, got, want)
		}
	}
}
