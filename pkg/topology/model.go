package topology

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/topoviz/pkg/errors"
)

// Attrs is a raw attribute map as decoded from the topology payload.
type Attrs map[string]any

// String returns the string value of key, or "" when absent or not a string.
func (a Attrs) String(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// Float returns the numeric value of key. Numeric strings are accepted.
func (a Attrs) Float(key string) (float64, bool) {
	switch v := a[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// SID is one SRv6 segment identifier advertised by a vertex.
type SID struct {
	Value    string `json:"srv6_sid"`
	Behavior string `json:"srv6_endpoint_behavior,omitempty"`
}

// Vertex is a categorized topology node.
type Vertex struct {
	ID       string
	Category Category
	Tier     string
	Label    string
	SIDs     []SID
	Attrs    Attrs
}

// TierOrdinal returns the ordinal of the vertex tier, if it has a known one.
func (v Vertex) TierOrdinal() (int, bool) {
	if v.Tier == "" {
		return 0, false
	}
	return TierOrdinal(v.Tier)
}

// Key is the undirected identity of an edge: its endpoints in sorted order.
type Key struct {
	A, B string
}

// KeyOf returns the undirected key for an endpoint pair.
func KeyOf(source, target string) Key {
	if target < source {
		source, target = target, source
	}
	return Key{A: source, B: target}
}

// Edge is a deduplicated link between two vertices.
type Edge struct {
	ID     string
	Source string
	Target string
	Load   *float64 // percent in [0, 100]; nil when not reported
	Attrs  Attrs
}

// Key returns the undirected key of the edge.
func (e Edge) Key() Key { return KeyOf(e.Source, e.Target) }

// Other returns the endpoint of e opposite to id.
func (e Edge) Other(id string) string {
	if e.Source == id {
		return e.Target
	}
	return e.Source
}

// DroppedEdge records an input edge that could not be attached.
type DroppedEdge struct {
	ID     string
	Source string
	Target string
	Reason string
}

// Model is an immutable topology snapshot. Build it with [Build].
type Model struct {
	vertices   map[string]*Vertex
	order      []string
	rank       map[string]int
	byCategory map[Category][]string
	edges      []*Edge
	edgeByKey  map[Key]*Edge
	edgeByID   map[string]*Edge
	adjacency  map[string][]string
	dropped    []DroppedEdge
}

// noToken ranks vertices without a numeric token after all numbered ones.
const noToken = math.MaxInt

// Build normalizes a vertex map and an edge list into a [Model].
//
// A nil vertex map or a nil edge list is a DATA_SHAPE error. Empty ones are
// fine. Edges that reference missing vertices are dropped and recorded.
func Build(vertices map[string]Attrs, edges []Attrs) (*Model, error) {
	if vertices == nil {
		return nil, errors.New(errors.ErrCodeDataShape, "topology payload has no vertex map")
	}
	if edges == nil {
		return nil, errors.New(errors.ErrCodeDataShape, "topology payload has no edge list")
	}

	m := &Model{
		vertices:   make(map[string]*Vertex, len(vertices)),
		rank:       make(map[string]int, len(vertices)),
		byCategory: make(map[Category][]string),
		edgeByKey:  make(map[Key]*Edge, len(edges)),
		edgeByID:   make(map[string]*Edge, len(edges)),
		adjacency:  make(map[string][]string, len(vertices)),
	}

	tokens := make(map[string]int, len(vertices))
	for id, attrs := range vertices {
		if id == "" {
			continue
		}
		if attrs == nil {
			attrs = Attrs{}
		}
		v := &Vertex{
			ID:       id,
			Category: Classify(id, attrs),
			Tier:     attrs.String("tier"),
			Label:    labelFor(id, attrs),
			SIDs:     parseSIDs(attrs["sids"]),
			Attrs:    attrs,
		}
		m.vertices[id] = v
		tokens[id] = numericToken(v.Label, id)
		m.byCategory[v.Category] = append(m.byCategory[v.Category], id)
	}

	for cat, ids := range m.byCategory {
		slices.SortFunc(ids, func(a, b string) int {
			if ta, tb := tokens[a], tokens[b]; ta != tb {
				if ta < tb {
					return -1
				}
				return 1
			}
			return strings.Compare(a, b)
		})
		m.byCategory[cat] = ids
	}
	for _, cat := range Categories {
		m.order = append(m.order, m.byCategory[cat]...)
	}
	for i, id := range m.order {
		m.rank[id] = i
	}

	for i, raw := range edges {
		m.addEdge(i, raw)
	}
	for id, ns := range m.adjacency {
		slices.SortFunc(ns, func(a, b string) int { return m.rank[a] - m.rank[b] })
		m.adjacency[id] = ns
	}

	return m, nil
}

func (m *Model) addEdge(index int, raw Attrs) {
	source := firstString(raw, "_from", "source", "from")
	target := firstString(raw, "_to", "target", "to")
	id := firstString(raw, "_id", "id")
	if id == "" {
		id = fmt.Sprintf("%s~%s", source, target)
	}

	drop := func(reason string) {
		m.dropped = append(m.dropped, DroppedEdge{ID: id, Source: source, Target: target, Reason: reason})
	}
	switch {
	case source == "" || target == "":
		drop(fmt.Sprintf("edge #%d has no endpoints", index))
		return
	case m.vertices[source] == nil:
		drop("missing source vertex " + source)
		return
	case m.vertices[target] == nil:
		drop("missing target vertex " + target)
		return
	}

	key := KeyOf(source, target)
	if _, dup := m.edgeByKey[key]; dup {
		return
	}

	e := &Edge{ID: id, Source: source, Target: target, Attrs: raw}
	if load, ok := raw.Float("load"); ok {
		load = math.Max(0, math.Min(100, load))
		e.Load = &load
	}
	m.edges = append(m.edges, e)
	m.edgeByKey[key] = e
	if _, taken := m.edgeByID[id]; !taken {
		m.edgeByID[id] = e
	}
	if source != target {
		m.adjacency[source] = append(m.adjacency[source], target)
		m.adjacency[target] = append(m.adjacency[target], source)
	}
}

// =============================================================================
// Accessors
// =============================================================================

// Len returns the number of vertices.
func (m *Model) Len() int { return len(m.order) }

// Vertex returns the vertex with the given id.
func (m *Model) Vertex(id string) (Vertex, bool) {
	v, ok := m.vertices[id]
	if !ok {
		return Vertex{}, false
	}
	return *v, true
}

// Has reports whether id is a vertex of the model.
func (m *Model) Has(id string) bool {
	_, ok := m.vertices[id]
	return ok
}

// IDs returns every vertex id in global order: categories in [Categories]
// order, each in category-index order.
func (m *Model) IDs() []string { return slices.Clone(m.order) }

// Vertices returns every vertex in global order.
func (m *Model) Vertices() []Vertex {
	out := make([]Vertex, len(m.order))
	for i, id := range m.order {
		out[i] = *m.vertices[id]
	}
	return out
}

// Order returns the global rank of id, or -1 if it is not in the model.
func (m *Model) Order(id string) int {
	r, ok := m.rank[id]
	if !ok {
		return -1
	}
	return r
}

// ByCategory returns the ids of a category in category-index order.
func (m *Model) ByCategory(c Category) []string { return slices.Clone(m.byCategory[c]) }

// HasCategory reports whether at least one vertex has category c.
func (m *Model) HasCategory(c Category) bool { return len(m.byCategory[c]) > 0 }

// IndexInCategory returns the position of id within its category.
func (m *Model) IndexInCategory(id string) (int, bool) {
	v, ok := m.vertices[id]
	if !ok {
		return 0, false
	}
	i := slices.Index(m.byCategory[v.Category], id)
	return i, i >= 0
}

// Neighbors returns the neighbors of id in global order.
func (m *Model) Neighbors(id string) []string { return slices.Clone(m.adjacency[id]) }

// Adjacent reports whether a and b share an edge.
func (m *Model) Adjacent(a, b string) bool {
	_, ok := m.edgeByKey[KeyOf(a, b)]
	return ok && a != b
}

// EdgeBetween returns the edge joining a and b in either stored direction.
func (m *Model) EdgeBetween(a, b string) (Edge, bool) {
	e, ok := m.edgeByKey[KeyOf(a, b)]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// Edge returns the edge with the given id.
func (m *Model) Edge(id string) (Edge, bool) {
	e, ok := m.edgeByID[id]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// Edges returns the deduplicated edges in input order.
func (m *Model) Edges() []Edge {
	out := make([]Edge, len(m.edges))
	for i, e := range m.edges {
		out[i] = *e
	}
	return out
}

// Dropped returns the input edges that referenced unknown vertices.
func (m *Model) Dropped() []DroppedEdge { return slices.Clone(m.dropped) }

// =============================================================================
// Attribute helpers
// =============================================================================

func firstString(a Attrs, keys ...string) string {
	for _, k := range keys {
		if s := a.String(k); s != "" {
			return s
		}
	}
	return ""
}

// labelFor prefers name, then prefix (with its length), then the id suffix.
func labelFor(id string, a Attrs) string {
	if name := a.String("name"); name != "" {
		return name
	}
	if prefix := a.String("prefix"); prefix != "" {
		if n, ok := a.Float("prefix_len"); ok {
			return fmt.Sprintf("%s/%d", prefix, int(n))
		}
		return prefix
	}
	if i := strings.LastIndexByte(id, '/'); i >= 0 && i < len(id)-1 {
		return id[i+1:]
	}
	return id
}

// numericToken returns the first run of digits in label, falling back to
// the id suffix, or noToken when neither has one.
func numericToken(label, id string) int {
	if n, ok := firstNumber(label); ok {
		return n
	}
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		id = id[i+1:]
	}
	if n, ok := firstNumber(id); ok {
		return n
	}
	return noToken
}

func firstNumber(s string) (int, bool) {
	start := strings.IndexAny(s, "0123456789")
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		// Overflowing runs still sort ahead of token-less vertices.
		return noToken - 1, true
	}
	return n, true
}

func parseSIDs(raw any) []SID {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []SID
	for _, item := range list {
		switch v := item.(type) {
		case string:
			if v != "" {
				out = append(out, SID{Value: v})
			}
		case map[string]any, Attrs:
			a := toAttrs(v)
			if s := firstString(a, "srv6_sid", "sid"); s != "" {
				out = append(out, SID{Value: s, Behavior: a.String("srv6_endpoint_behavior")})
			}
		}
	}
	return out
}

func toAttrs(v any) Attrs {
	switch m := v.(type) {
	case Attrs:
		return m
	case map[string]any:
		return Attrs(m)
	}
	return nil
}
