package highlight

import (
	"maps"
	"slices"

	"github.com/matzehuels/topoviz/pkg/pathquery"
	"github.com/matzehuels/topoviz/pkg/topology"
)

// Annotation is the plain-data summary shown next to a highlighted path.
type Annotation struct {
	Source      string                `json:"source,omitempty"`
	Destination string                `json:"destination,omitempty"`
	Constraint  pathquery.Constraint  `json:"constraint,omitempty"`
	Chain       []string              `json:"chain,omitempty"`
	SIDList     []string              `json:"srv6_sid_list,omitempty"`
	USID        string                `json:"srv6_usid,omitempty"`
	Load        pathquery.LoadSummary `json:"load"`
	HopCount    int                   `json:"hopcount"`
	VertexCount int                   `json:"vertex_count"`
}

// Marks is a snapshot of the classes applied to nodes and edges. Class
// lists are sorted.
type Marks struct {
	Nodes map[string][]Class `json:"nodes"`
	Edges map[string][]Class `json:"edges"`
}

// NodeClasses returns the classes of a node.
func (m Marks) NodeClasses(id string) []Class { return m.Nodes[id] }

// EdgeClasses returns the classes of an edge.
func (m Marks) EdgeClasses(id string) []Class { return m.Edges[id] }

// Empty reports whether nothing is marked.
func (m Marks) Empty() bool { return len(m.Nodes) == 0 && len(m.Edges) == 0 }

type classSet map[Class]struct{}

// Engine holds the marks for one topology.
type Engine struct {
	model    *topology.Model
	nodes    map[string]classSet
	edges    map[string]classSet
	severity map[string]Severity
}

// NewEngine returns an engine with no marks.
func NewEngine(m *topology.Model) *Engine {
	return &Engine{
		model:    m,
		nodes:    make(map[string]classSet),
		edges:    make(map[string]classSet),
		severity: make(map[string]Severity),
	}
}

// Model returns the topology the engine marks.
func (e *Engine) Model() *topology.Model { return e.model }

// ApplyPath replaces any path marks with res, marking every hop vertex and
// every edge joining consecutive hops as [Selected]. A result without a path
// is PATH_NOT_FOUND and leaves the marks untouched.
func (e *Engine) ApplyPath(res *pathquery.Result) (Annotation, error) {
	if err := res.Err(); err != nil {
		return Annotation{}, err
	}
	e.ClearPaths()
	vertices, edges := e.resolve(res)
	for _, id := range vertices {
		e.addNode(id, Selected)
	}
	for _, hop := range edges {
		e.addEdge(hop.id, Selected)
	}
	return annotate(res), nil
}

// ApplyWorkloadPaths adds workload marks for every found result. Marks from
// earlier calls are kept. Each edge carries at most one severity class, the
// highest seen so far. Results without a path are skipped.
func (e *Engine) ApplyWorkloadPaths(results []*pathquery.Result) []Annotation {
	var out []Annotation
	for _, res := range results {
		if res.Err() != nil {
			continue
		}
		vertices, edges := e.resolve(res)
		for _, id := range vertices {
			e.addNode(id, WorkloadPath)
		}
		for _, hop := range edges {
			e.addEdge(hop.id, WorkloadPath)
			e.raise(hop.id, e.loadOf(hop))
		}
		out = append(out, annotate(res))
	}
	return out
}

// ApplyChain replaces any path marks with a sequential chain. The chain's
// SRv6 SIDs are collected from its vertices in order.
func (e *Engine) ApplyChain(chain []string) Annotation {
	e.ClearPaths()
	ann := Annotation{Chain: slices.Clone(chain)}
	var loads []float64
	for i, id := range chain {
		if !e.model.Has(id) {
			continue
		}
		e.addNode(id, Sequential)
		v, _ := e.model.Vertex(id)
		for _, sid := range v.SIDs {
			ann.SIDList = append(ann.SIDList, sid.Value)
		}
		if i == 0 {
			continue
		}
		if edge, ok := e.model.EdgeBetween(chain[i-1], id); ok {
			e.addEdge(edge.ID, Sequential)
			if edge.Load != nil {
				loads = append(loads, *edge.Load)
			}
		}
	}
	if len(chain) > 0 {
		ann.Source = chain[0]
		ann.Destination = chain[len(chain)-1]
	}
	ann.VertexCount = len(chain)
	ann.HopCount = max(len(chain)-1, 0)
	ann.Load = summarize(loads)
	return ann
}

// MarkSelection sets the free-mode endpoint marks. An empty id clears that
// endpoint.
func (e *Engine) MarkSelection(source, destination string) {
	e.removeNodeClass(SourceSelected)
	e.removeNodeClass(DestSelected)
	if source != "" && e.model.Has(source) {
		e.addNode(source, SourceSelected)
	}
	if destination != "" && e.model.Has(destination) {
		e.addNode(destination, DestSelected)
	}
}

// MarkMembers marks every workload member as [SourceSelected], replacing
// any previous endpoint marks.
func (e *Engine) MarkMembers(ids []string) {
	e.removeNodeClass(SourceSelected)
	e.removeNodeClass(DestSelected)
	for _, id := range ids {
		if e.model.Has(id) {
			e.addNode(id, SourceSelected)
		}
	}
}

// ClearPaths removes every path and severity mark, keeping selection marks.
func (e *Engine) ClearPaths() {
	for _, c := range pathClasses {
		e.removeNodeClass(c)
		for id, set := range e.edges {
			delete(set, c)
			if len(set) == 0 {
				delete(e.edges, id)
			}
		}
	}
	clear(e.severity)
}

// Clear removes every mark.
func (e *Engine) Clear() {
	clear(e.nodes)
	clear(e.edges)
	clear(e.severity)
}

// Severity returns the workload severity recorded for an edge.
func (e *Engine) Severity(edgeID string) Severity { return e.severity[edgeID] }

// Marks returns a snapshot of the current marks.
func (e *Engine) Marks() Marks {
	return Marks{Nodes: snapshot(e.nodes), Edges: snapshot(e.edges)}
}

// hopEdge is a model edge used by a path, with the load the path reported
// for it.
type hopEdge struct {
	id   string
	load *float64
}

// resolve maps a result onto model ids. Hop vertices unknown to the model
// are skipped. The edge between consecutive hops is the hop edge when the
// model has it, otherwise the edge joining the two vertices in either
// direction.
func (e *Engine) resolve(res *pathquery.Result) (vertices []string, edges []hopEdge) {
	prev := ""
	for i, h := range res.Hops {
		if e.model.Has(h.VertexID) {
			vertices = append(vertices, h.VertexID)
		}
		if i > 0 {
			if id, ok := e.edgeFor(h, prev); ok {
				edges = append(edges, hopEdge{id: id, load: h.Load})
			}
		}
		prev = h.VertexID
	}
	return vertices, edges
}

func (e *Engine) edgeFor(h pathquery.Hop, prev string) (string, bool) {
	if h.EdgeID != "" {
		if edge, ok := e.model.Edge(h.EdgeID); ok {
			return edge.ID, true
		}
	}
	if edge, ok := e.model.EdgeBetween(prev, h.VertexID); ok {
		return edge.ID, true
	}
	return "", false
}

// loadOf prefers the load reported by the path over the model's.
func (e *Engine) loadOf(h hopEdge) float64 {
	if h.load != nil {
		return *h.load
	}
	if edge, ok := e.model.Edge(h.id); ok && edge.Load != nil {
		return *edge.Load
	}
	return 0
}

func (e *Engine) raise(edgeID string, load float64) {
	sev := SeverityOf(load)
	if sev <= e.severity[edgeID] {
		return
	}
	if old := e.severity[edgeID].Class(); old != "" {
		delete(e.edges[edgeID], old)
	}
	e.severity[edgeID] = sev
	e.addEdge(edgeID, sev.Class())
}

func (e *Engine) addNode(id string, c Class) {
	if e.nodes[id] == nil {
		e.nodes[id] = classSet{}
	}
	e.nodes[id][c] = struct{}{}
}

func (e *Engine) addEdge(id string, c Class) {
	if e.edges[id] == nil {
		e.edges[id] = classSet{}
	}
	e.edges[id][c] = struct{}{}
}

func (e *Engine) removeNodeClass(c Class) {
	for id, set := range e.nodes {
		delete(set, c)
		if len(set) == 0 {
			delete(e.nodes, id)
		}
	}
}

func snapshot(in map[string]classSet) map[string][]Class {
	out := make(map[string][]Class, len(in))
	for id, set := range in {
		out[id] = slices.Sorted(maps.Keys(set))
	}
	return out
}

func annotate(res *pathquery.Result) Annotation {
	return Annotation{
		Source:      res.Source,
		Destination: res.Destination,
		Constraint:  res.Constraint,
		SIDList:     slices.Clone(res.SRv6.SIDList),
		USID:        res.SRv6.USID,
		Load:        res.Load,
		HopCount:    res.HopCount,
		VertexCount: res.VertexCount,
	}
}

func summarize(loads []float64) pathquery.LoadSummary {
	var s pathquery.LoadSummary
	for _, l := range loads {
		s.Total += l
		s.Highest = max(s.Highest, l)
	}
	if len(loads) > 0 {
		s.Average = s.Total / float64(len(loads))
	}
	return s
}
