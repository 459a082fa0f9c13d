package graph

import (
	"strings"

	"github.com/matzehuels/topoviz/pkg/highlight"
	"github.com/matzehuels/topoviz/pkg/layout"
	"github.com/matzehuels/topoviz/pkg/topology"
)

// Element groups.
const (
	GroupNodes = "nodes"
	GroupEdges = "edges"
)

// Element is one renderable node or edge.
type Element struct {
	Group    string           `json:"group" bson:"group"`
	Data     ElementData      `json:"data" bson:"data"`
	Position *layout.Position `json:"position,omitempty" bson:"position,omitempty"`
	Classes  string           `json:"classes" bson:"classes"`
}

// ElementData carries the fields renderers select on.
type ElementData struct {
	ID       string         `json:"id" bson:"id"`
	Label    string         `json:"label,omitempty" bson:"label,omitempty"`
	Category string         `json:"category,omitempty" bson:"category,omitempty"`
	Tier     string         `json:"tier,omitempty" bson:"tier,omitempty"`
	SIDs     []topology.SID `json:"sids,omitempty" bson:"sids,omitempty"`
	Source   string         `json:"source,omitempty" bson:"source,omitempty"`
	Target   string         `json:"target,omitempty" bson:"target,omitempty"`
	Load     *float64       `json:"load,omitempty" bson:"load,omitempty"`
	Hidden   bool           `json:"hidden,omitempty" bson:"hidden,omitempty"`
}

// HasClass reports whether the element carries class c.
func (e Element) HasClass(c highlight.Class) bool {
	for _, f := range strings.Fields(e.Classes) {
		if f == string(c) {
			return true
		}
	}
	return false
}

// Elements flattens a model into renderer elements. Nodes present in res
// get a position; hidden nodes are kept with Hidden set and no position.
// Edges whose endpoints are both visible are included. A nil res yields
// unpositioned nodes.
func Elements(m *topology.Model, res *layout.Result, marks highlight.Marks) []Element {
	hidden := map[string]bool{}
	if res != nil {
		for _, id := range res.Hidden {
			hidden[id] = true
		}
	}
	visible := func(id string) bool {
		if res == nil {
			return m.Has(id)
		}
		_, ok := res.Positions[id]
		return ok || hidden[id]
	}

	var out []Element
	for _, v := range m.Vertices() {
		if !visible(v.ID) {
			continue
		}
		el := Element{
			Group: GroupNodes,
			Data: ElementData{
				ID:       v.ID,
				Label:    v.Label,
				Category: string(v.Category),
				Tier:     v.Tier,
				SIDs:     v.SIDs,
				Hidden:   hidden[v.ID],
			},
			Classes: joinClasses(marks.NodeClasses(v.ID)),
		}
		if res != nil {
			if p, ok := res.Positions[v.ID]; ok {
				el.Position = &p
			}
		}
		out = append(out, el)
	}
	for _, e := range m.Edges() {
		if !visible(e.Source) || !visible(e.Target) {
			continue
		}
		out = append(out, Element{
			Group: GroupEdges,
			Data: ElementData{
				ID:     e.ID,
				Source: e.Source,
				Target: e.Target,
				Load:   e.Load,
			},
			Classes: joinClasses(marks.EdgeClasses(e.ID)),
		})
	}
	return out
}

func joinClasses(cs []highlight.Class) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = string(c)
	}
	return strings.Join(parts, " ")
}
