package layout

import (
	"github.com/matzehuels/topoviz/pkg/topology"
)

// BreadthFirst is the generic fallback. Each connected component of the
// visible subgraph is walked breadth-first from its first vertex in model
// order, neighbors in model order. Level k of every component shares one
// row; rows are centered on x=0 and stacked LevelGap apart. It places every
// visible vertex.
type BreadthFirst struct {
	cfg BreadthFirstConfig
}

// NewBreadthFirst creates the breadth-first strategy.
func NewBreadthFirst(cfg BreadthFirstConfig) *BreadthFirst { return &BreadthFirst{cfg: cfg} }

// Variant implements [Strategy].
func (b *BreadthFirst) Variant() Variant { return VariantBreadthFirst }

// Place implements [Strategy].
func (b *BreadthFirst) Place(m *topology.Model, visible []string) Placement {
	ids := visibleIDs(m, visible)
	out := Placement{Positions: make(map[string]Position, len(ids))}

	inSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		inSet[id] = true
	}

	var levels [][]string
	visited := make(map[string]bool, len(ids))
	for _, root := range ids {
		if visited[root] {
			continue
		}
		visited[root] = true
		current := []string{root}
		for depth := 0; len(current) > 0; depth++ {
			if depth == len(levels) {
				levels = append(levels, nil)
			}
			levels[depth] = append(levels[depth], current...)

			var next []string
			for _, id := range current {
				for _, n := range m.Neighbors(id) {
					if inSet[n] && !visited[n] {
						visited[n] = true
						next = append(next, n)
					}
				}
			}
			current = next
		}
	}

	for depth, level := range levels {
		mid := float64(len(level)-1) / 2
		for i, id := range level {
			out.Positions[id] = Position{
				X: (float64(i) - mid) * b.cfg.NodeGap,
				Y: float64(depth) * b.cfg.LevelGap,
			}
		}
	}
	return out
}
