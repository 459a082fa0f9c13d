package topology

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestEdgeInvariants checks dedup and adjacency invariants over random
// edge lists drawn from a small vertex set.
func TestEdgeInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	vertices := map[string]Attrs{}
	for i := range 6 {
		vertices[fmt.Sprintf("n%d", i)] = Attrs{}
	}

	toEdges := func(pairs []int) []Attrs {
		edges := []Attrs{}
		for i := 0; i+1 < len(pairs); i += 2 {
			edges = append(edges, Attrs{
				"_from": fmt.Sprintf("n%d", pairs[i]),
				"_to":   fmt.Sprintf("n%d", pairs[i+1]),
			})
		}
		return edges
	}

	properties.Property("one edge per unordered pair", prop.ForAll(
		func(pairs []int) bool {
			m, err := Build(vertices, toEdges(pairs))
			if err != nil {
				return false
			}
			seen := map[Key]bool{}
			for _, e := range m.Edges() {
				if seen[e.Key()] {
					return false
				}
				seen[e.Key()] = true
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.Property("adjacency is symmetric", prop.ForAll(
		func(pairs []int) bool {
			m, err := Build(vertices, toEdges(pairs))
			if err != nil {
				return false
			}
			for _, id := range m.IDs() {
				for _, n := range m.Neighbors(id) {
					if !m.Adjacent(n, id) {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.Property("reversed duplicate collapses", prop.ForAll(
		func(a, b int) bool {
			if a == b {
				return true
			}
			m, _ := Build(vertices, toEdges([]int{a, b, b, a}))
			return len(m.Edges()) == 1
		},
		gen.IntRange(0, 5),
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t)
}
