package topology_test

import (
	"fmt"

	"github.com/matzehuels/topoviz/pkg/topology"
)

func ExampleBuild() {
	m, err := topology.Build(
		map[string]topology.Attrs{
			"igp_node/r2": {"name": "r2"},
			"igp_node/r1": {"name": "r1"},
			"prefix/p1":   {"prefix": "10.1.0.0", "prefix_len": 24.0},
		},
		[]topology.Attrs{
			{"_id": "e1", "_from": "igp_node/r1", "_to": "igp_node/r2"},
			{"_id": "e2", "_from": "igp_node/r2", "_to": "igp_node/r1"},
			{"_id": "e3", "_from": "prefix/p1", "_to": "igp_node/r1"},
			{"_id": "e4", "_from": "prefix/p1", "_to": "igp_node/r9"},
		},
	)
	if err != nil {
		panic(err)
	}

	fmt.Println("igp:", m.ByCategory(topology.CategoryIGP))
	fmt.Println("edges:", len(m.Edges()))
	fmt.Println("dropped:", len(m.Dropped()))
	fmt.Println("neighbors of r1:", m.Neighbors("igp_node/r1"))
	// Output:
	// igp: [igp_node/r1 igp_node/r2]
	// edges: 2
	// dropped: 1
	// neighbors of r1: [igp_node/r2 prefix/p1]
}
