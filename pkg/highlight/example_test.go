package highlight_test

import (
	"fmt"

	"github.com/matzehuels/topoviz/pkg/highlight"
	"github.com/matzehuels/topoviz/pkg/pathquery"
	"github.com/matzehuels/topoviz/pkg/topology"
)

func Example() {
	m, _ := topology.Build(
		map[string]topology.Attrs{"workload/w1": {}, "workload/w2": {}, "workload/w3": {}},
		[]topology.Attrs{
			{"_id": "e12", "_from": "workload/w1", "_to": "workload/w2", "load": 80},
			{"_id": "e23", "_from": "workload/w2", "_to": "workload/w3", "load": 20},
		},
	)
	e := highlight.NewEngine(m)

	a := &pathquery.Result{Found: true, Hops: []pathquery.Hop{{VertexID: "workload/w1"}, {VertexID: "workload/w2"}}}
	b := &pathquery.Result{Found: true, Hops: []pathquery.Hop{{VertexID: "workload/w2"}, {VertexID: "workload/w1"}}}
	e.ApplyWorkloadPaths([]*pathquery.Result{a, b})

	marks := e.Marks()
	fmt.Println(marks.EdgeClasses("e12"))
	fmt.Println(marks.EdgeClasses("e23"))
	// Output:
	// [critical-load workload-path]
	// []
}
