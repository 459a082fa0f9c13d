package highlight

import (
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/topoviz/pkg/pathquery"
	"github.com/matzehuels/topoviz/pkg/topology"
)

func TestWorkloadSeverityProperties(t *testing.T) {
	m, err := topology.Build(
		map[string]topology.Attrs{"workload/w1": {}, "workload/w2": {}},
		[]topology.Attrs{{"_id": "w", "_from": "workload/w1", "_to": "workload/w2"}},
	)
	if err != nil {
		t.Fatal(err)
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("edge keeps one severity class, the highest seen", prop.ForAll(
		func(loads []float64) bool {
			e := NewEngine(m)
			highest := Normal
			for _, l := range loads {
				res := &pathquery.Result{Found: true, Hops: []pathquery.Hop{
					{VertexID: "workload/w1"},
					{VertexID: "workload/w2", EdgeID: "w", Load: &l},
				}}
				e.ApplyWorkloadPaths([]*pathquery.Result{res})
				highest = max(highest, SeverityOf(l))
			}

			classes := e.Marks().EdgeClasses("w")
			severities := 0
			for _, c := range classes {
				if c == HighLoad || c == CriticalLoad {
					severities++
				}
			}
			if severities > 1 {
				return false
			}
			if want := highest.Class(); want != "" && !slices.Contains(classes, want) {
				return false
			}
			return e.Severity("w") == highest
		},
		gen.SliceOfN(6, gen.Float64Range(0, 100)),
	))

	properties.TestingRun(t)
}
