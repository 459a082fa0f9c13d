// Package graph provides the serialization types at topoviz's boundaries.
//
// Two formats live here:
//
//   - [Topology]: the input payload, a vertex map plus an edge list, as
//     served by the graph service, stored in files, or read from MongoDB
//   - [Layout]: the renderer contract, an element list with positions and
//     class marks plus the class-keyed [Stylesheet]
//
// # Topology Payload
//
//	{
//	  "vertices": {"igp_node/r1": {"name": "r1", "tier": "wan-core"}},
//	  "edges": [{"_id": "l/1", "_from": "igp_node/r1", "_to": "igp_node/r2", "load": 35}]
//	}
//
// [Topology.Model] hands the payload to [topology.Build]. A payload without
// a vertex map or an edge list is a DATA_SHAPE error.
//
// # Renderer Contract
//
// [Export] flattens a model, a resolved layout pass and a highlight snapshot
// into elements:
//
//	[{"group": "nodes", "data": {...}, "position": {"x": 0, "y": 0}, "classes": "selected"},
//	 {"group": "edges", "data": {"id": ..., "source": ..., "target": ...}, "classes": ""}]
//
// Nodes come in model order and edges in input order, so identical inputs
// always serialize to identical bytes.
//
// [topology.Build]: github.com/matzehuels/topoviz/pkg/topology.Build
package graph
