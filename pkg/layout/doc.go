// Package layout assigns 2D coordinates to topology vertices.
//
// Each [Strategy] is a pure function of a [topology.Model] and the set of
// visible vertex ids. It returns a [Placement]: a position for every vertex
// it could place, plus, for the tiered Clos strategy only, the vertices it
// deliberately hides. Strategies never iterate Go maps to assign positions;
// every ordering comes from the model's category index.
//
// # Variants
//
//   - [VariantRing]: concentric rings per category (igp, bgp, prefix, workload)
//   - [VariantClos]: tiered fabric, one band per tier ordinal
//   - [VariantCircle]: one ring in category order
//   - [VariantPolarfly]: one ellipse per polarfly class
//   - [VariantBreadthFirst]: generic BFS levels, used as the fallback
//
// # Resolution
//
// [Engine.Run] resolves a whole pass. If any visible vertex that is not
// hidden is missing from the placement, every partial position is thrown
// away and the breadth-first strategy lays out the full visible set
// instead. The returned [Result] records that this happened and why.
//
//	eng := layout.NewEngine(layout.DefaultConfig())
//	res, err := eng.Run(layout.VariantClos, model, nil)
//	if res.Fallback {
//	    log.Warn("layout fell back", "reason", res.Reason)
//	}
package layout
