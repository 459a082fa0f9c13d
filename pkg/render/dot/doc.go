// Package dot renders a serialized layout as a Graphviz drawing.
//
// Node positions come from the layout engine and are pinned (pos="x,y!");
// Graphviz only routes the edges, using the neato engine. Highlight classes
// are mapped onto colors and pen widths through the same [graph.Stylesheet]
// the JSON renderer contract ships, so both outputs agree.
//
//	d := dot.ToDOT(layout, dot.Options{Labels: true})
//	svg, err := dot.RenderSVG(ctx, d)
//
// [graph.Stylesheet]: github.com/matzehuels/topoviz/pkg/graph.Stylesheet
package dot
