// Package render turns positioned, highlighted topologies into images.
//
// # Formats
//
// [ParseFormat] accepts json, dot, svg, pdf and png. JSON is the renderer
// contract from [graph.Layout] and needs no rendering here. DOT and SVG come
// from the [dot] subpackage, which pins every node at its computed position
// and lets Graphviz draw the edges. PDF and PNG are converted from SVG with
// the external rsvg-convert tool:
//
//	svg, err := dot.RenderSVG(ctx, layout, dot.Options{})
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [graph.Layout]: github.com/matzehuels/topoviz/pkg/graph.Layout
// [dot]: github.com/matzehuels/topoviz/pkg/render/dot
package render
