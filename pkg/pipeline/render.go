package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/topoviz/pkg/graph"
	"github.com/matzehuels/topoviz/pkg/observability"
	"github.com/matzehuels/topoviz/pkg/render"
	"github.com/matzehuels/topoviz/pkg/render/dot"
)

// RenderFromLayout renders a serialized layout to every requested format.
// SVG is produced at most once and reused for PDF and PNG.
func RenderFromLayout(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	dotOpts := dot.Options{Labels: opts.Labels, Styles: l.Styles}

	var svg []byte
	svgFor := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = dot.RenderSVG(ctx, dot.ToDOT(l, dotOpts))
		return svg, err
	}

	for _, name := range opts.Formats {
		f, err := render.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		data, err := renderFormat(ctx, f, l, opts, dotOpts, svgFor)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", f, err)
		}
		artifacts[string(f)] = data
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, f render.Format, l graph.Layout, opts Options, dotOpts dot.Options, svgFor func() ([]byte, error)) (data []byte, err error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, string(f))
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, string(f), time.Since(start), err) }()

	switch f {
	case render.FormatJSON:
		return graph.MarshalLayout(l)
	case render.FormatDOT:
		return []byte(dot.ToDOT(l, dotOpts)), nil
	case render.FormatSVG:
		return svgFor()
	case render.FormatPDF:
		svg, err := svgFor()
		if err != nil {
			return nil, err
		}
		return render.ToPDF(ctx, svg)
	case render.FormatPNG:
		svg, err := svgFor()
		if err != nil {
			return nil, err
		}
		return render.ToPNG(ctx, svg, opts.Scale)
	}
	return nil, fmt.Errorf("unsupported format %q", f)
}
