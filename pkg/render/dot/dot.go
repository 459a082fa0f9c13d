package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/topoviz/pkg/graph"
)

// pointsPerUnit converts layout units to Graphviz points.
const pointsPerUnit = 1.0

// Options configures DOT generation.
type Options struct {
	// Labels draws node labels. When false nodes are plain dots.
	Labels bool

	// Styles maps classes to colors. Defaults to [graph.DefaultStylesheet].
	Styles graph.Stylesheet
}

// ToDOT converts a layout to an undirected DOT graph with pinned node
// positions. Hidden and unpositioned nodes are left out together with
// their edges. Layout y grows downward, DOT y grows upward.
func ToDOT(l graph.Layout, opts Options) string {
	styles := opts.Styles
	if styles == nil {
		styles = graph.DefaultStylesheet()
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  overlap=true;\n")
	if opts.Labels {
		buf.WriteString("  node [shape=ellipse, style=filled, fillcolor=\"#5b6b7f\", fontcolor=white, fontsize=10, margin=\"0.05,0.02\"];\n")
	} else {
		buf.WriteString("  node [shape=point, width=0.15, fillcolor=\"#5b6b7f\"];\n")
	}
	buf.WriteString("  edge [color=\"#c3ccd6\", penwidth=1.5];\n")
	buf.WriteString("\n")

	drawn := map[string]bool{}
	for _, n := range l.Nodes() {
		if n.Data.Hidden || n.Position == nil {
			continue
		}
		drawn[n.Data.ID] = true
		attrs := []string{
			fmt.Sprintf("pos=\"%s,%s!\"", num(n.Position.X*pointsPerUnit), num(-n.Position.Y*pointsPerUnit)),
		}
		if opts.Labels {
			attrs = append(attrs, fmt.Sprintf("label=%q", n.Data.Label))
		} else {
			attrs = append(attrs, fmt.Sprintf("tooltip=%q", n.Data.Label))
		}
		attrs = append(attrs, nodeAttrs(styles, n)...)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Data.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges() {
		if !drawn[e.Data.Source] || !drawn[e.Data.Target] {
			continue
		}
		attrs := edgeAttrs(styles, e)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -- %q;\n", e.Data.Source, e.Data.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q [%s];\n", e.Data.Source, e.Data.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// cascade collects the style properties of every class rule matching el,
// later rules overriding earlier ones.
func cascade(styles graph.Stylesheet, el graph.Element) map[string]string {
	out := map[string]string{}
	for _, r := range styles {
		if !strings.HasPrefix(r.Selector, ".") {
			continue
		}
		if !hasClass(el.Classes, r.Selector[1:]) {
			continue
		}
		for k, v := range r.Style {
			out[k] = v
		}
	}
	return out
}

func hasClass(classes, c string) bool {
	for _, f := range strings.Fields(classes) {
		if f == c {
			return true
		}
	}
	return false
}

func nodeAttrs(styles graph.Stylesheet, n graph.Element) []string {
	s := cascade(styles, n)
	var attrs []string
	if v := s["background-color"]; v != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", v))
	}
	if v := s["border-color"]; v != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", v))
	}
	if v := s["border-width"]; v != "" {
		attrs = append(attrs, "penwidth="+v)
	}
	return attrs
}

func edgeAttrs(styles graph.Stylesheet, e graph.Element) []string {
	s := cascade(styles, e)
	var attrs []string
	if v := s["line-color"]; v != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", v))
	}
	if v := s["width"]; v != "" {
		attrs = append(attrs, "penwidth="+v)
	}
	return attrs
}

func num(f float64) string {
	if f == 0 {
		f = 0 // normalize -0
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// RenderSVG lays out the edges of a DOT graph with neato and renders SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz svg header with one sized from its
// viewBox, so the image scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
