package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/graph"
	"github.com/matzehuels/topoviz/pkg/highlight"
	"github.com/matzehuels/topoviz/pkg/pipeline"
)

// renderFlags holds the output flags shared by render, path and workload.
type renderFlags struct {
	formats string
	output  string
	labels  bool
	scale   float64
}

func (f *renderFlags) register(cmd *cobra.Command, defaultFormats string) {
	cmd.Flags().StringVarP(&f.formats, "format", "f", defaultFormats, "output format(s): json, dot, svg, pdf, png (comma-separated)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output base path (default: derived from the input)")
	cmd.Flags().BoolVar(&f.labels, "labels", false, "draw vertex labels")
	cmd.Flags().Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
}

// apply copies the render flags into opts.
func (f *renderFlags) apply(opts *pipeline.Options) {
	opts.Formats = parseFormats(f.formats)
	opts.Labels = f.labels
	opts.Scale = f.scale
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags  layoutFlags
		render renderFlags
		from   string
	)
	cmd := &cobra.Command{
		Use:   "render [collection]",
		Short: "Render a topology collection or a layout file",
		Long: `Render a topology collection, or a layout.json produced by 'topoviz layout',
to one or more output formats.

Examples:
  topoviz render fabric -t clos -f svg,png
  topoviz render --from fabric.layout.json -f pdf`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case from != "" && len(args) > 0:
				return errors.New(errors.ErrCodeInvalidInput, "pass either a collection or --from, not both")
			case from != "":
				return c.renderLayoutFile(cmd.Context(), from, render)
			case len(args) == 0:
				return errors.New(errors.ErrCodeInvalidInput, "collection required (or --from layout.json)")
			}
			opts := flags.options(args[0])
			render.apply(&opts)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, flags.noCache, basePath(render.output, args[0]))
		},
	}
	flags.register(cmd)
	render.register(cmd, "svg")
	cmd.Flags().StringVar(&from, "from", "", "render an existing layout.json instead of a collection")
	return cmd
}

// runRender runs the full pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, noCache bool, base string) error {
	runner, cleanup, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer cleanup()

	opts.Logger = c.Logger
	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s...", opts.Collection))
	spinner.Start()
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	paths, err := writeArtifacts(res.Artifacts, opts.Formats, base)
	if err != nil {
		return err
	}
	printSuccess("Rendered %s (%s)", opts.Collection, res.Placement)
	for _, p := range paths {
		printFile(p)
	}
	printStats(res.Stats.VertexCount, res.Stats.EdgeCount, res.Stats.Dropped, res.CacheInfo.RenderHit)
	return nil
}

// renderLayoutFile renders a serialized layout without touching a source.
func (c *CLI) renderLayoutFile(ctx context.Context, path string, flags renderFlags) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read layout %s: %w", path, err)
	}
	l, err := graph.UnmarshalLayout(data)
	if err != nil {
		return err
	}
	opts := pipeline.Options{Collection: l.Collection}
	flags.apply(&opts)
	return c.renderLayout(ctx, l, opts, basePath(flags.output, strings.TrimSuffix(path, ".layout.json")))
}

// renderLayout renders l in opts.Formats and writes the files under base.
func (c *CLI) renderLayout(ctx context.Context, l graph.Layout, opts pipeline.Options, base string) error {
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	// Rendering a finished layout needs neither a source nor a cache.
	runner := pipeline.NewRunner(nil, nil, nil, nil, c.Logger)
	opts.Logger = c.Logger
	artifacts, err := runner.Render(ctx, l, opts)
	if err != nil {
		return err
	}
	paths, err := writeArtifacts(artifacts, opts.Formats, base)
	if err != nil {
		return err
	}
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// renderMarked lays out collection with marks applied and writes the
// requested formats. It backs the --format flag of path and workload.
func (c *CLI) renderMarked(ctx context.Context, collection, variant string, marks highlight.Marks, flags renderFlags, base string) error {
	runner, cleanup, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := pipeline.Options{Collection: collection, Variant: variant, Marks: marks, Logger: c.Logger}
	flags.apply(&opts)
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	paths, err := writeArtifacts(res.Artifacts, opts.Formats, base)
	if err != nil {
		return err
	}
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// basePath returns output with a known format extension stripped, or input
// when output is empty.
func basePath(output, input string) string {
	if output == "" {
		return input
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if slices.Contains([]string{"json", "dot", "svg", "pdf", "png"}, strings.ToLower(ext)) {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	return output
}

// writeArtifacts writes base.<format> for each format and returns the paths
// in format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, base string) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			return paths, fmt.Errorf("no %s output produced", f)
		}
		p := base + "." + f
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
