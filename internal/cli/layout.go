package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topoviz/pkg/graph"
	"github.com/matzehuels/topoviz/pkg/layout"
	"github.com/matzehuels/topoviz/pkg/pipeline"
)

// collectionsCommand lists the collections the configured source offers.
func (c *CLI) collectionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List topology collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := c.newRunner(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer cleanup()

			names, err := runner.Collections(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printInfo("No collections in %s", runner.Source.Name())
				return nil
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	}
}

// layoutFlags are shared by the commands that lay out a collection.
type layoutFlags struct {
	variant string
	visible []string
	noCache bool
	refresh bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	variants := make([]string, len(layout.Variants))
	for i, v := range layout.Variants {
		variants[i] = string(v)
	}
	cmd.Flags().StringVarP(&f.variant, "variant", "t", string(pipeline.DefaultVariant),
		"layout variant: "+strings.Join(variants, ", "))
	cmd.Flags().StringSliceVar(&f.visible, "visible", nil, "vertex ids to show (default: all)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "refetch the topology, bypassing the cache")
	_ = cmd.RegisterFlagCompletionFunc("variant", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return variants, cobra.ShellCompDirectiveNoFileComp
	})
}

func (f *layoutFlags) options(collection string) pipeline.Options {
	return pipeline.Options{
		Collection: collection,
		Variant:    f.variant,
		Visible:    f.visible,
		Refresh:    f.refresh,
	}
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "layout <collection>",
		Short: "Compute the layout of a topology collection",
		Long: `Compute the layout of a topology collection.

The output is a layout.json file holding every element with its position,
highlight classes and the stylesheet. It can be rendered to DOT, SVG, PDF or
PNG with 'topoviz render --from'.

Results are cached, so repeated runs with the same topology and options are
instant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], flags, output)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <collection>.layout.json)")
	return cmd
}

func (c *CLI) runLayout(ctx context.Context, collection string, flags layoutFlags, output string) error {
	runner, cleanup, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer cleanup()

	spinner := newSpinner(ctx, fmt.Sprintf("Laying out %s...", collection))
	spinner.Start()
	res, err := runner.Layout(ctx, collection, flags.options(collection))
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if output == "" {
		output = collection + ".layout.json"
	}
	if err := graph.WriteLayoutFile(res.Layout, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete: %s", res.Placement)
	printFile(output)
	printStats(res.Stats.VertexCount, res.Stats.EdgeCount, res.Stats.Dropped, res.CacheInfo.LayoutHit)
	if res.Placement.Fallback {
		printWarning("Fell back to breadth-first: %s", res.Placement.Reason)
	}
	printNewline()
	printNextStep("Render", "topoviz render --from "+output)
	return nil
}
