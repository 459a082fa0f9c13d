package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/pathquery"
	"github.com/matzehuels/topoviz/pkg/selection"
)

// pathCommand queries one constrained path and optionally renders it.
func (c *CLI) pathCommand() *cobra.Command {
	var (
		constraint string
		direction  string
		excluded   []string
		variant    string
		render     renderFlags
	)
	cmd := &cobra.Command{
		Use:   "path <collection> <source> <destination>",
		Short: "Query a constrained path between two vertices",
		Long: `Query the graph service for the path between two vertices under a
constraint and print its hops, load summary and SRv6 data.

Constraints: shortest (default), latency, utilization, load, sovereignty.
Sovereignty queries avoid the countries given with --exclude.

With --format the topology is rendered with the path highlighted.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("direction") {
				cfg.API.Direction = direction
			}
			if cmd.Flags().Changed("exclude") {
				cfg.API.ExcludedCountries = excluded
			}
			if _, err := pathquery.ParseDirection(cfg.API.Direction); err != nil {
				return err
			}
			c.cfg = cfg
			return c.runPath(cmd.Context(), args[0], args[1], args[2], pathquery.Constraint(constraint), variant, render)
		},
	}
	cmd.Flags().StringVarP(&constraint, "constraint", "c", string(pathquery.Shortest), "path constraint")
	cmd.Flags().StringVar(&direction, "direction", "", "traversal direction: outbound, inbound, any (default from config)")
	cmd.Flags().StringSliceVar(&excluded, "exclude", nil, "countries to avoid with the sovereignty constraint")
	cmd.Flags().StringVarP(&variant, "variant", "t", "", "layout variant for rendering")
	render.register(cmd, "")
	_ = cmd.RegisterFlagCompletionFunc("constraint", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		out := make([]string, len(pathquery.Constraints))
		for i, c := range pathquery.Constraints {
			out[i] = string(c)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func (c *CLI) runPath(ctx context.Context, collection, src, dst string, constraint pathquery.Constraint, variant string, render renderFlags) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	runner, cleanup, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	m, err := runner.Model(ctx, collection, false)
	if err != nil {
		return err
	}
	ctrl, err := selection.New(m, selectionOptions(cfg, collection, newQuerier(cfg), nil, selection.ModeFree))
	if err != nil {
		return err
	}
	for _, id := range []string{src, dst} {
		if _, err := ctrl.Tap(id); err != nil {
			return err
		}
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Querying %s path %s %s %s...", constraint, src, iconArrow, dst))
	spinner.Start()
	st, err := ctrl.ChooseConstraint(ctx, constraint)
	spinner.Stop()
	switch {
	case errors.Is(err, errors.ErrCodePathNotFound):
		printWarning("No %s path from %s to %s", st.Constraint, src, dst)
		return nil
	case err != nil:
		return err
	}

	printSuccess("Path %s %s %s", src, iconArrow, dst)
	printAnnotation(*st.Annotation)

	if render.formats == "" {
		return nil
	}
	printNewline()
	base := basePath(render.output, fmt.Sprintf("%s.%s-%s", collection, sanitize(src), sanitize(dst)))
	return c.renderMarked(ctx, collection, variant, ctrl.Marks(), render, base)
}

// sanitize turns a vertex id such as "igp_node/r1" into a file name part.
func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, id)
}
