package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/selection"
)

// workloadCommand groups the workload batch commands. Runs live only for
// the duration of one invocation.
func (c *CLI) workloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workload",
		Short: "Compute workload load paths",
	}
	cmd.AddCommand(c.workloadRunCommand())
	return cmd
}

func (c *CLI) workloadRunCommand() *cobra.Command {
	var (
		variant string
		asJSON  bool
		render  renderFlags
	)
	cmd := &cobra.Command{
		Use:   "run <collection> <vertex> <vertex> [vertex...]",
		Short: "Query the load path between every pair of workload members",
		Long: `Query the load-constrained path between every pair of the given vertices,
n*(n-1)/2 queries in all, and overlay the found paths. Pairs whose query
fails or finds no path are reported without aborting the batch.

With --format the topology is rendered with every found path highlighted.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWorkload(cmd.Context(), args[0], args[1:], variant, asJSON, render)
		},
	}
	cmd.Flags().StringVarP(&variant, "variant", "t", "", "layout variant for rendering")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run as JSON")
	render.register(cmd, "")
	return cmd
}

func (c *CLI) runWorkload(ctx context.Context, collection string, members []string, variant string, asJSON bool, render renderFlags) error {
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
	store := selection.NewMemoryStore(nil, 1)
	ctrl, err := selection.New(m, selectionOptions(cfg, collection, newQuerier(cfg), store, selection.ModeWorkload))
	if err != nil {
		return err
	}
	for _, id := range members {
		if _, err := ctrl.Tap(id); err != nil {
			return err
		}
	}
	if st := ctrl.State(); len(st.Members) != len(members) {
		return errors.New(errors.ErrCodeInvalidInput, "workload members must be distinct")
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Computing %d workload pairs...", len(members)*(len(members)-1)/2))
	spinner.Start()
	prog := newProgress(c.Logger)
	run, err := ctrl.Compute(ctx)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Computed workload %s", run.ID))

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(run); err != nil {
			return err
		}
	} else {
		printRun(run)
	}
	if len(run.Paths) == 0 {
		printWarning("No workload pair produced a path")
	}

	if render.formats == "" {
		return nil
	}
	printNewline()
	base := basePath(render.output, collection+".workload")
	return c.renderMarked(ctx, collection, variant, ctrl.Marks(), render, base)
}
