package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stateviz/pkg/graph"
	"github.com/matzehuels/stateviz/pkg/pipeline"
)

// layoutCommand creates the layout command for computing visualization layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags   layoutFlags
		output  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "layout [registry] [machine]",
		Short: "Compute the layout of a machine",
		Long: `Compute the layout of a machine.

Radial layouts (-t radial, the default) run the ring simulation: every state
is pulled toward the ring matching its hop distance from the initial state.
The simulation stops after --ticks ticks, or when it settles with --settle.
Nodelink layouts (-t nodelink) carry DOT source for a Graphviz engine.

The output is a layout.json file that 'render' turns into SVG/PNG/PDF/DOT.
Results are cached locally for faster subsequent runs.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, c.Config.Layout)
			if err != nil {
				return err
			}
			opts.Refresh = refresh
			return c.runLayout(cmd.Context(), args, opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <machine>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")
	flags.register(cmd)

	return cmd
}

// runLayout builds the machine, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, args []string, opts pipeline.Options, output string, noCache bool) error {
	reg, err := c.loadRegistry(args[0])
	if err != nil {
		return err
	}
	opts.Machine = machineArg(reg, args, 1)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Building %s...", opts.Machine))
	spinner.Start()

	g, buildHit, err := runner.BuildWithCacheInfo(ctx, reg, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.Update(fmt.Sprintf("Computing %s layout...", opts.VizType))

	layout, cacheHit, err := runner.GenerateLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = opts.Machine + ".layout.json"
	}

	if err := graph.WriteLayoutFile(layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(g.NodeCount(), g.LinkCount(), g.MutualPairs(), buildHit && cacheHit)
	if layout.IsRadial() {
		printDetail("%d rings, %d ticks", len(layout.Rings), layout.Ticks)
	}
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}
