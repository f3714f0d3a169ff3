package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stateviz/pkg/pipeline"
)

// graphCommand creates the graph command, which runs the whole pipeline for
// one machine: build, layout and render.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		layout layoutFlags
		render renderFlags
	)

	cmd := &cobra.Command{
		Use:   "graph [registry] [machine]",
		Short: "Build, lay out and render a machine",
		Long: `Build, lay out and render a machine from a registry file.

The machine defaults to the registry's default machine. Output goes to
<machine>.<format> unless -o is given.

Examples:
  stateviz graph machines.yaml Player
  stateviz graph machines.yaml Player -f svg,dot --hover Walk
  stateviz graph machines.yaml Door -t nodelink -f png -o door.png`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := layout.options(cmd, c.Config.Layout)
			if err != nil {
				return err
			}
			if err := render.apply(&opts); err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), args, opts, render)
		},
	}
	layout.register(cmd)
	render.register(cmd)
	return cmd
}

func (c *CLI) runGraph(ctx context.Context, args []string, opts pipeline.Options, flags renderFlags) error {
	reg, err := c.loadRegistry(args[0])
	if err != nil {
		return err
	}
	opts.Machine = machineArg(reg, args, 1)

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s (%s)...", opts.Machine, strings.Join(opts.Formats, ", ")))
	spinner.Start()

	result, err := runner.Execute(ctx, reg, opts)
	if err != nil {
		spinner.StopWithError("Pipeline failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := flags.output
	if base == "" {
		base = filepath.Join(".", opts.Machine)
	} else {
		base = basePath(flags.output, flags.output)
	}
	return writeArtifacts(artifactWriteParams{
		artifacts:   result.Artifacts,
		formats:     opts.Formats,
		base:        base,
		output:      flags.output,
		states:      result.Stats.NodeCount,
		transitions: result.Stats.LinkCount,
		mutual:      result.Graph.MutualPairs(),
		cacheHit:    result.CacheInfo.RenderHit,
	})
}
