package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stateviz/pkg/graph"
	"github.com/matzehuels/stateviz/pkg/pipeline"
)

// renderFlags are the selection and output flags shared by graph and render.
type renderFlags struct {
	formats  string
	output   string
	hover    string
	selected string
	detailed bool
	noCache  bool
	refresh  bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&f.hover, "hover", "", "highlight a state and its neighbors as if hovered")
	cmd.Flags().StringVar(&f.selected, "selected", "", "highlight a state as selected")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "label states with degree and hop distance")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
}

func (f *renderFlags) apply(opts *pipeline.Options) error {
	opts.Formats = parseFormats(f.formats)
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	opts.Hover = f.hover
	opts.Selected = f.selected
	opts.Detailed = f.detailed
	opts.Refresh = f.refresh
	return nil
}

// renderCommand creates the render command for rendering from a layout.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Render artifacts from a computed layout",
		Long: `Render artifacts from a computed layout.

The render command takes a layout.json file (produced by 'layout') and renders
it to SVG, PNG, PDF or DOT. The layout carries the machine and every state
position, so the registry is not needed.

Radial layouts keep their simulated positions; nodelink layouts are placed
by their Graphviz engine.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts pipeline.Options
			setCLIDefaults(&opts, c.Config.Layout)
			if err := flags.apply(&opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// runRender loads the layout and renders it.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, flags renderFlags) error {
	layout, err := graph.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	opts.Machine = layout.Machine
	opts.VizType = layout.VizType

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", layout.Machine))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	return writeArtifacts(artifactWriteParams{
		artifacts:   artifacts,
		formats:     opts.Formats,
		base:        basePath(flags.output, input),
		output:      flags.output,
		states:      len(layout.Nodes),
		transitions: len(layout.Links),
		cacheHit:    cacheHit,
	})
}

// =============================================================================
// Artifact Output
// =============================================================================

type artifactWriteParams struct {
	artifacts   map[string][]byte
	formats     []string
	base        string
	output      string
	states      int
	transitions int
	mutual      int
	cacheHit    bool
}

// writeArtifacts writes each artifact to <base>.<format>. A single format
// with an explicit output path is written to that path as given.
func writeArtifacts(p artifactWriteParams) error {
	paths := make(map[string]string, len(p.formats))
	for _, format := range p.formats {
		paths[format] = p.base + "." + format
	}
	if len(p.formats) == 1 && p.output != "" && filepath.Ext(p.output) != "" {
		paths[p.formats[0]] = p.output
	}

	formats := slices.Clone(p.formats)
	slices.Sort(formats)
	written := make([]string, 0, len(formats))
	for _, format := range formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("no %s artifact rendered", format)
		}
		path := paths[format]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	printSuccess("Rendered %d artifact(s)", len(written))
	for _, path := range written {
		printFile(path)
	}
	printStats(p.states, p.transitions, p.mutual, p.cacheHit)
	return nil
}
