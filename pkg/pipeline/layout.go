package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/stateviz/pkg/core/fsm"
	"github.com/matzehuels/stateviz/pkg/core/layout/radial"
	"github.com/matzehuels/stateviz/pkg/core/render/nodelink"
	"github.com/matzehuels/stateviz/pkg/graph"
	"github.com/matzehuels/stateviz/pkg/observability"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout generates a complete layout for any visualization type.
// This is the unified entry point for generating serializable layout data.
//
// Both radial and nodelink layouts include:
//   - Graph structure (nodes, links, rings)
//   - Visualization-specific data (positions for radial, DOT for nodelink)
//
// Radial layouts move the states of g.
func GenerateLayout(ctx context.Context, g *fsm.Graph, opts Options) (graph.Layout, error) {
	start := time.Now()
	observability.Graph().OnLayoutStart(ctx, opts.Machine, g.NodeCount())

	var (
		l   graph.Layout
		err error
	)
	if opts.IsNodelink() {
		l, err = generateNodelinkLayout(g, opts)
	} else {
		l, err = generateRadialLayout(ctx, g, opts)
	}

	observability.Graph().OnLayoutComplete(ctx, opts.Machine, l.Ticks, time.Since(start), err)
	return l, err
}

// =============================================================================
// Radial
// =============================================================================

// generateRadialLayout runs the ring simulation from the initial
// phyllotaxis placement and exports the resulting positions.
func generateRadialLayout(ctx context.Context, g *fsm.Graph, opts Options) (graph.Layout, error) {
	force := radial.New(g.InitialState,
		radial.WithRingSpacing(opts.RingSpacing),
		radial.WithStrength(opts.Strength),
	)
	cooldown := opts.Ticks
	if opts.Settle {
		cooldown = 0
	}
	sim := radial.NewSimulation(g, force,
		radial.WithViewport(opts.Width, opts.Height),
		radial.WithCooldownTicks(cooldown),
	)
	sim.Initialize()
	if err := sim.Run(ctx); err != nil {
		return graph.Layout{}, err
	}
	opts.Logger.Debug("simulated layout", "machine", opts.Machine, "ticks", sim.Ticks(), "alpha", sim.Alpha())

	p := graph.FromFSM(opts.Machine, g)
	return graph.Layout{
		VizType:      graph.VizTypeRadial,
		Machine:      opts.Machine,
		InitialState: g.InitialState,
		Width:        opts.Width,
		Height:       opts.Height,
		Nodes:        p.Nodes,
		Links:        p.Links,
		Rings:        graph.RingsOf(p.Nodes),
		Ticks:        sim.Ticks(),
		RingSpacing:  opts.RingSpacing,
	}, nil
}

// =============================================================================
// Nodelink
// =============================================================================

// generateNodelinkLayout generates a nodelink layout carrying the DOT source
// Graphviz will place.
func generateNodelinkLayout(g *fsm.Graph, opts Options) (graph.Layout, error) {
	nlOpts := nodelink.Options{Engine: opts.Engine, RingSpacing: opts.RingSpacing, Detailed: opts.Detailed}
	dot := nodelink.ToDOT(g, nlOpts)
	return nodelink.Export(dot, opts.Machine, g, nlOpts, opts.Width, opts.Height)
}
