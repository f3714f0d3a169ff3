package nodelink

import (
	"fmt"

	"github.com/matzehuels/stateviz/pkg/core/fsm"
	"github.com/matzehuels/stateviz/pkg/graph"
)

// Export packages a DOT string and graph metadata into the unified layout
// format.
//
// Graphviz computes positions while rendering, so the layout carries the DOT
// source rather than coordinates. Use this to cache a render or to return it
// from the API.
func Export(dot, machine string, g *fsm.Graph, opts Options, width, height float64) (graph.Layout, error) {
	opts = opts.withDefaults()
	result := graph.Layout{
		VizType:     graph.VizTypeNodelink,
		Machine:     machine,
		DOT:         dot,
		Width:       width,
		Height:      height,
		Engine:      opts.Engine,
		RingSpacing: opts.RingSpacing,
	}

	if g != nil {
		p := graph.FromFSM(machine, g)
		result.InitialState = p.InitialState
		result.Nodes = p.Nodes
		result.Links = p.Links
		result.Rings = graph.RingsOf(p.Nodes)
	}

	return result, nil
}

// Parse extracts the DOT string from a serialized nodelink layout.
//
// Returns an error if the layout is not a nodelink type or is missing the DOT string.
func Parse(layout graph.Layout) (string, error) {
	if layout.VizType != "" && layout.VizType != graph.VizTypeNodelink {
		return "", fmt.Errorf("invalid viz_type for nodelink layout: %q", layout.VizType)
	}

	if layout.DOT == "" {
		return "", fmt.Errorf("nodelink layout must contain DOT string")
	}

	return layout.DOT, nil
}
