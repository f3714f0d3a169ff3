package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/stateviz/pkg/core/fsm"
	"github.com/matzehuels/stateviz/pkg/core/highlight"
	"github.com/matzehuels/stateviz/pkg/core/render"
	"github.com/matzehuels/stateviz/pkg/core/render/nodelink"
	"github.com/matzehuels/stateviz/pkg/graph"
	"github.com/matzehuels/stateviz/pkg/observability"
)

// RenderFromLayout renders every requested format from a layout.
//
// The graph is rebuilt from the layout payload, so a cached layout renders
// without the registry. Radial layouts keep their simulated positions;
// nodelink layouts let their Graphviz engine place states.
func RenderFromLayout(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	g, err := graph.ToFSM(l.Payload())
	if err != nil {
		return nil, fmt.Errorf("rebuild graph: %w", err)
	}
	dot := layoutDOT(l, g, opts)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var svg []byte
	for _, format := range opts.Formats {
		start := time.Now()
		observability.Graph().OnRenderStart(ctx, l.Machine, format)

		var data []byte
		switch format {
		case FormatSVG, FormatPNG, FormatPDF:
			if svg == nil {
				svg, err = nodelink.RenderSVG(ctx, dot)
			}
			if err == nil {
				data, err = convertSVG(ctx, svg, format)
			}
		case FormatDOT:
			data = []byte(dot)
		case FormatJSON:
			data, err = graph.MarshalLayout(l)
		default:
			err = fmt.Errorf("unsupported format: %s", format)
		}

		observability.Graph().OnRenderComplete(ctx, l.Machine, format, time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// Selection returns the highlight context for the hover and selection in
// opts, resolved against g.
func Selection(g *fsm.Graph, opts Options) *highlight.Selection {
	sel := highlight.New()
	sel.Select(opts.Selected)
	if target := opts.Hover; target != "" {
		sel.ForNode(g, target)
	} else if opts.Selected != "" {
		sel.ForNode(g, opts.Selected)
		sel.Hover = ""
	}
	return sel
}

func layoutDOT(l graph.Layout, g *fsm.Graph, opts Options) string {
	plain := opts.Hover == "" && opts.Selected == "" && !opts.Detailed
	if l.IsNodelink() && plain && l.DOT != "" {
		return l.DOT
	}
	nlOpts := nodelink.Options{
		Engine:      l.Engine,
		RingSpacing: l.RingSpacing,
		Detailed:    opts.Detailed,
		Selection:   Selection(g, opts),
		Pinned:      l.IsRadial(),
	}
	return nodelink.ToDOT(g, nlOpts)
}

func convertSVG(ctx context.Context, svg []byte, format string) ([]byte, error) {
	switch format {
	case FormatPNG:
		return render.ToPNG(ctx, svg, 2.0)
	case FormatPDF:
		return render.ToPDF(ctx, svg)
	}
	return svg, nil
}
