package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stateviz/pkg/core/fsm"
	"github.com/matzehuels/stateviz/pkg/core/highlight"
	"github.com/matzehuels/stateviz/pkg/core/layout/radial"
)

// pointsPerInch converts pixel ring spacing to Graphviz inches.
const pointsPerInch = 72.0

// Options configures state machine rendering.
type Options struct {
	// Engine is the Graphviz layout engine. Defaults to "twopi", which places
	// the initial state at the center and rings by hop distance.
	Engine string
	// RingSpacing is the pixel distance between rings. Defaults to
	// [radial.DefaultRingSpacing].
	RingSpacing float64
	// Detailed adds degree and hop distance to each label.
	Detailed bool
	// Selection colors nodes and links. Nil renders with nothing highlighted.
	Selection *highlight.Selection
	// Pinned keeps the graph's current state positions instead of letting
	// Graphviz place them. The engine becomes neato, which honours pos.
	Pinned bool
}

func (o Options) withDefaults() Options {
	if o.Pinned {
		o.Engine = "neato"
	}
	if o.Engine == "" {
		o.Engine = "twopi"
	}
	if o.RingSpacing <= 0 {
		o.RingSpacing = radial.DefaultRingSpacing
	}
	if o.Selection == nil {
		o.Selection = highlight.New()
	}
	return o
}

// ToDOT converts a state machine graph to Graphviz DOT.
//
// The initial state is the layout root and is drawn with a double outline.
// Each mutual pair is drawn once as a two-headed edge; one-way links keep
// their direction.
func ToDOT(g *fsm.Graph, opts Options) string {
	opts = opts.withDefaults()
	sel := opts.Selection

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  layout=%s;\n", opts.Engine)
	if _, ok := g.Initial(); ok {
		fmt.Fprintf(&buf, "  root=%q;\n", g.InitialState)
	}
	fmt.Fprintf(&buf, "  ranksep=%.2f;\n", opts.RingSpacing/pointsPerInch)
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", highlight.ColorBackground)
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [penwidth=1];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		label := fmtLabel(g, n, opts.Detailed)
		attrs := fmtAttrs(g, n, sel, label)
		if opts.Pinned {
			attrs = append(attrs, fmt.Sprintf("pos=\"%.2f,%.2f!\"", n.X, -n.Y))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range g.Links {
		if l.IsMutual() && l.Mutual.Seq() < l.Seq() {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", l.Source.ID, l.Target.ID, strings.Join(fmtEdgeAttrs(l, sel), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(g *fsm.Graph, n *fsm.State, detailed bool) string {
	if !detailed {
		return n.Name
	}
	parts := []string{fmt.Sprintf("degree: %d", n.Degree())}
	if d := g.Distances().Distance(g.InitialState, n.ID); d != fsm.Unreachable {
		parts = append(parts, fmt.Sprintf("hops: %d", d))
	} else {
		parts = append(parts, "hops: -")
	}
	return n.Name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(g *fsm.Graph, n *fsm.State, sel *highlight.Selection, label string) []string {
	stroke, width := sel.NodeStroke(n)
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("fillcolor=%q", dotColor(sel.NodeFill(n))),
		fmt.Sprintf("color=%q", dotColor(stroke)),
		fmt.Sprintf("penwidth=%g", width),
	}
	if n.ID == g.InitialState {
		attrs = append(attrs, "peripheries=2")
	}
	return attrs
}

func fmtEdgeAttrs(l *fsm.Link, sel *highlight.Selection) []string {
	attrs := []string{fmt.Sprintf("color=%q", dotColor(sel.LinkColor(l)))}
	if l.IsMutual() {
		attrs = append(attrs, "dir=both", "arrowsize=0.6")
	} else if sel.ArrowLength(l) > 0 {
		attrs = append(attrs, "arrowsize=1.4", "penwidth=2")
	} else {
		attrs = append(attrs, "arrowsize=0.8")
	}
	return attrs
}

var rgbaRe = regexp.MustCompile(`^rgba\((\d+),\s*(\d+),\s*(\d+),\s*([0-9.]+)\)$`)

// dotColor translates CSS rgba() colors to Graphviz #rrggbbaa. Named and hex
// colors pass through.
func dotColor(c string) string {
	m := rgbaRe.FindStringSubmatch(c)
	if m == nil {
		return c
	}
	r, _ := strconv.Atoi(m[1])
	g, _ := strconv.Atoi(m[2])
	b, _ := strconv.Atoi(m[3])
	a, _ := strconv.ParseFloat(m[4], 64)
	return fmt.Sprintf("#%02x%02x%02x%02x", r, g, b, int(a*255+0.5))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
