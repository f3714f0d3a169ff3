// Package nodelink renders state machine graphs with Graphviz.
//
// Graphviz handles both layout and drawing, so the DOT source is the
// intermediate representation:
//
//	fsm.Graph → ToDOT() → DOT → RenderSVG() → SVG
//
// # Layout
//
// The default engine is twopi, Graphviz's radial layout. The initial state is
// the root and every other state lands on a ring by hop distance, matching the
// ring layout of pkg/core/layout/radial. Ring spacing is given in pixels and
// converted to Graphviz ranksep.
//
// Other engines can be chosen with [Options.Engine]:
//
//   - twopi: Radial (default)
//   - dot: Hierarchical
//   - neato: Spring model
//   - circo: Circular
//
// # Styling
//
// Nodes are filled with their state color and drawn with white labels on a
// dark background. Each mutual pair becomes a single two-headed edge. When
// [Options.Selection] is set, nodes and links take the highlight palette from
// pkg/core/highlight: mutual links skyblue, links leaving the hovered state
// yellow, other highlighted links magenta, everything else dimmed.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Use [Export] and [Parse] to carry DOT through the cache or the API.
package nodelink
