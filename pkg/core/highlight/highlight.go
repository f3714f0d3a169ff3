// Package highlight computes hover and selection highlight sets for a state
// machine graph and maps them to display colors.
//
// A [Selection] is an explicit value owned by the viewer: hovering a state
// highlights it, its neighbors and every incident link; hovering a link
// highlights the link and both endpoints. The inspector follows
// [Selection.Target], which prefers the hovered state over the selected one.
package highlight

import (
	"slices"

	"github.com/matzehuels/stateviz/pkg/core/fsm"
)

// Palette used by the viewers.
const (
	ColorMutual     = "skyblue"
	ColorFromHover  = "yellow"
	ColorHighlight  = "magenta"
	ColorDim        = "rgba(255,255,255,0.2)"
	ColorParticle   = "slategrey"
	ColorBackground = "#131017"
	ColorMuted      = "gray"
	ColorOutline    = "white"
)

// Arrow and outline geometry.
const (
	ArrowLength       = 30.0
	ParticleWidth     = 10.0
	StrokeWidth       = 1.0
	StrokeWidthActive = 3.0
	Padding           = 5.0
	PaddingActive     = 15.0
)

// Selection is the hover/selection context of a viewer.
type Selection struct {
	// Hover is the ID of the hovered state, if any.
	Hover string
	// Selected is the ID of the clicked state, if any.
	Selected string

	nodes map[string]bool
	links map[*fsm.Link]bool
}

// New returns an empty selection.
func New() *Selection {
	return &Selection{
		nodes: make(map[string]bool),
		links: make(map[*fsm.Link]bool),
	}
}

// ForNode hovers the state with the given ID. The highlight set becomes the
// state, its neighbors and its incident links. An unknown or empty ID clears
// the hover and the highlight set but keeps the selected state.
func (s *Selection) ForNode(g *fsm.Graph, id string) {
	s.reset()
	n, ok := g.Node(id)
	if !ok {
		s.Hover = ""
		return
	}
	s.Hover = id
	s.nodes[id] = true
	for _, m := range n.Neighbors() {
		s.nodes[m.ID] = true
	}
	for _, l := range n.AllLinks() {
		s.links[l] = true
	}
}

// ForLink hovers a link. The highlight set becomes the link and its two
// endpoints. A nil link clears the highlight set.
func (s *Selection) ForLink(l *fsm.Link) {
	s.reset()
	s.Hover = ""
	if l == nil {
		return
	}
	s.links[l] = true
	s.nodes[l.Source.ID] = true
	s.nodes[l.Target.ID] = true
}

// Select marks a state as selected. The empty string deselects.
func (s *Selection) Select(id string) { s.Selected = id }

// Clear drops hover, selection and highlight sets.
func (s *Selection) Clear() {
	s.reset()
	s.Hover, s.Selected = "", ""
}

func (s *Selection) reset() {
	if s.nodes == nil {
		s.nodes = make(map[string]bool)
		s.links = make(map[*fsm.Link]bool)
		return
	}
	clear(s.nodes)
	clear(s.links)
}

// Target returns the state the inspector should show: the hovered state,
// else the selected one, else "".
func (s *Selection) Target() string {
	if s.Hover != "" {
		return s.Hover
	}
	return s.Selected
}

// Active reports whether anything is highlighted.
func (s *Selection) Active() bool { return len(s.nodes) > 0 || len(s.links) > 0 }

// HasNode reports whether the state is highlighted.
func (s *Selection) HasNode(id string) bool { return s.nodes[id] }

// HasLink reports whether the link is highlighted.
func (s *Selection) HasLink(l *fsm.Link) bool { return s.links[l] }

// Nodes returns the highlighted state IDs, sorted.
func (s *Selection) Nodes() []string {
	out := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Links returns the highlighted links in creation order.
func (s *Selection) Links() []*fsm.Link {
	out := make([]*fsm.Link, 0, len(s.links))
	for l := range s.links {
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b *fsm.Link) int { return a.Seq() - b.Seq() })
	return out
}

// =============================================================================
// Links
// =============================================================================

// LinkColor returns the stroke color of a link.
func (s *Selection) LinkColor(l *fsm.Link) string {
	if !s.links[l] {
		return ColorDim
	}
	if l.IsMutual() {
		return ColorMutual
	}
	return s.directedColor(l)
}

// ParticleColor returns the color of the particles travelling along a link.
func (s *Selection) ParticleColor(l *fsm.Link) string {
	if !s.links[l] {
		return ColorDim
	}
	if l.IsMutual() {
		return ColorParticle
	}
	return s.directedColor(l)
}

func (s *Selection) directedColor(l *fsm.Link) string {
	if s.Hover != "" && l.Source.ID == s.Hover {
		return ColorFromHover
	}
	return ColorHighlight
}

// ParticleWidth returns the particle size for a link: visible on every link
// when nothing is highlighted, otherwise only on highlighted links.
func (s *Selection) ParticleWidth(l *fsm.Link) float64 {
	if len(s.links) == 0 || s.links[l] {
		return ParticleWidth
	}
	return 0
}

// ArrowLength returns the arrowhead length of a link. Only highlighted
// one-way links carry an arrow.
func (s *Selection) ArrowLength(l *fsm.Link) float64 {
	if s.links[l] && !l.IsMutual() {
		return ArrowLength
	}
	return 0
}

// =============================================================================
// States
// =============================================================================

// NodeFill returns the fill color of a state: its own color unless something
// else is highlighted.
func (s *Selection) NodeFill(n *fsm.State) string {
	if !s.Active() || s.nodes[n.ID] {
		return n.Color
	}
	return ColorMuted
}

// NodeStroke returns the outline color and width of a state.
//
// Highlighted states around a hovered state are ringed by their relation to
// it: the hovered state itself and states it transitions to in yellow, mutual
// partners in skyblue, states transitioning into it in magenta.
func (s *Selection) NodeStroke(n *fsm.State) (string, float64) {
	if !s.nodes[n.ID] {
		return ColorOutline, StrokeWidth
	}
	if s.Hover == "" {
		return ColorOutline, StrokeWidthActive
	}
	if n.ID == s.Hover {
		return ColorFromHover, StrokeWidthActive
	}
	for _, l := range n.Mutual {
		if l.Other(n.ID).ID == s.Hover {
			return ColorMutual, StrokeWidthActive
		}
	}
	for _, l := range n.Outgoing {
		if l.Target.ID == s.Hover {
			return ColorHighlight, StrokeWidthActive
		}
	}
	return ColorFromHover, StrokeWidthActive
}

// NodePadding returns the label padding of a state; highlighted states grow.
func (s *Selection) NodePadding(n *fsm.State) float64 {
	if s.nodes[n.ID] {
		return PaddingActive
	}
	return Padding
}
