package highlight

import (
	"slices"
	"testing"

	"github.com/matzehuels/stateviz/pkg/core/fsm"
)

// Idle <-> Walk, Walk -> Jump, Fall -> Walk, Island alone.
func machine() *fsm.Graph {
	return fsm.Build("Idle", []fsm.Transition{
		{From: "Idle", To: "Walk"},
		{From: "Walk", To: "Idle"},
		{From: "Walk", To: "Jump"},
		{From: "Fall", To: "Walk"},
		{From: "Island", To: "Island"},
	})
}

func node(t *testing.T, g *fsm.Graph, id string) *fsm.State {
	t.Helper()
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("no node %s", id)
	}
	return n
}

func TestForNode(t *testing.T) {
	g := machine()
	s := New()
	s.ForNode(g, "Walk")

	if got, want := s.Nodes(), []string{"Fall", "Idle", "Jump", "Walk"}; !slices.Equal(got, want) {
		t.Errorf("Nodes = %v, want %v", got, want)
	}
	if got := len(s.Links()); got != 4 {
		t.Errorf("Links = %d, want 4", got)
	}
	if s.HasNode("Island") || s.HasLink(g.Links[4]) {
		t.Error("Island should not be highlighted")
	}
	if s.Target() != "Walk" {
		t.Errorf("Target = %q, want Walk", s.Target())
	}
}

func TestForNode_UnknownClears(t *testing.T) {
	g := machine()
	s := New()
	s.Select("Jump")
	s.ForNode(g, "Walk")
	s.ForNode(g, "")

	if s.Active() || s.Hover != "" {
		t.Error("empty hover should clear the highlight set")
	}
	if s.Target() != "Jump" {
		t.Errorf("Target = %q, want selected Jump", s.Target())
	}
}

func TestForLink(t *testing.T) {
	g := machine()
	s := New()
	s.ForNode(g, "Idle")
	s.ForLink(g.Links[2])

	if got, want := s.Nodes(), []string{"Jump", "Walk"}; !slices.Equal(got, want) {
		t.Errorf("Nodes = %v, want %v", got, want)
	}
	if !s.HasLink(g.Links[2]) || s.HasLink(g.Links[0]) {
		t.Error("only the hovered link should be highlighted")
	}
	if s.Hover != "" {
		t.Error("link hover should drop the node hover")
	}

	s.ForLink(nil)
	if s.Active() {
		t.Error("nil link should clear")
	}
}

func TestLinkColors(t *testing.T) {
	g := machine()
	iw, wj, fw, loop := g.Links[0], g.Links[2], g.Links[3], g.Links[4]

	s := New()
	for _, l := range g.Links {
		if s.LinkColor(l) != ColorDim {
			t.Errorf("idle link color = %s, want dim", s.LinkColor(l))
		}
		if s.ParticleWidth(l) != ParticleWidth {
			t.Error("particles should show on every link when nothing is highlighted")
		}
		if s.ArrowLength(l) != 0 {
			t.Error("no arrows without highlight")
		}
	}

	s.ForNode(g, "Walk")
	tests := []struct {
		name     string
		link     *fsm.Link
		color    string
		particle string
		arrow    float64
		width    float64
	}{
		{"mutual", iw, ColorMutual, ColorParticle, 0, ParticleWidth},
		{"from hover", wj, ColorFromHover, ColorFromHover, ArrowLength, ParticleWidth},
		{"into hover", fw, ColorHighlight, ColorHighlight, ArrowLength, ParticleWidth},
		{"unrelated", loop, ColorDim, ColorDim, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.LinkColor(tt.link); got != tt.color {
				t.Errorf("LinkColor = %s, want %s", got, tt.color)
			}
			if got := s.ParticleColor(tt.link); got != tt.particle {
				t.Errorf("ParticleColor = %s, want %s", got, tt.particle)
			}
			if got := s.ArrowLength(tt.link); got != tt.arrow {
				t.Errorf("ArrowLength = %v, want %v", got, tt.arrow)
			}
			if got := s.ParticleWidth(tt.link); got != tt.width {
				t.Errorf("ParticleWidth = %v, want %v", got, tt.width)
			}
		})
	}

	s.ForLink(wj)
	if got := s.LinkColor(wj); got != ColorHighlight {
		t.Errorf("link hover color = %s, want magenta", got)
	}
}

func TestNodeStyles(t *testing.T) {
	g := machine()
	s := New()

	island := node(t, g, "Island")
	if s.NodeFill(island) != island.Color {
		t.Error("without highlight every state keeps its color")
	}

	s.ForNode(g, "Walk")
	tests := []struct {
		id      string
		fill    string
		stroke  string
		width   float64
		padding float64
	}{
		{"Walk", "", ColorFromHover, StrokeWidthActive, PaddingActive},
		{"Idle", "", ColorMutual, StrokeWidthActive, PaddingActive},
		{"Fall", "", ColorHighlight, StrokeWidthActive, PaddingActive},
		{"Jump", "", ColorFromHover, StrokeWidthActive, PaddingActive},
		{"Island", ColorMuted, ColorOutline, StrokeWidth, Padding},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			n := node(t, g, tt.id)
			wantFill := tt.fill
			if wantFill == "" {
				wantFill = n.Color
			}
			if got := s.NodeFill(n); got != wantFill {
				t.Errorf("NodeFill = %s, want %s", got, wantFill)
			}
			color, width := s.NodeStroke(n)
			if color != tt.stroke || width != tt.width {
				t.Errorf("NodeStroke = %s/%v, want %s/%v", color, width, tt.stroke, tt.width)
			}
			if got := s.NodePadding(n); got != tt.padding {
				t.Errorf("NodePadding = %v, want %v", got, tt.padding)
			}
		})
	}

	s.ForLink(g.Links[2])
	if c, w := s.NodeStroke(node(t, g, "Jump")); c != ColorOutline || w != StrokeWidthActive {
		t.Errorf("link-hover endpoint stroke = %s/%v, want white/3", c, w)
	}
}

func TestClear(t *testing.T) {
	g := machine()
	s := &Selection{}
	s.Select("Idle")
	s.ForNode(g, "Walk")
	s.Clear()
	if s.Active() || s.Target() != "" {
		t.Error("Clear should reset everything")
	}
}
