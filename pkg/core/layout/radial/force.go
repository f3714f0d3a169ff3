package radial

import (
	"math"

	"github.com/matzehuels/stateviz/pkg/core/fsm"
)

const (
	// DefaultRingSpacing is the radial distance between consecutive rings.
	DefaultRingSpacing = 180.0
	// DefaultStrength scales how hard states are pulled toward their ring.
	DefaultStrength = 0.25
)

// Point is a 2D position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Force pulls states onto concentric rings around a center state.
type Force struct {
	Center      string
	CenterX     float64
	CenterY     float64
	RingSpacing float64
	Strength    float64
}

// ForceOption configures a [Force].
type ForceOption func(*Force)

// WithRingSpacing sets the distance between rings. Non-positive values are ignored.
func WithRingSpacing(spacing float64) ForceOption {
	return func(f *Force) {
		if spacing > 0 {
			f.RingSpacing = spacing
		}
	}
}

// WithStrength sets the pull strength. Negative values are ignored.
func WithStrength(strength float64) ForceOption {
	return func(f *Force) {
		if strength >= 0 {
			f.Strength = strength
		}
	}
}

// WithOrigin places the center state at (x, y).
func WithOrigin(x, y float64) ForceOption {
	return func(f *Force) {
		f.CenterX, f.CenterY = x, y
	}
}

// New returns a Force centered on the given state with default spacing and
// strength, at the origin.
func New(center string, opts ...ForceOption) *Force {
	f := &Force{
		Center:      center,
		RingSpacing: DefaultRingSpacing,
		Strength:    DefaultStrength,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Targets returns the ring position for every state reachable from the
// center, keyed by state ID. It is empty when the center state is not in g.
func (f *Force) Targets(g *fsm.Graph) map[string]Point {
	targets := make(map[string]Point)
	if _, ok := g.Node(f.Center); !ok {
		return targets
	}
	dist := g.Distances()
	targets[f.Center] = Point{X: f.CenterX, Y: f.CenterY}

	rings := make(map[int][]*fsm.State)
	for _, n := range g.Nodes {
		d := dist.Distance(f.Center, n.ID)
		if d == fsm.Unreachable || d == 0 {
			continue
		}
		rings[d] = append(rings[d], n)
	}

	maxHops := dist.MaxFinite(f.Center)
	for h := 1; h <= maxHops; h++ {
		ring := rings[h]
		if len(ring) == 0 {
			continue
		}
		step := 2 * math.Pi / float64(len(ring))
		radius := float64(h) * f.RingSpacing
		for i, n := range ring {
			angle := float64(i) * step
			targets[n.ID] = Point{
				X: f.CenterX + math.Cos(angle)*radius,
				Y: f.CenterY + math.Sin(angle)*radius,
			}
		}
	}
	return targets
}

// Apply adds the ring pull to every targeted state's velocity.
func (f *Force) Apply(g *fsm.Graph, alpha float64) {
	f.apply(g, f.Targets(g), alpha)
}

func (f *Force) apply(g *fsm.Graph, targets map[string]Point, alpha float64) {
	k := alpha * f.Strength
	for _, n := range g.Nodes {
		t, ok := targets[n.ID]
		if !ok {
			continue
		}
		n.VX += (t.X - n.X) * k
		n.VY += (t.Y - n.Y) * k
	}
}

// Ring returns the ring index of a state, or -1 when it has no target.
func (f *Force) Ring(g *fsm.Graph, id string) int {
	if _, ok := g.Node(f.Center); !ok {
		return -1
	}
	d := g.Distances().Distance(f.Center, id)
	if d == fsm.Unreachable {
		return -1
	}
	return d
}
