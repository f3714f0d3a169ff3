package radial

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"

	"github.com/matzehuels/stateviz/pkg/core/fsm"
)

const (
	// DefaultAlphaMin is the alpha below which a simulation is considered settled.
	DefaultAlphaMin = 0.001
	// DefaultVelocityDecay is the fraction of velocity removed each tick.
	DefaultVelocityDecay = 0.4
	// DefaultCooldownTicks is the tick budget of a simulation run.
	DefaultCooldownTicks = 10

	initialRadius = 10.0
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// ErrStale is returned when a simulation is driven against a graph generation
// other than the one it was created for.
var ErrStale = errors.New("simulation graph is stale")

// Simulation integrates state positions under a radial [Force].
type Simulation struct {
	graph      *fsm.Graph
	generation uuid.UUID
	force      *Force
	targets    map[string]Point

	width, height float64

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64
	cooldown      int
	ticks         int

	onTick func(tick int, alpha float64)
}

// SimOption configures a [Simulation].
type SimOption func(*Simulation)

// WithViewport sets the viewport size. The simulation re-centers a copy of
// its force on the viewport center and initial positions spiral out from
// there; the caller's force is left unchanged.
func WithViewport(width, height float64) SimOption {
	return func(s *Simulation) {
		s.width, s.height = width, height
	}
}

// WithCooldownTicks sets the tick budget. Zero means run until alpha settles.
func WithCooldownTicks(n int) SimOption {
	return func(s *Simulation) {
		if n >= 0 {
			s.cooldown = n
		}
	}
}

// WithVelocityDecay sets the per-tick velocity damping in [0, 1].
func WithVelocityDecay(decay float64) SimOption {
	return func(s *Simulation) {
		if decay >= 0 && decay <= 1 {
			s.velocityDecay = decay
		}
	}
}

// WithAlphaMin sets the settle threshold and derives the decay rate from it
// so that alpha reaches the threshold after 300 ticks.
func WithAlphaMin(threshold float64) SimOption {
	return func(s *Simulation) {
		if threshold > 0 && threshold < 1 {
			s.alphaMin = threshold
			s.alphaDecay = 1 - math.Pow(threshold, 1.0/300)
		}
	}
}

// OnTick registers a callback invoked after every tick.
func OnTick(fn func(tick int, alpha float64)) SimOption {
	return func(s *Simulation) { s.onTick = fn }
}

// NewSimulation prepares a simulation of g under force. Ring targets are
// computed once; the graph structure is immutable after build.
func NewSimulation(g *fsm.Graph, force *Force, opts ...SimOption) *Simulation {
	s := &Simulation{
		graph:         g,
		generation:    g.Generation,
		force:         force,
		alpha:         1,
		alphaMin:      DefaultAlphaMin,
		alphaDecay:    1 - math.Pow(DefaultAlphaMin, 1.0/300),
		velocityDecay: DefaultVelocityDecay,
		cooldown:      DefaultCooldownTicks,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.width > 0 && s.height > 0 {
		recentered := *force
		recentered.CenterX, recentered.CenterY = s.width/2, s.height/2
		s.force = &recentered
	}
	s.targets = s.force.Targets(g)
	return s
}

// Initialize resets every state to a phyllotaxis spiral around the viewport
// center with zero velocity, and restarts alpha and the tick counter.
func (s *Simulation) Initialize() {
	cx, cy := s.force.CenterX, s.force.CenterY
	for i, n := range s.graph.Nodes {
		r := initialRadius * math.Sqrt(0.5+float64(i))
		a := float64(i) * initialAngle
		n.X = cx + r*math.Cos(a)
		n.Y = cy + r*math.Sin(a)
		n.VX, n.VY = 0, 0
	}
	s.alpha = 1
	s.ticks = 0
}

// Tick advances the simulation by one step.
func (s *Simulation) Tick() {
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay
	s.force.apply(s.graph, s.targets, s.alpha)

	keep := 1 - s.velocityDecay
	for _, n := range s.graph.Nodes {
		n.VX *= keep
		n.VY *= keep
		n.X += n.VX
		n.Y += n.VY
	}
	s.ticks++
	if s.onTick != nil {
		s.onTick(s.ticks, s.alpha)
	}
}

// Done reports whether the cooldown budget is spent or alpha has settled.
func (s *Simulation) Done() bool {
	if s.cooldown > 0 && s.ticks >= s.cooldown {
		return true
	}
	return s.alpha < s.alphaMin
}

// Run ticks until [Simulation.Done] or ctx is cancelled.
func (s *Simulation) Run(ctx context.Context) error {
	for !s.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Tick()
	}
	return nil
}

// Step ticks once if g is still the graph the simulation was built for.
func (s *Simulation) Step(g *fsm.Graph) error {
	if s.Stale(g.Generation) {
		return ErrStale
	}
	s.Tick()
	return nil
}

// Stale reports whether generation differs from the simulated graph's.
func (s *Simulation) Stale(generation uuid.UUID) bool {
	return generation != s.generation
}

// Alpha returns the current alpha.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Ticks returns the number of ticks run since the last [Simulation.Initialize].
func (s *Simulation) Ticks() int { return s.ticks }

// Targets returns the ring targets driving the simulation.
func (s *Simulation) Targets() map[string]Point { return s.targets }

// Positions returns the current position of every state, keyed by ID.
func (s *Simulation) Positions() map[string]Point {
	out := make(map[string]Point, len(s.graph.Nodes))
	for _, n := range s.graph.Nodes {
		out[n.ID] = Point{X: n.X, Y: n.Y}
	}
	return out
}

// Bounds returns the bounding box of all state positions. The zero box is
// returned for an empty graph.
func (s *Simulation) Bounds() (lo, hi Point) {
	for i, n := range s.graph.Nodes {
		if i == 0 {
			lo, hi = Point{n.X, n.Y}, Point{n.X, n.Y}
			continue
		}
		lo.X, lo.Y = math.Min(lo.X, n.X), math.Min(lo.Y, n.Y)
		hi.X, hi.Y = math.Max(hi.X, n.X), math.Max(hi.Y, n.Y)
	}
	return lo, hi
}
