package fsm

import (
	"slices"

	"github.com/google/uuid"
)

// Option configures [Build].
type Option func(*buildConfig)

type buildConfig struct {
	color func(id string) string
}

// WithColor overrides the color assigned to each new state.
func WithColor(fn func(id string) string) Option {
	return func(c *buildConfig) {
		if fn != nil {
			c.color = fn
		}
	}
}

type pairKey struct{ source, target string }

// Build constructs a graph from an initial state and an ordered transition list.
//
// One State is created per distinct ID, in order of first appearance. Each
// transition yields exactly one Link, duplicates included. Opposite-direction
// links are then reconciled into mutual pairs (see the package documentation).
// An empty transition list yields an empty graph.
//
// The initial state does not need to appear in any transition; if it does not,
// the graph simply has no node for it.
func Build(initial string, transitions []Transition, opts ...Option) *Graph {
	cfg := buildConfig{color: DefaultColor}
	for _, opt := range opts {
		opt(&cfg)
	}

	g := &Graph{
		InitialState: initial,
		Generation:   uuid.New(),
		byID:         make(map[string]*State),
		Links:        make([]*Link, 0, len(transitions)),
	}

	state := func(id string) *State {
		if n, ok := g.byID[id]; ok {
			return n
		}
		n := &State{ID: id, Name: id, Color: cfg.color(id)}
		g.byID[id] = n
		g.Nodes = append(g.Nodes, n)
		return n
	}

	index := make(map[pairKey][]*Link, len(transitions))
	for i, t := range transitions {
		src, dst := state(t.From), state(t.To)
		l := &Link{Source: src, Target: dst, Role: RoleOneWay, seq: i}
		src.Outgoing = append(src.Outgoing, l)
		dst.Incoming = append(dst.Incoming, l)
		g.Links = append(g.Links, l)
		k := pairKey{t.From, t.To}
		index[k] = append(index[k], l)
	}

	reconcile(g.Links, index)

	g.dist = ComputeDistances(g.Nodes, g.Links)
	return g
}

// BuildMachine is shorthand for Build(m.InitialState, m.Transitions, opts...).
func BuildMachine(m Machine, opts ...Option) *Graph {
	return Build(m.InitialState, m.Transitions, opts...)
}

// reconcile pairs every link with the first unpaired link running the other way.
func reconcile(links []*Link, index map[pairKey][]*Link) {
	for _, l := range links {
		if l.Mutual != nil || l.IsSelfLoop() {
			continue
		}
		r := firstUnpaired(index[pairKey{l.Target.ID, l.Source.ID}], l)
		if r == nil {
			continue
		}
		pair(l, r)
	}
}

func firstUnpaired(candidates []*Link, self *Link) *Link {
	for _, c := range candidates {
		if c != self && c.Mutual == nil {
			return c
		}
	}
	return nil
}

// pair links l (a→b) and r (b→a) and moves both into the Mutual collection of
// a and b.
func pair(l, r *Link) {
	l.Mutual, r.Mutual = r, l
	l.Role, r.Role = RoleMutual, RoleMutual

	a, b := l.Source, l.Target
	a.Outgoing = without(a.Outgoing, l)
	b.Incoming = without(b.Incoming, l)
	b.Outgoing = without(b.Outgoing, r)
	a.Incoming = without(a.Incoming, r)

	a.Mutual = append(a.Mutual, l, r)
	b.Mutual = append(b.Mutual, r, l)
}

func without(links []*Link, l *Link) []*Link {
	return slices.DeleteFunc(links, func(x *Link) bool { return x == l })
}
