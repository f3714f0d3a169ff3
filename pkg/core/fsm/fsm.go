package fsm

import (
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
)

var (
	// ErrAsymmetricMutual is returned by [Graph.Validate] when a link's mutual
	// partner does not point back at it or does not reverse its endpoints.
	ErrAsymmetricMutual = errors.New("mutual link is not symmetric")

	// ErrRoleMismatch is returned by [Graph.Validate] when a link's Role
	// disagrees with its Mutual reference.
	ErrRoleMismatch = errors.New("link role does not match mutual reference")

	// ErrMembership is returned by [Graph.Validate] when an incident link is
	// missing from, or duplicated across, a state's link collections.
	ErrMembership = errors.New("link collection membership is inconsistent")
)

// Transition is a directed (from, to) pair defining one edge.
type Transition struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Machine describes a state machine: where it starts and how it moves.
type Machine struct {
	InitialState string       `json:"initialState" yaml:"initialState"`
	Transitions  []Transition `json:"transitions" yaml:"transitions"`
}

// Role classifies a link after mutual reconciliation.
type Role int

const (
	// RoleOneWay marks a link with no reverse counterpart.
	RoleOneWay Role = iota
	// RoleMutual marks a link paired with its reverse.
	RoleMutual
)

// String returns "oneway" or "mutual".
func (r Role) String() string {
	if r == RoleMutual {
		return "mutual"
	}
	return "oneway"
}

// Link is a directed transition edge between two states.
type Link struct {
	Source *State
	Target *State
	// Mutual is the reverse link when the pair has been reconciled.
	Mutual *Link
	Role   Role

	seq int // creation order
}

// IsMutual reports whether the link has been paired with its reverse.
func (l *Link) IsMutual() bool { return l.Role == RoleMutual }

// IsSelfLoop reports whether the link starts and ends at the same state.
func (l *Link) IsSelfLoop() bool { return l.Source == l.Target }

// Seq returns the link's position in the transition list it was built from.
func (l *Link) Seq() int { return l.seq }

// Other returns the endpoint opposite to the state with the given ID.
// For self-loops it returns the state itself.
func (l *Link) Other(id string) *State {
	if l.Source.ID == id {
		return l.Target
	}
	return l.Source
}

// State is one node of a state machine graph.
//
// X, Y, VX and VY belong to the layout step; Build leaves them zero.
type State struct {
	ID    string
	Name  string
	Color string

	X, Y   float64
	VX, VY float64

	Incoming []*Link
	Outgoing []*Link
	Mutual   []*Link
}

// Graph is a fully linked state machine graph with its distance cache.
type Graph struct {
	Nodes        []*State
	Links        []*Link
	InitialState string
	// Generation identifies this build. Work scheduled against one graph
	// (animation ticks, cached layouts) compares generations before touching it.
	Generation uuid.UUID

	byID map[string]*State
	dist *DistanceCache
}

// Node returns the state with the given ID.
func (g *Graph) Node(id string) (*State, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// NodeCount returns the number of states.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// LinkCount returns the number of links, one per input transition.
func (g *Graph) LinkCount() int { return len(g.Links) }

// Distances returns the all-pairs hop distance cache computed at build time.
func (g *Graph) Distances() *DistanceCache { return g.dist }

// Initial returns the initial state's node, if it appears in any transition.
func (g *Graph) Initial() (*State, bool) { return g.Node(g.InitialState) }

// MutualPairs returns the number of reconciled mutual pairs.
func (g *Graph) MutualPairs() int {
	n := 0
	for _, l := range g.Links {
		if l.IsMutual() {
			n++
		}
	}
	return n / 2
}

// Validate checks the link invariants established by Build:
//
//  1. Mutual references are symmetric and reverse each other's endpoints.
//  2. Role is RoleMutual exactly when Mutual is set.
//  3. Every incident link appears in exactly one of a state's collections
//     (self-loops appear once in Incoming and once in Outgoing).
func (g *Graph) Validate() error {
	for _, l := range g.Links {
		if (l.Mutual != nil) != (l.Role == RoleMutual) {
			return fmt.Errorf("%w: %s→%s", ErrRoleMismatch, l.Source.ID, l.Target.ID)
		}
		if m := l.Mutual; m != nil {
			if m.Mutual != l || m.Source != l.Target || m.Target != l.Source || m == l {
				return fmt.Errorf("%w: %s→%s", ErrAsymmetricMutual, l.Source.ID, l.Target.ID)
			}
		}
	}
	for _, n := range g.Nodes {
		seen := make(map[*Link]int)
		for _, l := range n.Incoming {
			if l.Target != n || l.IsMutual() {
				return fmt.Errorf("%w: %s incoming", ErrMembership, n.ID)
			}
			seen[l]++
		}
		for _, l := range n.Outgoing {
			if l.Source != n || l.IsMutual() {
				return fmt.Errorf("%w: %s outgoing", ErrMembership, n.ID)
			}
			seen[l]++
		}
		for _, l := range n.Mutual {
			if (l.Source != n && l.Target != n) || !l.IsMutual() {
				return fmt.Errorf("%w: %s mutual", ErrMembership, n.ID)
			}
			seen[l]++
		}
		for _, l := range g.Links {
			if l.Source != n && l.Target != n {
				continue
			}
			want := 1
			if l.IsSelfLoop() {
				want = 2
			}
			if seen[l] != want {
				return fmt.Errorf("%w: %s has %s→%s %d times", ErrMembership, n.ID, l.Source.ID, l.Target.ID, seen[l])
			}
		}
	}
	return nil
}

// DefaultColor derives a stable display color from a state ID. Channels stay
// below 155 so white labels remain readable on top.
func DefaultColor(id string) string {
	h := fnv.New32a()
	h.Write([]byte(id))
	sum := h.Sum32()
	r := sum % 155
	gr := (sum >> 8) % 155
	b := (sum >> 16) % 155
	return fmt.Sprintf("#%02x%02x%02x", r, gr, b)
}
