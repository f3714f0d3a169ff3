package graph

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/stateviz/pkg/core/fsm"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Visualization types.
const (
	VizTypeRadial   = "radial"
	VizTypeNodelink = "nodelink"
)

// Link roles on the wire.
const (
	RoleOneWay = "oneway"
	RoleMutual = "mutual"
)

// =============================================================================
// Payload - Rendering Payload
// =============================================================================

// Payload is the canonical serialization of a built state machine graph.
// Used for API responses, cache entries and the graph command's JSON output.
//
// Links reference states by ID on the wire; [ToFSM] resolves them back into
// linked objects.
type Payload struct {
	Machine      string `json:"machine,omitempty"`
	InitialState string `json:"initialState"`
	Generation   string `json:"generation,omitempty"`
	Nodes        []Node `json:"nodes"`
	Links        []Link `json:"links"`
}

// =============================================================================
// Node - Serialized State
// =============================================================================

// Node is one serialized state.
type Node struct {
	ID     string  `json:"id"`
	Name   string  `json:"name,omitempty"`
	Color  string  `json:"color,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Degree int     `json:"degree"`
	// Distance is the hop count from the initial state; nil when unreachable.
	Distance *int `json:"distance"`
}

// DisplayLabel returns the name if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// =============================================================================
// Link - Serialized Transition
// =============================================================================

// Link is one serialized transition.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Mutual bool   `json:"mutual"`
	Role   string `json:"role"`
}

// =============================================================================
// FSM ↔ Payload Conversion
// =============================================================================

// FromFSM converts a built graph to its serialization format. Nodes and links
// keep build order.
func FromFSM(machine string, g *fsm.Graph) Payload {
	out := Payload{
		Machine:      machine,
		InitialState: g.InitialState,
		Generation:   g.Generation.String(),
		Nodes:        make([]Node, len(g.Nodes)),
		Links:        make([]Link, len(g.Links)),
	}
	dist := g.Distances()
	for i, n := range g.Nodes {
		out.Nodes[i] = Node{
			ID:     n.ID,
			Name:   n.Name,
			Color:  n.Color,
			X:      n.X,
			Y:      n.Y,
			VX:     n.VX,
			VY:     n.VY,
			Degree: n.Degree(),
		}
		if d := dist.Distance(g.InitialState, n.ID); d != fsm.Unreachable {
			out.Nodes[i].Distance = &d
		}
	}
	for i, l := range g.Links {
		out.Links[i] = Link{
			Source: l.Source.ID,
			Target: l.Target.ID,
			Mutual: l.IsMutual(),
			Role:   l.Role.String(),
		}
	}
	return out
}

// ToFSM rebuilds a graph from a payload. Links are replayed in order so mutual
// pairing matches the original build; colors, names and positions are
// restored from the nodes. Nodes that no link references are ignored, and a
// link referencing an undeclared node is an error.
func ToFSM(p Payload) (*fsm.Graph, error) {
	byID := make(map[string]Node, len(p.Nodes))
	for _, n := range p.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node with empty id")
		}
		byID[n.ID] = n
	}

	transitions := make([]fsm.Transition, len(p.Links))
	for i, l := range p.Links {
		if _, ok := byID[l.Source]; !ok {
			return nil, fmt.Errorf("link %d: unknown source %q", i, l.Source)
		}
		if _, ok := byID[l.Target]; !ok {
			return nil, fmt.Errorf("link %d: unknown target %q", i, l.Target)
		}
		transitions[i] = fsm.Transition{From: l.Source, To: l.Target}
	}

	g := fsm.Build(p.InitialState, transitions, fsm.WithColor(func(id string) string {
		if c := byID[id].Color; c != "" {
			return c
		}
		return fsm.DefaultColor(id)
	}))
	for _, s := range g.Nodes {
		n := byID[s.ID]
		s.Name = n.DisplayLabel()
		s.X, s.Y, s.VX, s.VY = n.X, n.Y, n.VX, n.VY
	}
	return g, nil
}

// UnmarshalPayload deserializes JSON bytes to a Payload.
func UnmarshalPayload(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, err
	}
	return p, nil
}
