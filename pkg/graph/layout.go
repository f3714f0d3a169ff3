package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Layout - Unified Visualization Format
// =============================================================================

// Layout is the serialization format for a laid-out machine.
//
// This is a discriminated union type - check VizType to determine which
// fields are populated:
//
//	Radial ("radial"):
//	  - Nodes: positioned states after simulation
//	  - Ticks: simulation ticks run
//
//	Nodelink ("nodelink"):
//	  - DOT: Graphviz DOT string for rendering
//	  - Engine: Graphviz layout engine (e.g., "twopi")
//
// Shared fields (both types):
//   - Machine, InitialState: what was laid out
//   - Width, Height: frame dimensions
//   - Nodes, Links: graph structure
//   - Rings: ring index → state IDs
type Layout struct {
	VizType      string `json:"viz_type"`
	Machine      string `json:"machine,omitempty"`
	InitialState string `json:"initial_state,omitempty"`

	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Nodes []Node           `json:"nodes,omitempty"`
	Links []Link           `json:"links,omitempty"`
	Rings map[int][]string `json:"rings,omitempty"`

	// Radial-specific
	Ticks       int     `json:"ticks,omitempty"`
	RingSpacing float64 `json:"ring_spacing,omitempty"`

	// Nodelink-specific
	DOT    string `json:"dot,omitempty"`
	Engine string `json:"engine,omitempty"`
}

// IsRadial returns true if this is a radial layout.
func (l *Layout) IsRadial() bool { return l.VizType == VizTypeRadial }

// IsNodelink returns true if this is a nodelink layout.
func (l *Layout) IsNodelink() bool { return l.VizType == VizTypeNodelink }

// Payload returns the graph portion of the layout.
func (l *Layout) Payload() Payload {
	return Payload{
		Machine:      l.Machine,
		InitialState: l.InitialState,
		Nodes:        l.Nodes,
		Links:        l.Links,
	}
}

// RingsOf groups node IDs by hop distance from the initial state.
// Unreachable nodes are left out.
func RingsOf(nodes []Node) map[int][]string {
	rings := make(map[int][]string)
	for _, n := range nodes {
		if n.Distance == nil {
			continue
		}
		rings[*n.Distance] = append(rings[*n.Distance], n.ID)
	}
	return rings
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Validates that required fields are present for the viz type.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	if l.VizType == "" {
		l.VizType = VizTypeRadial
	}

	switch {
	case l.IsRadial():
		if len(l.Nodes) == 0 && len(l.Links) > 0 {
			return Layout{}, fmt.Errorf("radial layout with links must contain nodes")
		}
	case l.IsNodelink():
		if l.DOT == "" {
			return Layout{}, fmt.Errorf("nodelink layout must contain DOT string")
		}
	default:
		return Layout{}, fmt.Errorf("unknown viz_type %q", l.VizType)
	}

	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
