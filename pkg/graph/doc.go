// Package graph provides serialization types for state machine graphs and
// their layouts.
//
// This package defines the canonical wire format for stateviz graph data,
// used for JSON files, API responses and cache entries.
//
// # Architecture
//
// The package sits at the serialization boundary between the in-memory model
// and external formats:
//
//   - [Payload], [Layout]: Serialization types (this package)
//   - pkg/core/fsm.Graph: Internal linked representation
//
// Use [FromFSM]/[ToFSM] to convert between them.
//
// # Payload
//
// A payload lists states with their color, position, degree and hop distance
// from the initial state, and transitions by endpoint ID:
//
//	{
//	  "initialState": "Idle",
//	  "nodes": [{"id": "Idle", "color": "#3a1f77", "x": 0, "y": 0, "degree": 2, "distance": 0}],
//	  "links": [{"source": "Idle", "target": "Walk", "mutual": true, "role": "mutual"}]
//	}
//
// A null distance means the state is unreachable from the initial state.
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("idle.json")         // File → fsm.Graph
//	graph.WriteGraphFile("Player", g, "idle.json")   // fsm.Graph → File
//	data, _ := graph.MarshalGraph("Player", g)       // fsm.Graph → []byte
//	parsed, _ := graph.UnmarshalPayload(data)        // []byte → Payload
//
// # Layout Serialization
//
// Layouts are discriminated by VizType:
//
//	layout, _ := graph.UnmarshalLayout(data)
//	if layout.IsRadial() {
//	    // Use layout.Nodes for simulated positions
//	} else {
//	    // Use layout.DOT for Graphviz rendering
//	}
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
