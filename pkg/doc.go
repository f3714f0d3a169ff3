// Package pkg provides the core libraries for Stateviz state machine
// visualization.
//
// # Overview
//
// Stateviz turns game state machine definitions into radial graphs: the
// initial state sits at the center and every other state is pulled onto the
// ring matching its hop distance from it. The pkg directory is organized into
// four main areas:
//
//  1. [core] - Domain logic (graph model, distances, layout, highlight, rendering)
//  2. [extract] - Offline miners for class hierarchies and log properties
//  3. [pipeline] - Orchestration (build → layout → render)
//  4. [graph] - Serialization types for payloads and layouts
//
// # Architecture
//
// The typical data flow through Stateviz:
//
//	machines.yaml
//	     ↓
//	[registry] package (load and validate machine definitions)
//	     ↓
//	[core/fsm] package (link reconciliation + all-pairs distances)
//	     ↓
//	[core/layout/radial] package (ring simulation)
//	     ↓
//	[core/render/nodelink] package (DOT + Graphviz)
//	     ↓
//	SVG/PDF/PNG/DOT/JSON output
//
// # Quick Start
//
// Build a machine and lay it out:
//
//	import (
//	    "github.com/matzehuels/stateviz/pkg/core/fsm"
//	    "github.com/matzehuels/stateviz/pkg/core/layout/radial"
//	)
//
//	g := fsm.Build("Idle", []fsm.Transition{
//	    {From: "Idle", To: "Walk"},
//	    {From: "Walk", To: "Idle"},
//	    {From: "Walk", To: "Jump"},
//	})
//	g.Distances().Distance("Idle", "Jump") // 2
//
// Or run the whole pipeline against a registry:
//
//	reg, _ := registry.Load("machines.yaml")
//	runner := pipeline.NewRunner(cache.NewNullCache(), cache.NewDefaultKeyer(), logger)
//	result, _ := runner.Execute(ctx, reg, pipeline.Options{
//	    Machine: "Player",
//	    Formats: []string{"svg"},
//	    Hover:   "Walk",
//	})
//
// # Main Packages
//
// [core/fsm] - States, links and the mutual-pair reconciliation; the
// [fsm.DistanceCache] answers hop-distance queries from Floyd–Warshall.
//
// [core/layout/radial] - The ring force and a small velocity-Verlet
// simulation with alpha cooling.
//
// [core/highlight] - Hover and selection sets and the colors derived from them.
//
// [core/render/nodelink] - DOT generation with pinned radial positions, and
// SVG rendering through Graphviz.
//
// [registry] - Machine definitions from YAML, with a file watcher for reloads.
//
// [cache] - File, Redis and null caches behind one interface, with keyers per
// pipeline stage.
//
// [config] - TOML configuration with validation.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [observability] - Hooks for builds, layouts, renders, cache and HTTP traffic.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                 # All tests
//	go test ./pkg/core/fsm/...        # Specific package
//	go test -run Example ./pkg/...    # Examples only
//
// [core]: https://pkg.go.dev/github.com/matzehuels/stateviz/pkg/core
// [core/fsm]: https://pkg.go.dev/github.com/matzehuels/stateviz/pkg/core/fsm
// [core/layout/radial]: https://pkg.go.dev/github.com/matzehuels/stateviz/pkg/core/layout/radial
// [core/highlight]: https://pkg.go.dev/github.com/matzehuels/stateviz/pkg/core/highlight
// [core/render/nodelink]: https://pkg.go.dev/github.com/matzehuels/stateviz/pkg/core/render/nodelink
// [extract]: https://pkg.go.dev/github.com/matzehuels/stateviz/pkg/extract
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stateviz/pkg/pipeline
// [graph]: https://pkg.go.dev/github.com/matzehuels/stateviz/pkg/graph
// [registry]: https://pkg.go.dev/github.com/matzehuels/stateviz/pkg/registry
// [cache]: https://pkg.go.dev/github.com/matzehuels/stateviz/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/stateviz/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/stateviz/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/stateviz/pkg/observability
// [fsm.DistanceCache]: https://pkg.go.dev/github.com/matzehuels/stateviz/pkg/core/fsm#DistanceCache
package pkg
