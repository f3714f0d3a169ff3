package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/stateviz/pkg/cache"
	"github.com/matzehuels/stateviz/pkg/core/fsm"
	"github.com/matzehuels/stateviz/pkg/graph"
	"github.com/matzehuels/stateviz/pkg/observability"
)

// Build constructs the named machine from src and reports it to the graph
// hooks.
func Build(ctx context.Context, src Source, machine string) (*fsm.Graph, error) {
	start := time.Now()
	g, err := src.Build(machine)
	if err != nil {
		return nil, err
	}
	observability.Graph().OnBuild(ctx, machine, g.NodeCount(), g.LinkCount(), time.Since(start))
	return g, nil
}

// PayloadHash returns a content hash of g's payload that is stable across
// rebuilds: the per-build generation is left out.
func PayloadHash(machine string, g *fsm.Graph) (string, error) {
	p := graph.FromFSM(machine, g)
	p.Generation = ""
	return cache.HashJSON(p)
}
