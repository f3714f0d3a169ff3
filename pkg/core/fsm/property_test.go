package fsm

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

const propStates = 6

// transitionsFrom decodes each code as a (from, to) pair over a small state
// alphabet so generated graphs have plenty of reverse and parallel edges.
func transitionsFrom(codes []int) []Transition {
	out := make([]Transition, len(codes))
	for i, c := range codes {
		out[i] = Transition{
			From: fmt.Sprintf("S%d", c/propStates),
			To:   fmt.Sprintf("S%d", c%propStates),
		}
	}
	return out
}

func transitionCodes() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, propStates*propStates-1))
}

func TestGraphInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("build output validates", prop.ForAll(
		func(codes []int) bool {
			return Build("S0", transitionsFrom(codes)).Validate() == nil
		},
		transitionCodes(),
	))

	properties.Property("one link per transition", prop.ForAll(
		func(codes []int) bool {
			return Build("S0", transitionsFrom(codes)).LinkCount() == len(codes)
		},
		transitionCodes(),
	))

	properties.Property("self-loops are never mutual", prop.ForAll(
		func(codes []int) bool {
			for _, l := range Build("S0", transitionsFrom(codes)).Links {
				if l.IsSelfLoop() && l.IsMutual() {
					return false
				}
			}
			return true
		},
		transitionCodes(),
	))

	properties.Property("unpaired link has no unpaired reverse", prop.ForAll(
		func(codes []int) bool {
			g := Build("S0", transitionsFrom(codes))
			for _, l := range g.Links {
				if l.IsMutual() || l.IsSelfLoop() {
					continue
				}
				for _, r := range g.Links {
					if !r.IsMutual() && r.Source == l.Target && r.Target == l.Source {
						return false
					}
				}
			}
			return true
		},
		transitionCodes(),
	))

	properties.Property("distance is a metric on reachable pairs", prop.ForAll(
		func(codes []int) bool {
			g := Build("S0", transitionsFrom(codes))
			d := g.Distances()
			for _, x := range g.Nodes {
				if d.Distance(x.ID, x.ID) != 0 {
					return false
				}
				for _, y := range g.Nodes {
					dxy := d.Distance(x.ID, y.ID)
					if dxy != d.Distance(y.ID, x.ID) {
						return false
					}
					if dxy == Unreachable {
						continue
					}
					for _, z := range g.Nodes {
						dyz := d.Distance(y.ID, z.ID)
						if dyz == Unreachable {
							continue
						}
						if d.Distance(x.ID, z.ID) > dxy+dyz {
							return false
						}
					}
				}
			}
			return true
		},
		transitionCodes(),
	))

	properties.Property("neighbors are at distance one", prop.ForAll(
		func(codes []int) bool {
			g := Build("S0", transitionsFrom(codes))
			for _, n := range g.Nodes {
				for _, m := range n.Neighbors() {
					if m != n && g.Distances().Distance(n.ID, m.ID) != 1 {
						return false
					}
				}
			}
			return true
		},
		transitionCodes(),
	))

	properties.TestingRun(t)
}
