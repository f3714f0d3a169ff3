// Package radial lays out a state machine graph in concentric rings around
// its initial state.
//
// # Force
//
// [Force] pulls every state toward a ring whose radius is proportional to its
// hop distance from the center state:
//
//	ring 0: the center state, at (CenterX, CenterY)
//	ring h: states at distance h, evenly spaced at radius h × RingSpacing
//
// States on the same ring are ordered by their position in the graph's node
// list, starting at angle 0 and stepping 2π/count. States unreachable from
// the center get no target and are left alone. When the center state does not
// exist in the graph there are no targets at all.
//
// Each application nudges velocity toward the target:
//
//	v += (target − position) × alpha × Strength
//
// # Simulation
//
// [Simulation] is a minimal velocity-Verlet integrator in the style of
// d3-force, driving only the radial force. Alpha starts at 1 and decays
// geometrically; velocity is damped each tick before positions advance.
// A simulation stops after its cooldown tick budget or once alpha falls below
// its minimum, whichever comes first.
//
//	sim := radial.NewSimulation(g, radial.New(g.InitialState), radial.WithViewport(800, 600))
//	sim.Initialize()
//	if err := sim.Run(ctx); err != nil { ... }
//
// # Concurrency
//
// A Simulation mutates the positions and velocities of the states it owns and
// must not be shared between goroutines without external locking.
package radial
