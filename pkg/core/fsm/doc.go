// Package fsm provides the in-memory graph model for state machine transition
// diagrams.
//
// # Overview
//
// A state machine is described by an initial state and an ordered list of
// (from, to) transitions. [Build] turns that description into a [Graph] of
// [State] nodes connected by [Link] edges, reconciles opposite-direction edges
// into mutual pairs, and computes a [DistanceCache] of hop counts between every
// pair of states:
//
//	g := fsm.Build("Idle", []fsm.Transition{
//	    {From: "Idle", To: "Walk"},
//	    {From: "Walk", To: "Idle"},
//	    {From: "Walk", To: "Jump"},
//	})
//	g.Distances().Distance("Idle", "Jump") // 2
//
// # Link Roles
//
// Every link carries an explicit [Role]. Links start as [RoleOneWay] and live in
// their source's Outgoing and their target's Incoming collections. When a literal
// reverse transition exists, both links become [RoleMutual], point at each other
// through [Link.Mutual], and move into the Mutual collection of both endpoints.
//
// Self-loops are never mutual. When several parallel edges exist between the
// same ordered pair, each is paired at most once, first-found in creation order.
//
// # Distances
//
// Distances ignore direction and mutuality: any link makes its endpoints one hop
// apart. Unknown or disconnected pairs report [Unreachable].
//
// # Concurrency
//
// A Graph is structurally immutable after Build. Node positions and velocities
// are mutated by the layout step and are not synchronized; a graph must not be
// laid out from more than one goroutine at a time.
package fsm
