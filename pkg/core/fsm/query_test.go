package fsm

import (
	"slices"
	"testing"
)

func TestStateQueries(t *testing.T) {
	g := Build("Idle", []Transition{
		{"Idle", "Walk"},
		{"Walk", "Idle"},
		{"Walk", "Jump"},
		{"Fall", "Walk"},
		{"Lonely", "Lonely"},
	})
	walk, _ := g.Node("Walk")

	if got := walk.Degree(); got != 4 {
		t.Errorf("Walk degree = %d, want 4", got)
	}
	if got := len(walk.AllLinks()); got != 4 {
		t.Errorf("Walk AllLinks = %d, want 4", got)
	}

	got := ids(walk.Neighbors())
	slices.Sort(got)
	if want := []string{"Fall", "Idle", "Jump"}; !slices.Equal(got, want) {
		t.Errorf("Walk neighbors = %v, want %v", got, want)
	}

	for _, id := range []string{"Idle", "Jump", "Fall"} {
		if !walk.IsConnectedTo(id) {
			t.Errorf("Walk should be connected to %s", id)
		}
	}
	if walk.IsConnectedTo("Lonely") {
		t.Error("Walk should not be connected to Lonely")
	}

	l := walk.LinkTo("Fall")
	if l == nil || l.Source.ID != "Fall" || l.Target.ID != "Walk" {
		t.Errorf("LinkTo(Fall) = %v, want Fall→Walk", l)
	}
	if walk.LinkTo("Nowhere") != nil {
		t.Error("LinkTo unknown state should be nil")
	}
	if m := walk.LinkTo("Idle"); m == nil || !m.IsMutual() {
		t.Error("LinkTo(Idle) should return a mutual link")
	}
}

func TestStateQueries_SelfLoop(t *testing.T) {
	g := Build("A", []Transition{{"A", "A"}})
	a, _ := g.Node("A")

	if a.Degree() != 2 {
		t.Errorf("self-loop degree = %d, want 2", a.Degree())
	}
	if n := a.Neighbors(); len(n) != 1 || n[0] != a {
		t.Errorf("self-loop neighbors = %v, want [A]", ids(n))
	}
	if !a.IsConnectedTo("A") {
		t.Error("self-loop state should be connected to itself")
	}
	if a.IsIsolated() {
		t.Error("self-loop state is not isolated")
	}
}

func TestStateQueries_Isolated(t *testing.T) {
	s := &State{ID: "x", Name: "x"}
	if !s.IsIsolated() {
		t.Error("state without links should be isolated")
	}
	if len(s.Neighbors()) != 0 {
		t.Error("isolated state should have no neighbors")
	}
}

func TestLinkOther(t *testing.T) {
	g := Build("A", []Transition{{"A", "B"}})
	l := g.Links[0]
	if l.Other("A").ID != "B" || l.Other("B").ID != "A" {
		t.Error("Other should return the opposite endpoint")
	}
}
