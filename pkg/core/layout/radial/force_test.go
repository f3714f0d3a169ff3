package radial

import (
	"math"
	"testing"

	"github.com/matzehuels/stateviz/pkg/core/fsm"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestTargets(t *testing.T) {
	g := fsm.Build("Idle", []fsm.Transition{
		{From: "Idle", To: "Walk"},
		{From: "Walk", To: "Idle"},
		{From: "Walk", To: "Jump"},
		{From: "Idle", To: "Crouch"},
		{From: "Ghost", To: "Ghost"},
	})
	targets := New("Idle").Targets(g)

	tests := []struct {
		id   string
		want Point
	}{
		{"Idle", Point{0, 0}},
		{"Walk", Point{180, 0}},
		{"Crouch", Point{-180, 0}},
		{"Jump", Point{360, 0}},
	}
	for _, tt := range tests {
		got, ok := targets[tt.id]
		if !ok {
			t.Errorf("%s: no target", tt.id)
			continue
		}
		if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) {
			t.Errorf("%s: target = %v, want %v", tt.id, got, tt.want)
		}
	}
	if _, ok := targets["Ghost"]; ok {
		t.Error("unreachable state should have no target")
	}
	if len(targets) != 4 {
		t.Errorf("len(targets) = %d, want 4", len(targets))
	}
}

func TestTargets_RingSpacingAndOrigin(t *testing.T) {
	g := fsm.Build("A", []fsm.Transition{{From: "A", To: "B"}, {From: "B", To: "C"}})
	f := New("A", WithRingSpacing(50), WithOrigin(100, 200))
	targets := f.Targets(g)

	if got := targets["A"]; got != (Point{100, 200}) {
		t.Errorf("A = %v, want center", got)
	}
	if got := targets["C"]; !near(got.X, 200) || !near(got.Y, 200) {
		t.Errorf("C = %v, want (200, 200)", got)
	}
	if f.Ring(g, "C") != 2 || f.Ring(g, "A") != 0 || f.Ring(g, "nope") != -1 {
		t.Error("Ring should report hop distance from the center")
	}
}

func TestTargets_EvenAngles(t *testing.T) {
	g := fsm.Build("hub", []fsm.Transition{
		{From: "hub", To: "a"}, {From: "hub", To: "b"}, {From: "hub", To: "c"}, {From: "hub", To: "d"},
	})
	targets := New("hub").Targets(g)
	want := map[string]Point{"a": {180, 0}, "b": {0, 180}, "c": {-180, 0}, "d": {0, -180}}
	for id, w := range want {
		got := targets[id]
		if !near(got.X, w.X) || !near(got.Y, w.Y) {
			t.Errorf("%s = %v, want %v", id, got, w)
		}
	}
}

func TestTargets_CenterAbsent(t *testing.T) {
	g := fsm.Build("Idle", []fsm.Transition{{From: "A", To: "B"}})
	f := New("Idle")
	if len(f.Targets(g)) != 0 {
		t.Error("absent center should produce no targets")
	}
	if f.Ring(g, "A") != -1 {
		t.Error("absent center should put every state off-ring")
	}

	a, _ := g.Node("A")
	a.X, a.Y = 5, 7
	f.Apply(g, 1)
	if a.VX != 0 || a.VY != 0 {
		t.Error("absent center should leave velocities untouched")
	}
}

func TestApply(t *testing.T) {
	g := fsm.Build("A", []fsm.Transition{{From: "A", To: "B"}})
	f := New("A")
	b, _ := g.Node("B")

	f.Apply(g, 1)
	if !near(b.VX, 180*DefaultStrength) || !near(b.VY, 0) {
		t.Errorf("B velocity = (%v, %v), want (45, 0)", b.VX, b.VY)
	}

	f.Apply(g, 0.5)
	if !near(b.VX, 45+180*0.5*DefaultStrength) {
		t.Errorf("velocity should accumulate, got %v", b.VX)
	}

	if b.X != 0 || b.Y != 0 {
		t.Error("Apply must not move positions")
	}
}

func TestOptionsIgnoreInvalid(t *testing.T) {
	f := New("x", WithRingSpacing(-1), WithStrength(-2))
	if f.RingSpacing != DefaultRingSpacing || f.Strength != DefaultStrength {
		t.Errorf("invalid options changed force: %+v", f)
	}
}
