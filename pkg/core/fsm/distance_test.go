package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistances_Chain(t *testing.T) {
	g := Build("A", []Transition{{"A", "B"}, {"B", "C"}, {"C", "D"}, {"X", "Y"}})
	d := g.Distances()

	tests := []struct {
		a, b string
		want int
	}{
		{"A", "A", 0},
		{"A", "B", 1},
		{"A", "D", 3},
		{"D", "A", 3},
		{"B", "D", 2},
		{"A", "X", Unreachable},
		{"X", "Y", 1},
		{"A", "nope", Unreachable},
		{"nope", "nope", Unreachable},
	}
	for _, tt := range tests {
		t.Run(tt.a+"-"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Distance(tt.a, tt.b))
			assert.Equal(t, tt.want != Unreachable, d.HasPath(tt.a, tt.b))
		})
	}
}

func TestDistances_DirectionIgnored(t *testing.T) {
	g := Build("A", []Transition{{"B", "A"}, {"C", "B"}})
	assert.Equal(t, 2, g.Distances().Distance("A", "C"))
}

func TestDistances_ShortestOfSeveral(t *testing.T) {
	g := Build("A", []Transition{{"A", "B"}, {"B", "C"}, {"C", "D"}, {"D", "E"}, {"A", "E"}})
	assert.Equal(t, 1, g.Distances().Distance("A", "E"))
	assert.Equal(t, 2, g.Distances().Distance("A", "D"))
}

func TestAllDistances(t *testing.T) {
	g := Build("A", []Transition{{"A", "B"}, {"B", "C"}, {"X", "X"}})
	all := g.Distances().AllDistances("A")

	require.Len(t, all, 4)
	assert.Equal(t, 0, all["A"])
	assert.Equal(t, 1, all["B"])
	assert.Equal(t, 2, all["C"])
	assert.Equal(t, Unreachable, all["X"])

	all["A"] = 99
	assert.Equal(t, 0, g.Distances().Distance("A", "A"), "returned map must be a copy")

	assert.Empty(t, g.Distances().AllDistances("nope"))
}

func TestMaxFinite(t *testing.T) {
	g := Build("A", []Transition{{"A", "B"}, {"B", "C"}, {"X", "Y"}, {"L", "L"}})
	d := g.Distances()

	assert.Equal(t, 2, d.MaxFinite("A"))
	assert.Equal(t, 1, d.MaxFinite("B"))
	assert.Equal(t, 1, d.MaxFinite("X"))
	assert.Equal(t, 0, d.MaxFinite("L"))
	assert.Equal(t, 0, d.MaxFinite("nope"))
	assert.Equal(t, 6, d.Len())
}

func TestComputeDistances_IgnoresForeignLinks(t *testing.T) {
	a, b := &State{ID: "a"}, &State{ID: "b"}
	ghost := &State{ID: "ghost"}
	d := ComputeDistances([]*State{a, b}, []*Link{{Source: a, Target: ghost}})
	assert.Equal(t, Unreachable, d.Distance("a", "b"))
	assert.Equal(t, Unreachable, d.Distance("a", "ghost"))
}
