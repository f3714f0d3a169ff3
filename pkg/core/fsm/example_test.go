package fsm_test

import (
	"fmt"

	"github.com/matzehuels/stateviz/pkg/core/fsm"
)

func ExampleBuild() {
	g := fsm.Build("Idle", []fsm.Transition{
		{From: "Idle", To: "Walk"},
		{From: "Walk", To: "Idle"},
		{From: "Walk", To: "Jump"},
	})

	for _, l := range g.Links {
		fmt.Printf("%s -> %s (%s)\n", l.Source.ID, l.Target.ID, l.Role)
	}
	fmt.Println("Idle to Jump:", g.Distances().Distance("Idle", "Jump"))
	// Output:
	// Idle -> Walk (mutual)
	// Walk -> Idle (mutual)
	// Walk -> Jump (oneway)
	// Idle to Jump: 2
}

func ExampleDistanceCache_HasPath() {
	g := fsm.Build("A", []fsm.Transition{{From: "A", To: "B"}, {From: "C", To: "D"}})
	fmt.Println(g.Distances().HasPath("A", "B"))
	fmt.Println(g.Distances().HasPath("A", "D"))
	// Output:
	// true
	// false
}
