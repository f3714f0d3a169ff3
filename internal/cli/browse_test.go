package cli

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/stateviz/pkg/config"
	"github.com/matzehuels/stateviz/pkg/core/layout/radial"
	"github.com/matzehuels/stateviz/pkg/extract/props"
	"github.com/matzehuels/stateviz/pkg/registry"
)

func browseModel(t *testing.T, machine string) BrowseModel {
	t.Helper()
	reg, err := registry.Parse([]byte(testMachines))
	if err != nil {
		t.Fatal(err)
	}
	bag := props.Properties{
		"Player": {"Walk": {"speed": 1.5, "grounded": true}},
	}
	m, err := NewBrowseModel(reg, bag, machine)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func press(m BrowseModel, keys ...string) BrowseModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(BrowseModel)
	}
	return m
}

func TestBrowseOrdersByDistance(t *testing.T) {
	m := browseModel(t, "Player")
	var ids []string
	for _, s := range m.states {
		ids = append(ids, s.ID)
	}
	if got := strings.Join(ids, ","); got != "Idle,Walk,Jump,Fall" {
		t.Errorf("order = %s", got)
	}
	if m.Selection().Hover != "Idle" {
		t.Errorf("cursor should hover the first state, got %q", m.Selection().Hover)
	}
}

func TestBrowseHoverFollowsCursor(t *testing.T) {
	m := press(browseModel(t, "Player"), "down")
	sel := m.Selection()
	if sel.Hover != "Walk" {
		t.Fatalf("Hover = %q, want Walk", sel.Hover)
	}
	for _, id := range []string{"Walk", "Idle", "Jump"} {
		if !sel.HasNode(id) {
			t.Errorf("%s should be highlighted", id)
		}
	}
	if sel.HasNode("Fall") {
		t.Error("Fall is not a neighbor of Walk")
	}

	m = press(m, "up", "up")
	if m.Cursor != 0 || m.Selection().Hover != "Idle" {
		t.Errorf("cursor = %d hover = %q", m.Cursor, m.Selection().Hover)
	}
}

func TestBrowseSelectToggles(t *testing.T) {
	m := press(browseModel(t, "Player"), "down", "down", "enter")
	if m.Selection().Selected != "Jump" {
		t.Fatalf("Selected = %q, want Jump", m.Selection().Selected)
	}
	m = press(m, "enter")
	if m.Selection().Selected != "" {
		t.Error("second enter should deselect")
	}
	m = press(m, "enter", "esc")
	if m.Selection().Selected != "" || m.Selection().Active() {
		t.Error("esc should clear everything")
	}
}

func TestBrowseInspectorShowsProperties(t *testing.T) {
	m := press(browseModel(t, "Player"), "down")
	view := m.View()
	for _, want := range []string{"Walk", "speed", "1.50", "[x]", "Jump"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestBrowseSwitchMachine(t *testing.T) {
	m := browseModel(t, "Player")
	m = press(m, "tab")
	if m.Machine() == "Player" {
		t.Fatal("tab should switch machines")
	}
	if m.Cursor != 0 || m.Selection().Hover != m.states[0].ID {
		t.Error("switching resets the cursor")
	}
	m = press(m, "tab")
	if m.Machine() != "Player" {
		t.Errorf("tab should wrap around, got %s", m.Machine())
	}
}

func TestBrowseReload(t *testing.T) {
	m := press(browseModel(t, "Player"), "down")

	next, _ := m.Update(registryMsg{err: errors.New("bad yaml")})
	m = next.(BrowseModel)
	if !strings.Contains(m.Status, "reload failed") || m.Machine() != "Player" {
		t.Errorf("failed reload: status %q machine %s", m.Status, m.Machine())
	}

	reg, err := registry.Parse([]byte(`machines:
  Player:
    initialState: Idle
    transitions:
      - {from: Idle, to: Crouch}
`))
	if err != nil {
		t.Fatal(err)
	}
	next, _ = m.Update(registryMsg{reg: reg})
	m = next.(BrowseModel)
	if m.Machine() != "Player" || len(m.states) != 2 {
		t.Errorf("reload kept %s with %d states", m.Machine(), len(m.states))
	}
}

func TestBrowseLayoutTicks(t *testing.T) {
	m := browseModel(t, "Player")
	if m.Init() == nil {
		t.Fatal("Init should schedule the first layout tick")
	}

	gen := m.graph.Generation
	ticks := 0
	for {
		next, cmd := m.Update(layoutTickMsg{generation: gen})
		m = next.(BrowseModel)
		ticks++
		if cmd == nil {
			break
		}
		if ticks > radial.DefaultCooldownTicks {
			t.Fatal("layout should stop after its cooldown budget")
		}
	}
	if m.sim.Ticks() != radial.DefaultCooldownTicks || !m.sim.Done() {
		t.Errorf("ran %d ticks, done=%v", m.sim.Ticks(), m.sim.Done())
	}
	if !strings.Contains(m.View(), "layout settled after 10 ticks") {
		t.Error("view should report the settled layout")
	}
	if !strings.Contains(m.View(), "ring 0 at (") {
		t.Errorf("inspector should show Idle's ring and position:\n%s", m.View())
	}
}

func TestBrowseDropsTicksForReplacedGraph(t *testing.T) {
	m := browseModel(t, "Player")
	oldGraph := m.graph

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(BrowseModel)
	if cmd == nil {
		t.Fatal("switching machines should start a new layout")
	}

	next, cmd = m.Update(layoutTickMsg{generation: oldGraph.Generation})
	m = next.(BrowseModel)
	if cmd != nil || m.sim.Ticks() != 0 {
		t.Errorf("tick for the old graph advanced the layout: ticks=%d", m.sim.Ticks())
	}
	if err := m.sim.Step(oldGraph); !errors.Is(err, radial.ErrStale) {
		t.Errorf("Step(old graph) = %v, want ErrStale", err)
	}

	next, cmd = m.Update(layoutTickMsg{generation: m.graph.Generation})
	m = next.(BrowseModel)
	if cmd == nil || m.sim.Ticks() != 1 {
		t.Errorf("tick for the current graph should advance: ticks=%d", m.sim.Ticks())
	}
}

func TestBrowseReloadRestartsLayout(t *testing.T) {
	m := browseModel(t, "Player")
	old := m.graph.Generation
	next, _ := m.Update(layoutTickMsg{generation: old})
	m = next.(BrowseModel)

	reg, err := registry.Parse([]byte(testMachines))
	if err != nil {
		t.Fatal(err)
	}
	next, cmd := m.Update(registryMsg{reg: reg})
	m = next.(BrowseModel)
	if cmd == nil || m.graph.Generation == old || m.sim.Ticks() != 0 {
		t.Fatalf("reload should restart the layout on a new generation")
	}
	next, cmd = m.Update(layoutTickMsg{generation: old})
	m = next.(BrowseModel)
	if cmd != nil || m.sim.Ticks() != 0 {
		t.Error("pending tick from before the reload should be dropped")
	}

	// A failed reload keeps the running layout.
	next, cmd = m.Update(registryMsg{err: errors.New("bad yaml")})
	m = next.(BrowseModel)
	if cmd != nil || !m.sim.Stale(old) || m.sim.Stale(m.graph.Generation) {
		t.Error("failed reload should keep the current simulation")
	}
}

func TestBrowseWithLayout(t *testing.T) {
	lc := config.Default().Layout
	lc.Width, lc.Height, lc.CooldownTicks = 200, 100, 2
	m := browseModel(t, "Player").WithLayout(lc)
	if got := m.sim.Targets()["Idle"]; got != (radial.Point{X: 100, Y: 50}) {
		t.Errorf("center target = %v, want (100, 50)", got)
	}
	gen := m.graph.Generation
	next, _ := m.Update(layoutTickMsg{generation: gen})
	next, cmd := next.(BrowseModel).Update(layoutTickMsg{generation: gen})
	if cmd != nil || !next.(BrowseModel).sim.Done() {
		t.Error("layout should stop after the configured cooldown")
	}
}

func TestBrowseUnknownMachine(t *testing.T) {
	reg, err := registry.Parse([]byte(testMachines))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewBrowseModel(reg, nil, "Boss"); err == nil {
		t.Error("unknown machine should fail")
	}
}

func TestBrowseQuit(t *testing.T) {
	_, cmd := browseModel(t, "Player").Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}
