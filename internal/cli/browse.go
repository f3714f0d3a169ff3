package cli

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stateviz/pkg/config"
	"github.com/matzehuels/stateviz/pkg/core/fsm"
	"github.com/matzehuels/stateviz/pkg/core/highlight"
	"github.com/matzehuels/stateviz/pkg/core/layout/radial"
	"github.com/matzehuels/stateviz/pkg/extract/props"
	"github.com/matzehuels/stateviz/pkg/registry"
)

// List styles
var (
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listHoverStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorYellowBright)
	listNeighborStyle = lipgloss.NewStyle().Foreground(colorSky)
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorMagenta)
	panelStyle        = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// browseCommand creates the browse command for the interactive inspector.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		properties string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "browse [registry] [machine]",
		Short: "Browse machines interactively",
		Long: `Browse machines interactively.

States are listed by hop distance from the initial state. Moving the cursor
hovers a state: it and its neighbors are highlighted and the inspector shows
its transitions and properties. Enter selects the state; the inspector keeps
showing the selection when nothing is hovered. The radial layout of the
machine is simulated live and restarts whenever the machine changes.

Keys: ↑/↓ move  ⏎ select  esc clear  tab next machine  q quit`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			reg, err := c.loadRegistry(path)
			if err != nil {
				return err
			}
			m, err := NewBrowseModel(reg, c.loadProperties(properties), machineArg(reg, args, 1))
			if err != nil {
				return err
			}
			m = m.WithLayout(c.Config.Layout)
			return c.runBrowse(cmd.Context(), m, watch)
		},
	}

	cmd.Flags().StringVar(&properties, "properties", "", "property bag JSON (default from config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the registry when it changes")

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, m BrowseModel, watch bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if path := m.reg.Path(); watch && path != "" {
		w := registry.NewWatcher(path, func(r *registry.Registry, err error) {
			p.Send(registryMsg{reg: r, err: err})
		}).WithLogger(c.Logger)
		go func() { _ = w.Watch(ctx) }()
	}

	_, err := p.Run()
	return err
}

// =============================================================================
// BrowseModel - Interactive machine inspector
// =============================================================================

// layoutTickInterval paces the live simulation at about 60 ticks a second.
const layoutTickInterval = 16 * time.Millisecond

// registryMsg delivers a reloaded registry to a running browser.
type registryMsg struct {
	reg *registry.Registry
	err error
}

// layoutTickMsg advances the simulation of one graph generation. Ticks
// scheduled for a graph that has since been replaced are dropped.
type layoutTickMsg struct {
	generation uuid.UUID
}

// BrowseModel is the bubbletea model for the machine inspector.
type BrowseModel struct {
	reg     *registry.Registry
	props   props.Properties
	machine int

	graph  *fsm.Graph
	states []*fsm.State
	sel    *highlight.Selection

	layout config.LayoutConfig
	force  *radial.Force
	sim    *radial.Simulation

	Cursor int
	Offset int
	Height int
	// Status is the last reload or build message.
	Status string
}

// NewBrowseModel creates a browser showing machine, or the registry default
// when machine is empty.
func NewBrowseModel(reg *registry.Registry, p props.Properties, machine string) (BrowseModel, error) {
	m := BrowseModel{reg: reg, props: p, Height: 15, sel: highlight.New(), layout: config.Default().Layout}
	if machine == "" {
		machine = reg.Default()
	}
	m.machine = slices.Index(reg.Names(), machine)
	if m.machine < 0 {
		_, err := reg.Machine(machine)
		return m, err
	}
	if err := m.load(); err != nil {
		return m, err
	}
	return m, nil
}

// Machine returns the name of the machine being browsed.
func (m BrowseModel) Machine() string { return m.reg.Names()[m.machine] }

// Selection returns the current hover/selection state.
func (m BrowseModel) Selection() *highlight.Selection { return m.sel }

// WithLayout returns m simulating under lc instead of the default layout
// configuration. The simulation restarts from the initial placement.
func (m BrowseModel) WithLayout(lc config.LayoutConfig) BrowseModel {
	m.layout = lc
	m.startLayout()
	return m
}

// load builds the current machine and orders its states by hop distance.
func (m *BrowseModel) load() error {
	g, err := m.reg.Build(m.Machine())
	if err != nil {
		return err
	}
	m.graph = g
	m.states = orderStates(g)
	m.Cursor, m.Offset = 0, 0
	m.sel = highlight.New()
	m.hover()
	m.startLayout()
	return nil
}

// startLayout replaces the simulation with one for the current graph.
func (m *BrowseModel) startLayout() {
	m.force = radial.New(m.graph.InitialState,
		radial.WithRingSpacing(m.layout.RingSpacing),
		radial.WithStrength(m.layout.Strength),
	)
	m.sim = radial.NewSimulation(m.graph, m.force,
		radial.WithViewport(m.layout.Width, m.layout.Height),
		radial.WithCooldownTicks(m.layout.CooldownTicks),
	)
	m.sim.Initialize()
}

// layoutTick schedules the next tick of the current simulation, or nothing
// once it is done.
func (m BrowseModel) layoutTick() tea.Cmd {
	if m.sim == nil || m.sim.Done() {
		return nil
	}
	gen := m.graph.Generation
	return tea.Tick(layoutTickInterval, func(time.Time) tea.Msg {
		return layoutTickMsg{generation: gen}
	})
}

// stepLayout advances the simulation for a tick of the current generation.
func (m *BrowseModel) stepLayout(msg layoutTickMsg) tea.Cmd {
	if m.sim == nil || m.sim.Stale(msg.generation) {
		return nil
	}
	if err := m.sim.Step(m.graph); err != nil {
		return nil
	}
	return m.layoutTick()
}

// orderStates sorts states by distance from the initial state, then by ID.
// Unreachable states come last.
func orderStates(g *fsm.Graph) []*fsm.State {
	return orderStatesFrom(g, g.InitialState)
}

func orderStatesFrom(g *fsm.Graph, from string) []*fsm.State {
	states := slices.Clone(g.Nodes)
	dist := g.Distances()
	slices.SortFunc(states, func(a, b *fsm.State) int {
		da, db := dist.Distance(from, a.ID), dist.Distance(from, b.ID)
		return cmp.Or(cmp.Compare(da, db), cmp.Compare(a.ID, b.ID))
	})
	return states
}

func (m *BrowseModel) hover() {
	if len(m.states) == 0 {
		m.sel.ForNode(m.graph, "")
		return
	}
	m.sel.ForNode(m.graph, m.states[m.Cursor].ID)
}

func (m BrowseModel) Init() tea.Cmd {
	return m.layoutTick()
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
				m.hover()
			}
		case "down", "j":
			if m.Cursor < len(m.states)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
				m.hover()
			}
		case "enter", " ":
			if len(m.states) == 0 {
				break
			}
			id := m.states[m.Cursor].ID
			if m.sel.Selected == id {
				m.sel.Select("")
			} else {
				m.sel.Select(id)
			}
		case "esc":
			m.sel.Clear()
		case "tab":
			cmd = m.switchMachine(1)
		case "shift+tab":
			cmd = m.switchMachine(-1)
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	case registryMsg:
		cmd = m.reload(msg)
	case layoutTickMsg:
		cmd = m.stepLayout(msg)
	}
	return m, cmd
}

// switchMachine moves to the next machine and starts its layout.
func (m *BrowseModel) switchMachine(step int) tea.Cmd {
	n := m.reg.Len()
	if n < 2 {
		return nil
	}
	prev := m.machine
	m.machine = ((m.machine+step)%n + n) % n
	if err := m.load(); err != nil {
		m.machine = prev
		m.Status = err.Error()
		return nil
	}
	m.Status = ""
	return m.layoutTick()
}

// reload swaps in a new registry, keeping the current machine when it still
// exists. A failed reload keeps the current registry and its layout.
func (m *BrowseModel) reload(msg registryMsg) tea.Cmd {
	if msg.err != nil {
		m.Status = "reload failed: " + msg.err.Error()
		return nil
	}
	name := m.Machine()
	prev, prevMachine := m.reg, m.machine
	m.reg = msg.reg
	m.machine = max(slices.Index(msg.reg.Names(), name), 0)
	if msg.reg.Len() == 0 {
		m.reg, m.machine = prev, prevMachine
		m.Status = "reload failed: registry is empty"
		return nil
	}
	if err := m.load(); err != nil {
		m.reg, m.machine = prev, prevMachine
		m.Status = "reload failed: " + err.Error()
		return nil
	}
	m.Status = fmt.Sprintf("reloaded %d machines", msg.reg.Len())
	return m.layoutTick()
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Machine()))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  initial: %s  %s", m.machine+1, m.reg.Len(), m.graph.InitialState, m.layoutStatus())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ move  ⏎ select  esc clear  tab machine  q quit"))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.stateTable(), " ", m.inspector()))
	b.WriteString("\n")
	if m.Status != "" {
		b.WriteString(StyleWarning.Render(m.Status))
		b.WriteString("\n")
	}
	return b.String()
}

func (m BrowseModel) layoutStatus() string {
	if m.sim == nil {
		return ""
	}
	if m.sim.Done() {
		return fmt.Sprintf("layout settled after %d ticks", m.sim.Ticks())
	}
	return fmt.Sprintf("layout tick %d  α=%.3f", m.sim.Ticks(), m.sim.Alpha())
}

func (m BrowseModel) stateTable() string {
	end := min(m.Offset+m.Height, len(m.states))
	dist := m.graph.Distances()

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		s := m.states[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			s.ID,
			formatHops(dist.Distance(m.graph.InitialState, s.ID)),
			fmt.Sprint(len(s.Incoming)),
			fmt.Sprint(len(s.Outgoing)),
			fmt.Sprint(len(s.Mutual)),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "State", "Hops", "In", "Out", "Mutual").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.states) {
				return lipgloss.NewStyle()
			}
			return m.rowStyle(m.states[idx])
		})
	return t.Render()
}

// rowStyle colors a state the way the graph viewer does: the hovered state
// in yellow, the selection in magenta, its neighbors in sky blue and the
// rest dimmed while anything is highlighted.
func (m BrowseModel) rowStyle(s *fsm.State) lipgloss.Style {
	switch {
	case s.ID == m.sel.Hover:
		return listHoverStyle
	case s.ID == m.sel.Selected:
		return listSelectedStyle
	case m.sel.HasNode(s.ID):
		return listNeighborStyle
	case m.sel.Active():
		return listDimStyle
	}
	return listNormalStyle
}

func (m BrowseModel) inspector() string {
	target := m.sel.Target()
	if target == "" {
		return panelStyle.Render(listDimStyle.Render("nothing selected"))
	}
	s, ok := m.graph.Node(target)
	if !ok {
		return panelStyle.Render(listDimStyle.Render("unknown state " + target))
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(s.ID))
	if s.ID == m.sel.Selected {
		b.WriteString(listSelectedStyle.Render("  selected"))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("hops from " + m.graph.InitialState + ": "))
	b.WriteString(StyleNumber.Render(formatHops(m.graph.Distances().Distance(m.graph.InitialState, s.ID))))
	b.WriteString("\n")
	if m.force != nil {
		if ring := m.force.Ring(m.graph, s.ID); ring >= 0 {
			b.WriteString(listDimStyle.Render(fmt.Sprintf("ring %d at (%.0f, %.0f)", ring, s.X, s.Y)))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	writeLinks(&b, "to", s.Outgoing, func(l *fsm.Link) string { return l.Target.ID })
	writeLinks(&b, "from", s.Incoming, func(l *fsm.Link) string { return l.Source.ID })
	writeLinks(&b, "mutual", s.Mutual, func(l *fsm.Link) string { return l.Other(s.ID).ID })

	bag := m.props.For(m.Machine(), s.ID)
	if len(bag) > 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(colorGray).Bold(true).Render("properties"))
		b.WriteString("\n")
		for _, p := range props.Sorted(bag) {
			fmt.Fprintf(&b, "%s %s %s\n",
				StyleValue.Render(p.Name),
				listDimStyle.Render(p.Kind.String()),
				StyleHighlight.Render(props.Format(p.Value)))
		}
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func writeLinks(b *strings.Builder, label string, links []*fsm.Link, end func(*fsm.Link) string) {
	if len(links) == 0 {
		return
	}
	ids := make([]string, 0, len(links))
	for _, l := range links {
		if id := end(l); !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	fmt.Fprintf(b, "%s %s\n", listDimStyle.Render(fmt.Sprintf("%-6s", label)), strings.Join(ids, ", "))
}

func formatHops(d int) string {
	if d == fsm.Unreachable {
		return "—"
	}
	return fmt.Sprint(d)
}
