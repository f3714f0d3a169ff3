package server

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stateviz/pkg/core/fsm"
	"github.com/matzehuels/stateviz/pkg/errors"
	"github.com/matzehuels/stateviz/pkg/extract/props"
	"github.com/matzehuels/stateviz/pkg/graph"
	"github.com/matzehuels/stateviz/pkg/pipeline"
	"github.com/matzehuels/stateviz/pkg/registry"
)

// =============================================================================
// Responses
// =============================================================================

type healthResponse struct {
	Status   string `json:"status"`
	Machines int    `json:"machines"`
	Registry string `json:"registry"`
}

type machineSummary struct {
	Name         string `json:"name"`
	InitialState string `json:"initialState"`
	States       int    `json:"states"`
	Transitions  int    `json:"transitions"`
	Default      bool   `json:"default,omitempty"`
}

type machinesResponse struct {
	Default  string           `json:"default"`
	Machines []machineSummary `json:"machines"`
}

type distancesResponse struct {
	Machine   string          `json:"machine"`
	From      string          `json:"from"`
	Distances map[string]*int `json:"distances"`
	MaxFinite int             `json:"maxFinite"`
}

// stateResponse is the inspector view of one state.
type stateResponse struct {
	Machine    string         `json:"machine"`
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Color      string         `json:"color"`
	Initial    bool           `json:"initial"`
	Degree     int            `json:"degree"`
	Distance   *int           `json:"distance"`
	Neighbors  []string       `json:"neighbors"`
	Incoming   []string       `json:"incoming"`
	Outgoing   []string       `json:"outgoing"`
	Mutual     []string       `json:"mutual"`
	Properties []propertyView `json:"properties"`
}

type propertyView struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Value   any    `json:"value"`
	Display string `json:"display"`
}

type nodeStyle struct {
	ID          string  `json:"id"`
	Highlighted bool    `json:"highlighted"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Padding     float64 `json:"padding"`
}

type linkStyle struct {
	Source        string  `json:"source"`
	Target        string  `json:"target"`
	Highlighted   bool    `json:"highlighted"`
	Color         string  `json:"color"`
	ParticleColor string  `json:"particleColor"`
	ParticleWidth float64 `json:"particleWidth"`
	ArrowLength   float64 `json:"arrowLength"`
}

type highlightResponse struct {
	Machine  string      `json:"machine"`
	Target   string      `json:"target"`
	Hover    string      `json:"hover"`
	Selected string      `json:"selected"`
	Active   bool        `json:"active"`
	Nodes    []nodeStyle `json:"nodes"`
	Links    []linkStyle `json:"links"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	reg := s.Registry()
	writeJSON(w, healthResponse{Status: "ok", Machines: reg.Len(), Registry: reg.Hash()})
}

func (s *Server) handleMachines(w http.ResponseWriter, r *http.Request) {
	reg := s.Registry()
	out := machinesResponse{Default: reg.Default(), Machines: make([]machineSummary, 0, reg.Len())}
	for _, name := range reg.Names() {
		m, err := reg.Machine(name)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		states, _ := reg.States(name)
		out.Machines = append(out.Machines, machineSummary{
			Name:         name,
			InitialState: m.InitialState,
			States:       len(states),
			Transitions:  len(m.Transitions),
			Default:      name == reg.Default(),
		})
	}
	writeJSON(w, out)
}

func (s *Server) handlePayload(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, hit, err := s.runner.BuildWithCacheInfo(r.Context(), s.Registry(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cacheHeader(w, hit)
	writeJSON(w, graph.FromFSM(opts.Machine, g))
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.runner.Build(r.Context(), s.Registry(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	layout, hit, err := s.runner.GenerateLayoutWithCacheInfo(r.Context(), g, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cacheHeader(w, hit)
	writeJSON(w, layout)
}

func (s *Server) handleDistances(w http.ResponseWriter, r *http.Request) {
	g, n, opts, ok := s.state(w, r)
	if !ok {
		return
	}
	dist := g.Distances()
	out := distancesResponse{
		Machine:   opts.Machine,
		From:      n.ID,
		Distances: make(map[string]*int, dist.Len()),
		MaxFinite: dist.MaxFinite(n.ID),
	}
	for id, d := range dist.AllDistances(n.ID) {
		out.Distances[id] = hops(d)
	}
	writeJSON(w, out)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	g, n, opts, ok := s.state(w, r)
	if !ok {
		return
	}
	out := stateResponse{
		Machine:    opts.Machine,
		ID:         n.ID,
		Name:       n.Name,
		Color:      n.Color,
		Initial:    n.ID == g.InitialState,
		Degree:     n.Degree(),
		Distance:   hops(g.Distances().Distance(g.InitialState, n.ID)),
		Neighbors:  make([]string, 0, len(n.Neighbors())),
		Incoming:   make([]string, 0, len(n.Incoming)),
		Outgoing:   make([]string, 0, len(n.Outgoing)),
		Mutual:     []string{},
		Properties: []propertyView{},
	}
	for _, m := range n.Neighbors() {
		out.Neighbors = append(out.Neighbors, m.ID)
	}
	for _, l := range n.Incoming {
		out.Incoming = append(out.Incoming, l.Source.ID)
	}
	for _, l := range n.Outgoing {
		out.Outgoing = append(out.Outgoing, l.Target.ID)
	}
	for _, l := range n.Mutual {
		if other := l.Other(n.ID).ID; !slices.Contains(out.Mutual, other) {
			out.Mutual = append(out.Mutual, other)
		}
	}
	for _, p := range props.Sorted(s.props.For(opts.Machine, n.ID)) {
		out.Properties = append(out.Properties, propertyView{
			Name:    p.Name,
			Kind:    p.Kind.String(),
			Value:   p.Value,
			Display: props.Format(p.Value),
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.runner.Build(r.Context(), s.Registry(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sel := pipeline.Selection(g, opts)
	out := highlightResponse{
		Machine:  opts.Machine,
		Target:   sel.Target(),
		Hover:    sel.Hover,
		Selected: sel.Selected,
		Active:   sel.Active(),
		Nodes:    make([]nodeStyle, len(g.Nodes)),
		Links:    make([]linkStyle, len(g.Links)),
	}
	for i, n := range g.Nodes {
		stroke, width := sel.NodeStroke(n)
		out.Nodes[i] = nodeStyle{
			ID:          n.ID,
			Highlighted: sel.HasNode(n.ID),
			Fill:        sel.NodeFill(n),
			Stroke:      stroke,
			StrokeWidth: width,
			Padding:     sel.NodePadding(n),
		}
	}
	for i, l := range g.Links {
		out.Links[i] = linkStyle{
			Source:        l.Source.ID,
			Target:        l.Target.ID,
			Highlighted:   sel.HasLink(l),
			Color:         sel.LinkColor(l),
			ParticleColor: sel.ParticleColor(l),
			ParticleWidth: sel.ParticleWidth(l),
			ArrowLength:   sel.ArrowLength(l),
		}
	}
	writeJSON(w, out)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{pipeline.FormatSVG}
	res, err := s.runner.Execute(r.Context(), s.Registry(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cacheHeader(w, res.CacheInfo.RenderHit)
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(res.Artifacts[pipeline.FormatSVG])
}

// =============================================================================
// Request helpers
// =============================================================================

// options derives pipeline options from the configured layout and the
// request's query: viz, ticks, settle, hover, selected, detailed, refresh.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Machine:     chi.URLParam(r, "name"),
		VizType:     q.Get("viz"),
		Width:       s.layout.Width,
		Height:      s.layout.Height,
		Ticks:       s.layout.CooldownTicks,
		Settle:      s.layout.CooldownTicks == 0,
		RingSpacing: s.layout.RingSpacing,
		Strength:    s.layout.Strength,
		Engine:      s.layout.Engine,
		Hover:       q.Get("hover"),
		Selected:    q.Get("selected"),
		Logger:      s.logger,
	}
	if opts.VizType != "" {
		if err := pipeline.ValidateVizType(opts.VizType); err != nil {
			return opts, err
		}
	}
	if v := q.Get("ticks"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "ticks must be a non-negative integer, got %q", v)
		}
		opts.Ticks = n
		opts.Settle = n == 0
	}
	for name, dst := range map[string]*bool{"settle": &opts.Settle, "detailed": &opts.Detailed, "refresh": &opts.Refresh} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean, got %q", name, v)
		}
		*dst = b
	}
	return opts, nil
}

// state resolves the {name} and {state} parameters to a built graph and
// one of its states, writing the error response when either is unknown.
func (s *Server) state(w http.ResponseWriter, r *http.Request) (*fsm.Graph, *fsm.State, pipeline.Options, bool) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return nil, nil, opts, false
	}
	g, err := s.runner.Build(r.Context(), s.Registry(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return nil, nil, opts, false
	}
	id := chi.URLParam(r, "state")
	n, ok := g.Node(id)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeStateNotFound, "state not found: %s", id))
		return nil, nil, opts, false
	}
	return g, n, opts, true
}

// hops converts a distance to its wire form: nil when unreachable.
func hops(d int) *int {
	if d == fsm.Unreachable {
		return nil
	}
	return &d
}

var _ pipeline.Source = (*registry.Registry)(nil)
