// Package pipeline provides the build → layout → render pipeline shared by
// the CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Construct the machine's graph from a registry
//  2. Layout: Place states on rings (radial) or hand off to Graphviz (nodelink)
//  3. Render: Generate output in various formats (SVG, PNG, PDF, DOT, JSON)
//
// Each stage caches its output keyed by the content hash of its input, so a
// changed registry or changed options never serve a stale artifact.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, reg, pipeline.Options{
//	    Machine: "Player",
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	g, err := runner.Build(ctx, reg, opts)
//	layout, err := runner.GenerateLayout(ctx, g, opts)
//	artifacts, err := runner.Render(ctx, layout, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stateviz/pkg/cache"
	"github.com/matzehuels/stateviz/pkg/core/fsm"
	"github.com/matzehuels/stateviz/pkg/core/layout/radial"
	"github.com/matzehuels/stateviz/pkg/core/render"
	"github.com/matzehuels/stateviz/pkg/errors"
	"github.com/matzehuels/stateviz/pkg/graph"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 600.0

	// DefaultTicks is the default simulation budget, matching the viewer's
	// cooldown.
	DefaultTicks = radial.DefaultCooldownTicks

	// DefaultEngine is the Graphviz engine for nodelink layouts.
	DefaultEngine = "twopi"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = graph.VizTypeRadial

// Format constants for output formats.
const (
	FormatSVG  = render.FormatSVG
	FormatPNG  = render.FormatPNG
	FormatPDF  = render.FormatPDF
	FormatDOT  = render.FormatDOT
	FormatJSON = render.FormatJSON
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	graph.VizTypeRadial:   true,
	graph.VizTypeNodelink: true,
}

// ValidEngines is the set of Graphviz engines accepted for nodelink layouts.
var ValidEngines = map[string]bool{
	"twopi": true,
	"neato": true,
	"circo": true,
	"dot":   true,
	"fdp":   true,
	"sfdp":  true,
}

// =============================================================================
// Source - where machines come from
// =============================================================================

// Source builds machine graphs. *registry.Registry satisfies it.
type Source interface {
	// Hash identifies the source content for cache keys.
	Hash() string
	// Build constructs a fresh graph for the named machine.
	Build(name string, opts ...fsm.Option) (*fsm.Graph, error)
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options
	Machine string `json:"machine"`
	Refresh bool   `json:"refresh,omitempty"`

	// Layout options
	VizType     string  `json:"viz_type,omitempty"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	Ticks       int     `json:"ticks,omitempty"`  // Simulation tick budget
	Settle      bool    `json:"settle,omitempty"` // Run until alpha settles, ignoring Ticks
	RingSpacing float64 `json:"ring_spacing,omitempty"`
	Strength    float64 `json:"strength,omitempty"`
	Engine      string  `json:"engine,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Hover    string   `json:"hover,omitempty"`
	Selected string   `json:"selected,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the built machine graph.
	Graph *fsm.Graph

	// PayloadHash is the content hash of the graph's payload.
	PayloadHash string

	// Layout contains the positioned states (radial) or DOT source (nodelink).
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	LinkCount  int
	Ticks      int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the payload came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid viz_type: %q (must be one of: radial, nodelink)", vizType)
	}
	return nil
}

// ValidateEngine checks that a Graphviz engine is supported.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid engine: %q (must be one of: twopi, neato, circo, dot, fdp, sfdp)", engine)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild checks required fields for building.
func (o *Options) ValidateForBuild() error {
	if o.Machine == "" {
		return errors.New(errors.ErrCodeInvalidInput, "machine is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Ticks <= 0 {
		o.Ticks = DefaultTicks
	}
	if o.RingSpacing <= 0 {
		o.RingSpacing = radial.DefaultRingSpacing
	}
	if o.Strength <= 0 {
		o.Strength = radial.DefaultStrength
	}
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	return ValidateEngine(o.Engine)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// IsRadial returns true if this is a radial visualization.
func (o *Options) IsRadial() bool {
	return o.VizType == "" || o.VizType == graph.VizTypeRadial
}

// IsNodelink returns true if this is a nodelink visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == graph.VizTypeNodelink
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	ticks := o.Ticks
	if o.Settle {
		ticks = -1
	}
	return cache.LayoutKeyOpts{
		VizType:     o.VizType,
		Width:       o.Width,
		Height:      o.Height,
		Ticks:       ticks,
		RingSpacing: o.RingSpacing,
		Strength:    o.Strength,
		Engine:      o.Engine,
		Detailed:    o.IsNodelink() && o.Detailed,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
		Hover:    o.Hover,
		Selected: o.Selected,
	}
}
