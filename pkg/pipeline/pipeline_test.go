package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/stateviz/pkg/cache"
	"github.com/matzehuels/stateviz/pkg/graph"
	"github.com/matzehuels/stateviz/pkg/registry"
)

const machines = `
machines:
  Player:
    initialState: Idle
    transitions:
      - {from: Idle, to: Walk}
      - {from: Walk, to: Idle}
      - {from: Walk, to: Jump}
      - {from: Jump, to: Fall}
      - {from: Ledge, to: Ledge}
`

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := registry.Parse([]byte(machines))
	if err != nil {
		t.Fatalf("parse registry: %v", err)
	}
	return r
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateVizTypeAndEngine(t *testing.T) {
	for _, v := range []string{"radial", "nodelink"} {
		if err := ValidateVizType(v); err != nil {
			t.Errorf("ValidateVizType(%q) = %v", v, err)
		}
	}
	for _, v := range []string{"tower", ""} {
		if err := ValidateVizType(v); err == nil {
			t.Errorf("ValidateVizType(%q) should fail", v)
		}
	}
	if err := ValidateEngine("twopi"); err != nil {
		t.Error(err)
	}
	if err := ValidateEngine("spring"); err == nil {
		t.Error("unknown engine should fail")
	}
}

func TestOptionsValidateForBuild(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForBuild(); err == nil {
		t.Error("Missing machine should fail")
	}
	opts.Machine = "Player"
	if err := opts.ValidateForBuild(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestSetLayoutDefaults(t *testing.T) {
	opts := Options{}
	opts.SetLayoutDefaults()

	if opts.VizType != DefaultVizType {
		t.Errorf("VizType should be %s, got %s", DefaultVizType, opts.VizType)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("viewport should be %vx%v, got %vx%v", DefaultWidth, DefaultHeight, opts.Width, opts.Height)
	}
	if opts.Ticks != DefaultTicks {
		t.Errorf("Ticks should be %d, got %d", DefaultTicks, opts.Ticks)
	}
	if opts.RingSpacing != 180 || opts.Strength != 0.25 {
		t.Errorf("force defaults = %v, %v", opts.RingSpacing, opts.Strength)
	}
	if opts.Engine != DefaultEngine {
		t.Errorf("Engine should be %s, got %s", DefaultEngine, opts.Engine)
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Machine: "Player"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	ticks, viz := opts.Ticks, opts.VizType
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Ticks != ticks || opts.VizType != viz {
		t.Error("defaults changed on second call")
	}
}

func TestOptionsIsRadialIsNodelink(t *testing.T) {
	opts := Options{}
	if !opts.IsRadial() || opts.IsNodelink() {
		t.Error("Empty VizType should be radial")
	}
	opts.VizType = "nodelink"
	if opts.IsRadial() || !opts.IsNodelink() {
		t.Error("nodelink VizType should be nodelink")
	}
}

func TestLayoutKeyOpts_Settle(t *testing.T) {
	a := Options{Ticks: 10}
	b := Options{Ticks: 10, Settle: true}
	if a.LayoutKeyOpts() == b.LayoutKeyOpts() {
		t.Error("settled and capped layouts must not share a cache key")
	}
}

func TestLayoutKeyOpts_Detailed(t *testing.T) {
	plain := Options{VizType: graph.VizTypeNodelink}
	detailed := Options{VizType: graph.VizTypeNodelink, Detailed: true}
	if plain.LayoutKeyOpts() == detailed.LayoutKeyOpts() {
		t.Error("detailed nodelink layouts must not share a cache key")
	}

	// Radial layouts ignore Detailed.
	radial := Options{Detailed: true}
	if radial.LayoutKeyOpts() != (&Options{}).LayoutKeyOpts() {
		t.Error("radial layouts should share a key regardless of Detailed")
	}
}

func TestRunnerGenerateLayout_DetailedNotShared(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()
	g, _ := testRegistry(t).Build("Player")

	detailed, hit, err := runner.GenerateLayoutWithCacheInfo(ctx, g, Options{Machine: "Player", VizType: graph.VizTypeNodelink, Detailed: true})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first detailed layout should miss")
	}

	plain, hit, err := runner.GenerateLayoutWithCacheInfo(ctx, g, Options{Machine: "Player", VizType: graph.VizTypeNodelink})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("plain layout should not be served from the detailed entry")
	}
	if plain.DOT == detailed.DOT {
		t.Error("plain and detailed layouts should carry different DOT")
	}

	if _, hit, _ := runner.GenerateLayoutWithCacheInfo(ctx, g, Options{Machine: "Player", VizType: graph.VizTypeNodelink, Detailed: true}); !hit {
		t.Error("repeated detailed layout should hit")
	}
}

func TestPayloadHashStableAcrossBuilds(t *testing.T) {
	reg := testRegistry(t)
	g1, _ := reg.Build("Player")
	g2, _ := reg.Build("Player")

	h1, err := PayloadHash("Player", g1)
	if err != nil {
		t.Fatal(err)
	}
	h2, _ := PayloadHash("Player", g2)
	if h1 != h2 {
		t.Error("payload hash should ignore the build generation")
	}
}

func TestGenerateLayout_Radial(t *testing.T) {
	g, _ := testRegistry(t).Build("Player")
	opts := Options{Machine: "Player"}
	opts.SetLayoutDefaults()

	l, err := GenerateLayout(context.Background(), g, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !l.IsRadial() || l.Ticks != DefaultTicks {
		t.Errorf("layout = %s with %d ticks", l.VizType, l.Ticks)
	}
	if got := l.Rings[2]; len(got) != 1 || got[0] != "Jump" {
		t.Errorf("ring 2 = %v, want [Jump]", got)
	}
	if _, ok := l.Rings[-1]; ok {
		t.Error("unreachable states should not be in a ring")
	}
	for _, n := range l.Nodes {
		if n.ID == "Ledge" && n.Distance != nil {
			t.Error("Ledge is unreachable and should have no distance")
		}
	}
}

func TestGenerateLayout_Settle(t *testing.T) {
	g, _ := testRegistry(t).Build("Player")
	opts := Options{Machine: "Player", Settle: true}
	opts.SetLayoutDefaults()

	l, err := GenerateLayout(context.Background(), g, opts)
	if err != nil {
		t.Fatal(err)
	}
	if l.Ticks < 290 || l.Ticks > 310 {
		t.Errorf("settled layout ran %d ticks, want about 300", l.Ticks)
	}
}

func TestGenerateLayout_Nodelink(t *testing.T) {
	g, _ := testRegistry(t).Build("Player")
	opts := Options{Machine: "Player", VizType: graph.VizTypeNodelink}
	opts.SetLayoutDefaults()

	l, err := GenerateLayout(context.Background(), g, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !l.IsNodelink() || !strings.Contains(l.DOT, "layout=twopi;") {
		t.Errorf("nodelink layout missing twopi DOT:\n%s", l.DOT)
	}
}

func TestRunnerExecute_CachesEveryStage(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()
	reg := testRegistry(t)

	opts := Options{Machine: "Player", Formats: []string{FormatDOT, FormatJSON}}
	first, err := runner.Execute(ctx, reg, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.BuildHit || first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss every stage: %+v", first.CacheInfo)
	}
	if first.Stats.NodeCount != 5 || first.Stats.LinkCount != 5 {
		t.Errorf("stats = %+v", first.Stats)
	}
	if !strings.Contains(string(first.Artifacts[FormatDOT]), `pos="`) {
		t.Error("radial DOT should pin simulated positions")
	}

	second, err := runner.Execute(ctx, reg, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.BuildHit || !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit every stage: %+v", second.CacheInfo)
	}
	if second.PayloadHash != first.PayloadHash {
		t.Error("payload hash should be stable")
	}

	opts.Refresh = true
	third, err := runner.Execute(ctx, reg, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.BuildHit || third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass the cache: %+v", third.CacheInfo)
	}
}

func TestRunnerExecute_Errors(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	reg := testRegistry(t)

	if _, err := runner.Execute(context.Background(), reg, Options{}); err == nil {
		t.Error("missing machine should fail")
	}
	if _, err := runner.Execute(context.Background(), reg, Options{Machine: "Ghost"}); err == nil {
		t.Error("unknown machine should fail")
	}
	if _, err := runner.Execute(context.Background(), reg, Options{Machine: "Player", Formats: []string{"gif"}}); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestRenderFromLayout_HighlightsSelection(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)
	reg := testRegistry(t)

	res, err := runner.Execute(ctx, reg, Options{Machine: "Player", Formats: []string{FormatDOT}, Hover: "Walk"})
	if err != nil {
		t.Fatal(err)
	}
	dot := string(res.Artifacts[FormatDOT])
	if !strings.Contains(dot, `"Walk" -> "Jump" [color="yellow"`) {
		t.Errorf("link leaving the hovered state should be yellow:\n%s", dot)
	}
	if !strings.Contains(dot, `"Jump" -> "Fall" [color="#ffffff33"`) {
		t.Errorf("links outside the hover set should be dimmed:\n%s", dot)
	}
}

func TestRenderFromLayout_SVG(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), testRegistry(t), Options{
		Machine: "Player",
		VizType: graph.VizTypeNodelink,
		Formats: []string{FormatSVG},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(string(res.Artifacts[FormatSVG]), "<svg") {
		t.Error("SVG artifact should contain an svg element")
	}
}

func TestSelection(t *testing.T) {
	g, _ := testRegistry(t).Build("Player")

	sel := Selection(g, Options{Selected: "Jump"})
	if sel.Target() != "Jump" || sel.Hover != "" {
		t.Errorf("selection only: target %q hover %q", sel.Target(), sel.Hover)
	}
	if !sel.HasNode("Walk") {
		t.Error("selected state's neighbors should be highlighted")
	}

	sel = Selection(g, Options{Hover: "Idle", Selected: "Jump"})
	if sel.Target() != "Idle" || sel.HasNode("Fall") {
		t.Error("hover should win over selection")
	}
}
