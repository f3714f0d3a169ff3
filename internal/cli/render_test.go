package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stateviz/pkg/config"
	"github.com/matzehuels/stateviz/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "dot", []string{"dot"}},
		{"multiple formats", "svg,dot,json", []string{"svg", "dot", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseFormats(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"from layout input", "", "player.layout.json", "player"},
		{"from plain input", "", "out/door.json", "out/door"},
		{"output with format ext", "player.svg", "x.layout.json", "player"},
		{"output with dot ext", "out/player.dot", "x.layout.json", "out/player"},
		{"output without ext", "renders/player", "x.layout.json", "renders/player"},
		{"output with foreign ext", "player.v2", "x.layout.json", "player.v2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestSetCLIDefaults(t *testing.T) {
	lc := config.Default().Layout
	lc.RingSpacing = 120
	lc.CooldownTicks = 25

	var opts pipeline.Options
	setCLIDefaults(&opts, lc)

	if opts.RingSpacing != 120 {
		t.Errorf("RingSpacing = %v, want 120", opts.RingSpacing)
	}
	if opts.Ticks != 25 || opts.Settle {
		t.Errorf("Ticks = %d, Settle = %v; want 25, false", opts.Ticks, opts.Settle)
	}
	if opts.VizType != pipeline.DefaultVizType {
		t.Errorf("VizType = %q, want %q", opts.VizType, pipeline.DefaultVizType)
	}

	lc.CooldownTicks = 0
	opts = pipeline.Options{}
	setCLIDefaults(&opts, lc)
	if !opts.Settle {
		t.Error("zero cooldown ticks should settle")
	}
}

func newFlagCommand(f *layoutFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	f.register(cmd)
	return cmd
}

func TestLayoutFlagsOverrideConfig(t *testing.T) {
	lc := config.Default().Layout

	var f layoutFlags
	cmd := newFlagCommand(&f)
	if err := cmd.ParseFlags([]string{"--ring-spacing", "90", "-t", "nodelink", "--engine", "circo", "--settle"}); err != nil {
		t.Fatal(err)
	}
	opts, err := f.options(cmd, lc)
	if err != nil {
		t.Fatal(err)
	}
	if opts.RingSpacing != 90 {
		t.Errorf("RingSpacing = %v, want 90", opts.RingSpacing)
	}
	if opts.VizType != "nodelink" || opts.Engine != "circo" {
		t.Errorf("VizType, Engine = %q, %q", opts.VizType, opts.Engine)
	}
	if !opts.Settle {
		t.Error("--settle not applied")
	}
	if opts.Width != lc.Width {
		t.Errorf("Width = %v, want config %v", opts.Width, lc.Width)
	}
}

func TestLayoutFlagsUnsetKeepConfig(t *testing.T) {
	lc := config.Default().Layout
	lc.Strength = 0.5

	var f layoutFlags
	cmd := newFlagCommand(&f)
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatal(err)
	}
	opts, err := f.options(cmd, lc)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Strength != 0.5 {
		t.Errorf("Strength = %v, want 0.5", opts.Strength)
	}
	if opts.Ticks != lc.CooldownTicks {
		t.Errorf("Ticks = %d, want %d", opts.Ticks, lc.CooldownTicks)
	}
}

func TestLayoutFlagsInvalid(t *testing.T) {
	tests := [][]string{
		{"-t", "tower"},
		{"--engine", "osage"},
	}
	for _, args := range tests {
		var f layoutFlags
		cmd := newFlagCommand(&f)
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatal(err)
		}
		if _, err := f.options(cmd, config.Default().Layout); err == nil {
			t.Errorf("options(%v) should fail", args)
		}
	}
}

func TestRenderFlagsApply(t *testing.T) {
	f := renderFlags{formats: "dot,json", hover: "Walk", selected: "Jump", detailed: true}
	var opts pipeline.Options
	if err := f.apply(&opts); err != nil {
		t.Fatal(err)
	}
	if len(opts.Formats) != 2 || opts.Hover != "Walk" || opts.Selected != "Jump" || !opts.Detailed {
		t.Errorf("apply produced %+v", opts)
	}

	f.formats = "svg,gif"
	if err := f.apply(&opts); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{"dot": []byte("digraph {}"), "json": []byte("{}")}

	err := writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   []string{"dot", "json"},
		base:      filepath.Join(dir, "nested", "player"),
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"player.dot", "player.json"} {
		if _, err := os.Stat(filepath.Join(dir, "nested", name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}

	single := filepath.Join(dir, "graph.gv")
	err = writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   []string{"dot"},
		base:      filepath.Join(dir, "graph"),
		output:    single,
	})
	if err != nil {
		t.Fatal(err)
	}
	if data, err := os.ReadFile(single); err != nil || string(data) != "digraph {}" {
		t.Errorf("single output = %q, %v", data, err)
	}

	err = writeArtifacts(artifactWriteParams{artifacts: artifacts, formats: []string{"svg"}, base: filepath.Join(dir, "x")})
	if err == nil {
		t.Error("missing artifact should fail")
	}
}
