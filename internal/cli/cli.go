// Package cli implements the stateviz command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stateviz/pkg/buildinfo"
	"github.com/matzehuels/stateviz/pkg/cache"
	"github.com/matzehuels/stateviz/pkg/config"
	"github.com/matzehuels/stateviz/pkg/extract/props"
	"github.com/matzehuels/stateviz/pkg/pipeline"
	"github.com/matzehuels/stateviz/pkg/registry"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = config.AppName
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	// Config is loaded before any command runs. Flags override its values.
	Config *config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stateviz visualizes game state machines as radial graphs",
		Long: `Stateviz is a CLI tool for exploring state machines: it lays out states in
rings by hop distance from the initial state, renders them through Graphviz,
serves them over HTTP and mines class hierarchies and runtime properties from
source trees and logs.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.FileName+" or $"+config.EnvConfigPath+")")

	// Register all subcommands
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.extractCommand())
	root.AddCommand(c.propsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads the --config file, or the first config file found, or
// the defaults.
func (c *CLI) loadConfig() error {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFile(c.configPath)
		path = c.configPath
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return err
	}
	c.Config = cfg
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(store, c.newKeyer(), c.Logger)
	runner.TTL = c.Config.Cache.TTL.Duration
	return runner, nil
}

// newKeyer scopes keys of a shared redis cache by the configured prefix.
func (c *CLI) newKeyer() cache.Keyer {
	if c.Config.Cache.Backend == cache.BackendRedis {
		return cache.NewScopedKeyer(nil, c.Config.Cache.Redis.Prefix)
	}
	return cache.NewDefaultKeyer()
}

// newCache opens the configured cache backend. A file cache that cannot be
// created degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts, err := c.Config.CacheOptions()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	store, err := cache.Open(ctx, opts)
	if err != nil {
		if opts.Backend == cache.BackendRedis {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return store, nil
}

// =============================================================================
// Inputs
// =============================================================================

// loadRegistry loads path, falling back to the configured registry.
func (c *CLI) loadRegistry(path string) (*registry.Registry, error) {
	if path == "" {
		path = c.Config.Registry
	}
	reg, err := registry.Load(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded registry", "path", path, "machines", reg.Len())
	return reg, nil
}

// loadProperties loads the configured property bag. A missing or unset file
// yields an empty bag.
func (c *CLI) loadProperties(path string) props.Properties {
	if path == "" {
		path = c.Config.Properties
	}
	if path == "" {
		return props.Properties{}
	}
	p, err := props.LoadProperties(path)
	if err != nil {
		c.Logger.Warn("properties unavailable", "path", path, "error", err)
		return props.Properties{}
	}
	return p
}

// machineArg returns the machine named by args[i], or the registry default.
func machineArg(reg *registry.Registry, args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return reg.Default()
}

// =============================================================================
// Options Helpers
// =============================================================================

// setCLIDefaults seeds layout options from the configuration, then applies
// pipeline defaults to anything left unset.
func setCLIDefaults(opts *pipeline.Options, lc config.LayoutConfig) {
	opts.Width = lc.Width
	opts.Height = lc.Height
	opts.Ticks = lc.CooldownTicks
	opts.Settle = lc.CooldownTicks == 0
	opts.RingSpacing = lc.RingSpacing
	opts.Strength = lc.Strength
	opts.Engine = lc.Engine
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
}

// layoutFlags binds the layout flags shared by several commands. Values are
// applied by [layoutFlags.options] after the configuration is loaded.
type layoutFlags struct {
	vizType     string
	width       float64
	height      float64
	ticks       int
	settle      bool
	ringSpacing float64
	strength    float64
	engine      string
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.vizType, "type", "t", "", "visualization type: radial (default), nodelink")
	cmd.Flags().Float64Var(&f.width, "width", 0, "frame width (default from config)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "frame height (default from config)")
	cmd.Flags().IntVar(&f.ticks, "ticks", 0, "simulation tick budget (default from config)")
	cmd.Flags().BoolVar(&f.settle, "settle", false, "run the simulation until it settles")
	cmd.Flags().Float64Var(&f.ringSpacing, "ring-spacing", 0, "distance between rings")
	cmd.Flags().Float64Var(&f.strength, "strength", 0, "radial force strength (0-1]")
	cmd.Flags().StringVar(&f.engine, "engine", "", "Graphviz engine for nodelink layouts")
}

// options builds pipeline options: configuration first, then flags that were
// set explicitly.
func (f *layoutFlags) options(cmd *cobra.Command, lc config.LayoutConfig) (pipeline.Options, error) {
	var opts pipeline.Options
	setCLIDefaults(&opts, lc)

	flags := cmd.Flags()
	if flags.Changed("type") {
		if err := pipeline.ValidateVizType(f.vizType); err != nil {
			return opts, err
		}
		opts.VizType = f.vizType
	}
	if flags.Changed("width") {
		opts.Width = f.width
	}
	if flags.Changed("height") {
		opts.Height = f.height
	}
	if flags.Changed("ticks") {
		opts.Ticks = f.ticks
		opts.Settle = f.ticks == 0
	}
	if flags.Changed("settle") {
		opts.Settle = f.settle
	}
	if flags.Changed("ring-spacing") {
		opts.RingSpacing = f.ringSpacing
	}
	if flags.Changed("strength") {
		opts.Strength = f.strength
	}
	if flags.Changed("engine") {
		if err := pipeline.ValidateEngine(f.engine); err != nil {
			return opts, err
		}
		opts.Engine = f.engine
	}
	opts.SetLayoutDefaults()
	return opts, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .dot, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
