// Package config loads viewer settings from a TOML file.
//
// Config file locations (priority order):
//  1. $STATEVIZ_CONFIG
//  2. ./stateviz.toml
//  3. $XDG_CONFIG_HOME/stateviz/config.toml
//  4. ~/.config/stateviz/config.toml
//
// Every field has a default, so a missing file is not an error. Command-line
// flags override file values after loading.
//
//	registry = "machines.yaml"
//	properties = "values.json"
//
//	[layout]
//	ring_spacing = 180
//	cooldown_ticks = 10
//
//	[server]
//	addr = ":8080"
//
//	[cache]
//	backend = "redis"
//	ttl = "24h"
//
//	[cache.redis]
//	addr = "localhost:6379"
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/stateviz/pkg/cache"
	"github.com/matzehuels/stateviz/pkg/core/layout/radial"
	"github.com/matzehuels/stateviz/pkg/errors"
)

// Config is the complete viewer configuration.
type Config struct {
	// Registry is the machines file served and browsed.
	Registry string `toml:"registry" validate:"required"`
	// Properties is the optional per-state property bag shown by inspectors.
	Properties string `toml:"properties"`
	// PropsPrefix is the log line prefix the property indexer matches.
	PropsPrefix string `toml:"props_prefix" validate:"required"`

	Layout LayoutConfig `toml:"layout"`
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
}

// LayoutConfig controls the radial simulation and Graphviz rendering.
type LayoutConfig struct {
	Width         float64 `toml:"width" validate:"gt=0"`
	Height        float64 `toml:"height" validate:"gt=0"`
	RingSpacing   float64 `toml:"ring_spacing" validate:"gt=0"`
	Strength      float64 `toml:"strength" validate:"gt=0,lte=1"`
	CooldownTicks int     `toml:"cooldown_ticks" validate:"gte=0"`
	Engine        string  `toml:"engine" validate:"oneof=twopi neato circo dot fdp sfdp"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr            string   `toml:"addr" validate:"required"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	// Watch reloads the registry when its file changes.
	Watch bool `toml:"watch"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend" validate:"oneof=file redis none"`
	Dir     string      `toml:"dir"`
	TTL     Duration    `toml:"ttl"`
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig is used when the cache backend is redis.
type RedisConfig struct {
	Addr     string `toml:"addr" validate:"omitempty,hostname_port"`
	Password string `toml:"password"`
	DB       int    `toml:"db" validate:"gte=0,lte=15"`
	// Prefix scopes every key, so several deployments can share one server.
	Prefix string `toml:"prefix"`
}

// Duration is a time.Duration that decodes from strings like "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Registry:    "machines.yaml",
		PropsPrefix: "playerStateMachine",
		Layout: LayoutConfig{
			Width:         800,
			Height:        600,
			RingSpacing:   radial.DefaultRingSpacing,
			Strength:      radial.DefaultStrength,
			CooldownTicks: radial.DefaultCooldownTicks,
			Engine:        "twopi",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration{10 * time.Second},
			WriteTimeout:    Duration{30 * time.Second},
			ShutdownTimeout: Duration{5 * time.Second},
			Watch:           true,
		},
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			TTL:     Duration{cache.TTLLayout},
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "stateviz:",
			},
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load finds and loads the config file, or returns defaults if none is found.
// The returned path is empty when defaults are used.
func Load() (*Config, string, error) {
	path := FindPath()
	if path == "" {
		cfg := Default()
		return cfg, "", cfg.Validate()
	}
	cfg, err := LoadFile(path)
	return cfg, path, err
}

// LoadFile decodes path over the defaults and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}
	return Parse(string(data))
}

// Parse decodes TOML over the defaults and validates the result. Unknown keys
// are rejected so that typos surface instead of being ignored.
func Parse(data string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config key: %s", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config")
	}
	if c.Cache.Backend == cache.BackendRedis && c.Cache.Redis.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis.addr is required for the redis backend")
	}
	return nil
}

// CacheOptions converts the cache section into backend options. An empty
// directory resolves to the XDG cache directory.
func (c *Config) CacheOptions() (cache.Options, error) {
	dir := c.Cache.Dir
	if dir == "" && c.Cache.Backend != cache.BackendRedis && c.Cache.Backend != cache.BackendNone {
		d, err := CacheDir()
		if err != nil {
			return cache.Options{}, err
		}
		dir = d
	}
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     dir,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
		},
	}, nil
}
