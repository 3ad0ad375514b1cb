// Package config loads gridx configuration from a YAML file and applies
// defaults and validation. All durations are expressed in milliseconds in
// the file and converted here.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults. Threshold mirrors the point where virtualization starts paying
// for itself in the terminal; below it, lists render whole.
const (
	DefaultItemHeight          = 1
	DefaultOverscan            = 5
	DefaultVirtualizeThreshold = 100
	DefaultDebounceMS          = 300
	DefaultWorkerTimeoutMS     = 30000
)

// Config is the full gridx configuration.
type Config struct {
	Grid   GridConfig   `yaml:"grid"`
	Worker WorkerConfig `yaml:"worker"`
	Search SearchConfig `yaml:"search"`
	Theme  ThemeConfig  `yaml:"theme"`
}

// GridConfig controls viewport windowing.
type GridConfig struct {
	// ItemHeight is the rendered height of one row. In a terminal this is
	// almost always 1.
	ItemHeight int `yaml:"item_height"`
	// Overscan is the number of extra rows rendered beyond the visible
	// viewport on each side.
	Overscan int `yaml:"overscan"`
	// VirtualizeThreshold: lists at or below this size are always fully
	// rendered.
	VirtualizeThreshold int `yaml:"virtualize_threshold"`
}

// WorkerConfig controls the offload channel.
type WorkerConfig struct {
	Enabled   *bool `yaml:"enabled"`
	TimeoutMS int   `yaml:"timeout_ms"`
}

// SearchConfig controls debouncing and which fields the search box scans.
type SearchConfig struct {
	DebounceMS int      `yaml:"debounce_ms"`
	Fields     []string `yaml:"fields"`
}

// ThemeConfig holds the handful of color tokens the grid uses.
type ThemeConfig struct {
	HeaderFG   string `yaml:"header_fg"`
	HeaderBG   string `yaml:"header_bg"`
	SelectedFG string `yaml:"selected_fg"`
	SelectedBG string `yaml:"selected_bg"`
	NoColor    bool   `yaml:"no_color"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	enabled := true
	return Config{
		Grid: GridConfig{
			ItemHeight:          DefaultItemHeight,
			Overscan:            DefaultOverscan,
			VirtualizeThreshold: DefaultVirtualizeThreshold,
		},
		Worker: WorkerConfig{
			Enabled:   &enabled,
			TimeoutMS: DefaultWorkerTimeoutMS,
		},
		Search: SearchConfig{
			DebounceMS: DefaultDebounceMS,
		},
		Theme: ThemeConfig{
			HeaderFG:   "15",
			HeaderBG:   "62",
			SelectedFG: "229",
			SelectedBG: "57",
		},
	}
}

// Load reads path, layers it over the defaults, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyDefaults fills zero values left by a partial file.
func applyDefaults(cfg *Config) {
	if cfg.Grid.ItemHeight == 0 {
		cfg.Grid.ItemHeight = DefaultItemHeight
	}
	if cfg.Grid.Overscan == 0 {
		cfg.Grid.Overscan = DefaultOverscan
	}
	if cfg.Grid.VirtualizeThreshold == 0 {
		cfg.Grid.VirtualizeThreshold = DefaultVirtualizeThreshold
	}
	if cfg.Worker.Enabled == nil {
		enabled := true
		cfg.Worker.Enabled = &enabled
	}
	if cfg.Worker.TimeoutMS == 0 {
		cfg.Worker.TimeoutMS = DefaultWorkerTimeoutMS
	}
	if cfg.Search.DebounceMS == 0 {
		cfg.Search.DebounceMS = DefaultDebounceMS
	}
}

// Validate rejects configurations the viewport or worker would refuse anyway,
// so the failure happens at startup rather than mid-session.
func (c Config) Validate() error {
	if c.Grid.ItemHeight <= 0 {
		return fmt.Errorf("config: grid.item_height must be positive, got %d", c.Grid.ItemHeight)
	}
	if c.Grid.Overscan < 0 {
		return fmt.Errorf("config: grid.overscan must be non-negative, got %d", c.Grid.Overscan)
	}
	if c.Grid.VirtualizeThreshold < 0 {
		return fmt.Errorf("config: grid.virtualize_threshold must be non-negative, got %d", c.Grid.VirtualizeThreshold)
	}
	if c.Worker.TimeoutMS < 0 {
		return fmt.Errorf("config: worker.timeout_ms must be non-negative, got %d", c.Worker.TimeoutMS)
	}
	if c.Search.DebounceMS < 0 {
		return fmt.Errorf("config: search.debounce_ms must be non-negative, got %d", c.Search.DebounceMS)
	}
	return nil
}

// WorkerEnabled reports the effective worker toggle.
func (c Config) WorkerEnabled() bool {
	return c.Worker.Enabled == nil || *c.Worker.Enabled
}

// WorkerTimeout returns the per-request timeout as a duration.
func (c Config) WorkerTimeout() time.Duration {
	return time.Duration(c.Worker.TimeoutMS) * time.Millisecond
}

// DebounceDelay returns the search debounce delay as a duration.
func (c Config) DebounceDelay() time.Duration {
	return time.Duration(c.Search.DebounceMS) * time.Millisecond
}
