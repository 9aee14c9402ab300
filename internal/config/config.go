// Package config loads and validates the perch configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/perch/internal/overlap"
	"github.com/1broseidon/perch/internal/reserved"
)

// Config is the on-disk configuration. Durations are expressed in
// milliseconds to keep the YAML plain.
type Config struct {
	// Bar geometry.
	BarPosition   string `yaml:"bar_position"`   // top, bottom, left, right
	IconSize      int    `yaml:"icon_size"`      // pixels
	ChromePadding int    `yaml:"chrome_padding"` // pixels added to icon size
	EdgePadding   int    `yaml:"edge_padding"`   // pixels free at strip ends

	// Overlap scanning.
	ScanIntervalMS  int     `yaml:"scan_interval_ms"`
	MinScanGapMS    int     `yaml:"min_scan_gap_ms"`
	CooldownMS      int     `yaml:"cooldown_ms"`
	MinOverlapArea  int     `yaml:"min_overlap_area"` // square pixels
	MinDelta        int     `yaml:"min_delta"`        // pixels
	MaxCorrections  int     `yaml:"max_corrections"`  // per scan
	MinWindowWidth  int     `yaml:"min_window_width"`
	MinWindowHeight int     `yaml:"min_window_height"`
	AlphaFloor      float64 `yaml:"alpha_floor"`

	// Enumeration.
	CacheTTLMS int `yaml:"cache_ttl_ms"`
	ProbeRange int `yaml:"probe_range"`
	Workers    int `yaml:"workers"`

	// Classification. Empty lists keep the built-in defaults.
	FloatingAllowlist []string `yaml:"floating_allowlist"`

	// Logging: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		BarPosition:     string(reserved.PositionBottom),
		IconSize:        48,
		ChromePadding:   16,
		EdgePadding:     8,
		ScanIntervalMS:  3000,
		MinScanGapMS:    100,
		CooldownMS:      3000,
		MinOverlapArea:  100,
		MinDelta:        2,
		MaxCorrections:  3,
		MinWindowWidth:  100,
		MinWindowHeight: 100,
		AlphaFloor:      0.1,
		CacheTTLMS:      1000,
		ProbeRange:      1000,
		Workers:         8,
		LogLevel:        "info",
	}
}

// DefaultConfigPath returns ~/.config/perch/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "perch", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing
// file yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and validates the configuration at path. Unset
// fields keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if err := c.Reserved().Validate(); err != nil {
		return err
	}
	if c.ScanIntervalMS <= 0 {
		return fmt.Errorf("scan_interval_ms must be positive, got %d", c.ScanIntervalMS)
	}
	if c.MinScanGapMS <= 0 || c.MinScanGapMS > c.ScanIntervalMS {
		return fmt.Errorf("min_scan_gap_ms must be in (0, scan_interval_ms], got %d", c.MinScanGapMS)
	}
	if c.CooldownMS <= 0 {
		return fmt.Errorf("cooldown_ms must be positive, got %d", c.CooldownMS)
	}
	if c.AlphaFloor < 0 || c.AlphaFloor > 1 {
		return fmt.Errorf("alpha_floor must be in [0,1], got %v", c.AlphaFloor)
	}
	if c.ProbeRange <= 0 {
		return fmt.Errorf("probe_range must be positive, got %d", c.ProbeRange)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// Reserved derives the reserved-area configuration.
func (c *Config) Reserved() reserved.Config {
	return reserved.Config{
		Position:      reserved.Position(c.BarPosition),
		IconSize:      c.IconSize,
		ChromePadding: c.ChromePadding,
		EdgePadding:   c.EdgePadding,
	}
}

// Overlap derives the overlap-engine configuration.
func (c *Config) Overlap() overlap.Config {
	return overlap.Config{
		ScanInterval:    time.Duration(c.ScanIntervalMS) * time.Millisecond,
		MinScanGap:      time.Duration(c.MinScanGapMS) * time.Millisecond,
		Cooldown:        time.Duration(c.CooldownMS) * time.Millisecond,
		MinOverlapArea:  c.MinOverlapArea,
		MinDelta:        c.MinDelta,
		MaxCorrections:  c.MaxCorrections,
		MinWindowWidth:  c.MinWindowWidth,
		MinWindowHeight: c.MinWindowHeight,
		AlphaFloor:      c.AlphaFloor,
	}
}

// CacheTTL returns the window cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMS) * time.Millisecond
}
