// Package config handles loading and saving tabgrove configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/tabgrove/config.yaml
//   - State:   ~/.local/state/tabgrove/ (per-window store files)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tabgrove/tabgrove/pkg/model"
)

// Behavior holds the parameters the engine, resolver, and coordinator
// consume.
type Behavior struct {
	// OpenWithOpener is where a tab opened from another tab is inserted.
	OpenWithOpener model.InsertPos `yaml:"open_with_opener,omitempty"`
	// OpenNoOpener is where a tab with no opener is inserted.
	OpenNoOpener model.InsertPos `yaml:"open_no_opener,omitempty"`
	// CloseBehavior is what happens to a closed tab's children.
	CloseBehavior model.ChildBehavior `yaml:"close_behavior,omitempty"`
	// GapRatio is the drop resolver's edge-band fraction (0-0.5).
	GapRatio float64 `yaml:"gap_ratio,omitempty"`
}

// PersistenceConfig tunes the write-behind gateway.
type PersistenceConfig struct {
	DebounceMs int `yaml:"debounce_ms,omitempty"`
	MaxRetries int `yaml:"max_retries,omitempty"`
	BackoffMs  int `yaml:"backoff_ms,omitempty"`
}

// Config is the top-level configuration for tabgrove.
type Config struct {
	Behavior    Behavior          `yaml:"behavior,omitempty"`
	Persistence PersistenceConfig `yaml:"persistence,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Behavior: Behavior{
			OpenWithOpener: model.InsertChild,
			OpenNoOpener:   model.InsertEnd,
			CloseBehavior:  model.PromoteChildren,
			GapRatio:       0.25,
		},
		Persistence: PersistenceConfig{
			DebounceMs: 200,
			MaxRetries: 3,
			BackoffMs:  50,
		},
	}
}

// Debounce returns the persistence debounce as a duration.
func (p PersistenceConfig) Debounce() time.Duration {
	return time.Duration(p.DebounceMs) * time.Millisecond
}

// Backoff returns the persistence retry backoff as a duration.
func (p PersistenceConfig) Backoff() time.Duration {
	return time.Duration(p.BackoffMs) * time.Millisecond
}

// ConfigDir returns the XDG config directory for tabgrove.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "tabgrove")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tabgrove")
}

// StateDir returns the XDG state directory for tabgrove.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "tabgrove")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "tabgrove")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// normalize clamps out-of-range values back to defaults rather than
// failing the load.
func (c *Config) normalize() {
	def := DefaultConfig()
	switch c.Behavior.OpenWithOpener {
	case model.InsertChild, model.InsertSibling, model.InsertEnd:
	default:
		c.Behavior.OpenWithOpener = def.Behavior.OpenWithOpener
	}
	switch c.Behavior.OpenNoOpener {
	case model.InsertChild, model.InsertSibling, model.InsertEnd:
	default:
		c.Behavior.OpenNoOpener = def.Behavior.OpenNoOpener
	}
	if !c.Behavior.CloseBehavior.Valid() {
		c.Behavior.CloseBehavior = def.Behavior.CloseBehavior
	}
	if c.Behavior.GapRatio <= 0 || c.Behavior.GapRatio >= 0.5 {
		c.Behavior.GapRatio = def.Behavior.GapRatio
	}
	if c.Persistence.DebounceMs <= 0 {
		c.Persistence.DebounceMs = def.Persistence.DebounceMs
	}
	if c.Persistence.MaxRetries < 0 {
		c.Persistence.MaxRetries = def.Persistence.MaxRetries
	}
	if c.Persistence.BackoffMs <= 0 {
		c.Persistence.BackoffMs = def.Persistence.BackoffMs
	}
}
