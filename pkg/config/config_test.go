package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tabgrove/tabgrove/pkg/model"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Behavior.OpenWithOpener != model.InsertChild {
		t.Errorf("OpenWithOpener = %q, want child", cfg.Behavior.OpenWithOpener)
	}
	if cfg.Behavior.OpenNoOpener != model.InsertEnd {
		t.Errorf("OpenNoOpener = %q, want end", cfg.Behavior.OpenNoOpener)
	}
	if cfg.Behavior.CloseBehavior != model.PromoteChildren {
		t.Errorf("CloseBehavior = %q, want promote", cfg.Behavior.CloseBehavior)
	}
	if cfg.Persistence.Debounce() != 200*time.Millisecond {
		t.Errorf("Debounce = %v, want 200ms", cfg.Persistence.Debounce())
	}
	if cfg.Persistence.Backoff() != 50*time.Millisecond {
		t.Errorf("Backoff = %v, want 50ms", cfg.Persistence.Backoff())
	}
}

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadFrom_ParsesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
behavior:
  open_with_opener: sibling
  close_behavior: cascade
  gap_ratio: 0.3
persistence:
  debounce_ms: 500
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Behavior.OpenWithOpener != model.InsertSibling {
		t.Errorf("OpenWithOpener = %q, want sibling", cfg.Behavior.OpenWithOpener)
	}
	if cfg.Behavior.CloseBehavior != model.CascadeChildren {
		t.Errorf("CloseBehavior = %q, want cascade", cfg.Behavior.CloseBehavior)
	}
	if cfg.Behavior.GapRatio != 0.3 {
		t.Errorf("GapRatio = %v, want 0.3", cfg.Behavior.GapRatio)
	}
	if cfg.Persistence.DebounceMs != 500 {
		t.Errorf("DebounceMs = %d, want 500", cfg.Persistence.DebounceMs)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Behavior.OpenNoOpener != model.InsertEnd {
		t.Errorf("OpenNoOpener = %q, want default end", cfg.Behavior.OpenNoOpener)
	}
}

func TestLoadFrom_NormalizesBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
behavior:
  open_with_opener: sideways
  close_behavior: explode
  gap_ratio: 0.9
persistence:
  debounce_ms: -5
  max_retries: -1
  backoff_ms: 0
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want every bad value clamped to defaults", cfg)
	}
}

func TestLoadFrom_MalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("behavior: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("malformed yaml accepted")
	}
}

func TestSaveToLoadFromRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Behavior.CloseBehavior = model.OrphanChildren
	cfg.Persistence.MaxRetries = 7

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestConfigDir_HonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	if got := ConfigDir(); got != "/tmp/xdg-test/tabgrove" {
		t.Errorf("ConfigDir = %q", got)
	}
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")
	if got := StateDir(); got != "/tmp/xdg-state/tabgrove" {
		t.Errorf("StateDir = %q", got)
	}
}
