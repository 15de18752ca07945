package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func TestSubTickDuration(t *testing.T) {
	p := Default().Physics
	want := time.Second / 60 / 5
	if got := p.SubTickDuration(); got != want {
		t.Errorf("Expected sub-tick %v, got %v", want, got)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Physics.TicksPerFrame != 5 {
		t.Errorf("Expected default ticks 5, got %d", cfg.Physics.TicksPerFrame)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physcore.yaml")
	data := []byte("physics:\n  ticks_per_frame: 8\n  max_ticks_per_frame: 20\nchannel:\n  timeout: 1s\n  recovery: restart\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Physics.TicksPerFrame != 8 || cfg.Physics.MaxTicksPerFrame != 20 {
		t.Errorf("Expected ticks 8/20, got %d/%d", cfg.Physics.TicksPerFrame, cfg.Physics.MaxTicksPerFrame)
	}
	if cfg.Channel.Timeout != time.Second {
		t.Errorf("Expected timeout 1s, got %v", cfg.Channel.Timeout)
	}
	if cfg.Channel.Recovery != RecoveryRestart {
		t.Errorf("Expected recovery restart, got %q", cfg.Channel.Recovery)
	}
	// Untouched keys keep their defaults
	if cfg.Physics.FrameDuration != time.Second/60 {
		t.Errorf("Expected default frame duration, got %v", cfg.Physics.FrameDuration)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("physics:\n  ticks_per_frame: 10\n  max_ticks_per_frame: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected error for max ticks below ticks per frame")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "physcore.yaml")
	cfg := Default()
	cfg.Net.Addr = ":9999"
	cfg.Channel.TargetFrame = 20 * time.Millisecond

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Net.Addr != ":9999" {
		t.Errorf("Expected addr :9999, got %s", loaded.Net.Addr)
	}
	if loaded.Channel.TargetFrame != 20*time.Millisecond {
		t.Errorf("Expected target frame 20ms, got %v", loaded.Channel.TargetFrame)
	}
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := Load("../../" + DefaultPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Channel.Timeout != 250*time.Millisecond {
		t.Errorf("Expected timeout 250ms, got %v", cfg.Channel.Timeout)
	}
	if cfg.Physics.TicksPerFrame != Default().Physics.TicksPerFrame {
		t.Errorf("Expected %d ticks per frame, got %d", Default().Physics.TicksPerFrame, cfg.Physics.TicksPerFrame)
	}
}

func TestZeroTargetFrameRejected(t *testing.T) {
	cfg := Default()
	cfg.Channel.TargetFrame = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for zero target frame")
	}
}
