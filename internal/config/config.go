// Package config holds engine settings for the simulation core, the execution
// channel and the remote mirror. Settings persist as YAML.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the tools look for a config file, relative to the working directory.
const DefaultPath = "config/physcore.yaml"

// Recovery modes for a lost channel round trip.
const (
	RecoveryFallback = "fallback" // step a local world on the driver side
	RecoveryRestart  = "restart"  // spawn a fresh worker, then fall back after MaxRestarts
)

// Physics tunes the fixed sub-tick loop.
type Physics struct {
	TicksPerFrame    int           `yaml:"ticks_per_frame"`
	MaxTicksPerFrame int           `yaml:"max_ticks_per_frame"`
	FrameDuration    time.Duration `yaml:"frame_duration"`
	MaxSpeedRatio    float32       `yaml:"max_speed_ratio"`

	// Gravity is added to dynamic velocities once per sub-tick, in units/frame.
	Gravity [3]float32 `yaml:"gravity"`

	DefaultBounciness float32 `yaml:"default_bounciness"`
	DefaultDamping    float32 `yaml:"default_damping"`
}

// SubTickDuration is the nominal length of one sub-tick.
func (p Physics) SubTickDuration() time.Duration {
	return p.FrameDuration / time.Duration(p.TicksPerFrame)
}

// Channel tunes the split-thread driver.
type Channel struct {
	TargetFrame time.Duration `yaml:"target_frame"`
	Timeout     time.Duration `yaml:"timeout"`
	Recovery    string        `yaml:"recovery"`
	MaxRestarts int           `yaml:"max_restarts"`
}

// Net configures the websocket mirror.
type Net struct {
	Addr      string        `yaml:"addr"`
	WriteWait time.Duration `yaml:"write_wait"`
}

type Config struct {
	Physics Physics `yaml:"physics"`
	Channel Channel `yaml:"channel"`
	Net     Net     `yaml:"net"`
}

// Default returns the settings the engine ships with.
func Default() Config {
	return Config{
		Physics: Physics{
			TicksPerFrame:     5,
			MaxTicksPerFrame:  15,
			FrameDuration:     time.Second / 60,
			MaxSpeedRatio:     2,
			Gravity:           [3]float32{0, -0.0015, 0},
			DefaultBounciness: 0.3,
			DefaultDamping:    0.05,
		},
		Channel: Channel{
			TargetFrame: time.Second / 60,
			Timeout:     250 * time.Millisecond,
			Recovery:    RecoveryFallback,
			MaxRestarts: 3,
		},
		Net: Net{
			Addr:      ":8089",
			WriteWait: 2 * time.Second,
		},
	}
}

// Load reads a config file on top of Default. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating the parent directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create config dir")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings the tick loop cannot run with.
func (p Physics) Validate() error {
	switch {
	case p.TicksPerFrame <= 0:
		return errors.New("ticks_per_frame must be positive")
	case p.MaxTicksPerFrame < p.TicksPerFrame:
		return errors.New("max_ticks_per_frame must be at least ticks_per_frame")
	case p.FrameDuration <= 0:
		return errors.New("frame_duration must be positive")
	case p.MaxSpeedRatio <= 0:
		return errors.New("max_speed_ratio must be positive")
	}
	return nil
}

func (c Config) Validate() error {
	if err := c.Physics.Validate(); err != nil {
		return err
	}
	switch c.Channel.Recovery {
	case RecoveryFallback, RecoveryRestart:
	default:
		return errors.Errorf("unknown recovery mode %q", c.Channel.Recovery)
	}
	switch {
	case c.Channel.Timeout <= 0:
		return errors.New("channel timeout must be positive")
	case c.Channel.TargetFrame <= 0:
		return errors.New("channel target_frame must be positive")
	case c.Channel.MaxRestarts < 0:
		return errors.New("channel max_restarts must not be negative")
	}
	return nil
}
