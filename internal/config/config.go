package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Window  WindowConfig  `toml:"window"`
	Physics PhysicsConfig `toml:"physics"`
	World   WorldConfig   `toml:"world"`
	Logging LoggingConfig `toml:"logging"`
	Metrics MetricsConfig `toml:"metrics"`
}

type WindowConfig struct {
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Title     string `toml:"title"`
	TargetFPS int    `toml:"target_fps"`
}

type PhysicsConfig struct {
	Gravity               [3]float32 `toml:"gravity"`
	FixedTimeStep         float32    `toml:"fixed_time_step"`
	MaxSubSteps           int        `toml:"max_sub_steps"` // 0 = one variable step per frame
	CellSize              float32    `toml:"cell_size"`
	InternalEdgeSmoothing bool       `toml:"internal_edge_smoothing"`
}

type WorldConfig struct {
	ScenesDir string `toml:"scenes_dir"`
	RootScene string `toml:"root_scene"`
	GameTick  bool   `toml:"game_tick"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but returns the defaults when path does
// not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaults(), nil
	}
	return cfg, err
}

func (c *Config) validate() error {
	if c.Physics.FixedTimeStep <= 0 {
		return fmt.Errorf("physics.fixed_time_step must be positive, got %v", c.Physics.FixedTimeStep)
	}
	if c.Physics.MaxSubSteps < 0 {
		return fmt.Errorf("physics.max_sub_steps must not be negative, got %d", c.Physics.MaxSubSteps)
	}
	if c.Physics.CellSize <= 0 {
		return fmt.Errorf("physics.cell_size must be positive, got %v", c.Physics.CellSize)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Window: WindowConfig{
			Width:     1280,
			Height:    720,
			Title:     "mirgo",
			TargetFPS: 60,
		},
		Physics: PhysicsConfig{
			Gravity:       [3]float32{0, -10, 0},
			FixedTimeStep: 1.0 / 60.0,
			MaxSubSteps:   4,
			CellSize:      5,
		},
		World: WorldConfig{
			ScenesDir: "assets/scenes",
			RootScene: "main",
			GameTick:  true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9100",
		},
	}
}
