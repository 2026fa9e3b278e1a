// Package config handles game configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is returned by Validate for unusable settings.
var ErrInvalid = errors.New("invalid config")

// Config holds all game settings.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Level     LevelConfig     `yaml:"level"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Controls  ControlsConfig  `yaml:"controls"`
	Camera    CameraConfig    `yaml:"camera"`
	Render    RenderConfig    `yaml:"render"`
	Audio     AudioConfig     `yaml:"audio"`
	Game      GameConfig      `yaml:"game"`
	Spectator SpectatorConfig `yaml:"spectator"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FPSLimit   int    `yaml:"fps_limit"` // only honoured with vsync off; 0 = unlimited
}

// LevelConfig controls where the level document comes from and how it is read.
// PreserveZero keeps explicit zero values from the level document instead of
// replacing them with defaults.
type LevelConfig struct {
	Source       string        `yaml:"source"` // file path or http(s) URL
	PreserveZero bool          `yaml:"preserve_zero"`
	Timeout      time.Duration `yaml:"timeout"`
}

// PhysicsConfig holds rigid-body world settings.
type PhysicsConfig struct {
	Gravity     float32 `yaml:"gravity"`
	TimeStepHz  int     `yaml:"time_step_hz"`
	Restitution float32 `yaml:"restitution"`
	Friction    float32 `yaml:"friction"`
}

// ControlsConfig holds keyboard tuning and bindings.
type ControlsConfig struct {
	ForceStrength   float32           `yaml:"force_strength"`
	ImpulseDivisor  float32           `yaml:"impulse_divisor"`
	RotationDivisor float32           `yaml:"rotation_divisor"` // tilt step is pi / divisor
	Bindings        map[string]string `yaml:"bindings"`         // action name -> SDL key name
}

// CameraConfig holds the free camera placement.
type CameraConfig struct {
	Position        [3]float32 `yaml:"position"`
	Target          [3]float32 `yaml:"target"`
	FOV             float32    `yaml:"fov"` // degrees
	MoveSpeed       float32    `yaml:"move_speed"`
	LookSensitivity float32    `yaml:"look_sensitivity"`
}

// RenderConfig holds rendering toggles.
type RenderConfig struct {
	ShowAxes bool `yaml:"show_axes"`
	// ShowDebug shows the stats overlay at startup; F3 toggles it.
	ShowDebug     bool       `yaml:"show_debug"`
	ClearColor    [3]float32 `yaml:"clear_color"`
	ScreenshotDir string     `yaml:"screenshot_dir"`
}

// AudioConfig holds audio settings.
type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
	// SFXVolume scales cues on top of Volume.
	SFXVolume float64 `yaml:"sfx_volume"`
}

// GameConfig holds gameplay settings.
type GameConfig struct {
	AutoRespawn bool    `yaml:"auto_respawn"`
	FallDepth   float32 `yaml:"fall_depth"` // distance below the floor that counts as a drop
}

// SpectatorConfig controls the optional state-streaming server.
type SpectatorConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Addr          string `yaml:"addr"`
	IntervalTicks int    `yaml:"interval_ticks"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Marble Maze",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Level: LevelConfig{
			Source:  "./level_data.json",
			Timeout: 5 * time.Second,
		},
		Physics: PhysicsConfig{
			Gravity:     -10,
			TimeStepHz:  60,
			Restitution: 0.2,
			Friction:    0.2,
		},
		Controls: ControlsConfig{
			ForceStrength:   14,
			ImpulseDivisor:  20,
			RotationDivisor: 720,
			Bindings:        map[string]string{},
		},
		Camera: CameraConfig{
			Position:        [3]float32{0, 20, -10},
			Target:          [3]float32{0, 0, 0},
			FOV:             45.8, // 0.8 rad
			MoveSpeed:       10,
			LookSensitivity: 0.004,
		},
		Render: RenderConfig{
			ShowAxes:      true,
			ClearColor:    [3]float32{0.2, 0.2, 0.3},
			ScreenshotDir: "screenshots",
		},
		Audio: AudioConfig{
			Enabled:   true,
			Volume:    0.6,
			SFXVolume: 1,
		},
		Game: GameConfig{
			AutoRespawn: false,
			FallDepth:   3,
		},
		Spectator: SpectatorConfig{
			Enabled:       false,
			Addr:          "127.0.0.1:8086",
			IntervalTicks: 3,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports settings that would make the game unusable.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("window size %dx%d: %w", c.Window.Width, c.Window.Height, ErrInvalid)
	case c.Physics.TimeStepHz <= 0:
		return fmt.Errorf("physics.time_step_hz %d: %w", c.Physics.TimeStepHz, ErrInvalid)
	case c.Controls.RotationDivisor <= 0:
		return fmt.Errorf("controls.rotation_divisor %v: %w", c.Controls.RotationDivisor, ErrInvalid)
	case c.Controls.ImpulseDivisor == 0:
		return fmt.Errorf("controls.impulse_divisor must be non-zero: %w", ErrInvalid)
	case c.Spectator.Enabled && c.Spectator.IntervalTicks <= 0:
		return fmt.Errorf("spectator.interval_ticks %d: %w", c.Spectator.IntervalTicks, ErrInvalid)
	}
	return nil
}
