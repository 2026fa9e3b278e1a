package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read after the config file. A .env file in the working
// directory is loaded first and never overrides variables already set.
const (
	EnvLevelSource   = "MARBLE_LEVEL"
	EnvPreserveZero  = "MARBLE_PRESERVE_ZERO"
	EnvLogLevel      = "MARBLE_LOG_LEVEL"
	EnvLogFile       = "MARBLE_LOG_FILE"
	EnvSpectatorAddr = "MARBLE_SPECTATOR_ADDR"
)

// Load loads configuration with priority: defaults < file < environment < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		UserConfigPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "MarbleMaze")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "MarbleMaze")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "marble-maze")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "marble-maze")
	}
}

// UserConfigPath is the per-user config file searched after ./config.yaml.
func UserConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnv overrides config values from environment variables.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLevelSource); ok && v != "" {
		cfg.Level.Source = v
	}
	if v, ok := lookup(EnvPreserveZero); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPreserveZero, err)
		}
		cfg.Level.PreserveZero = b
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := lookup(EnvLogFile); ok {
		cfg.Logging.LogFile = v
	}
	if v, ok := lookup(EnvSpectatorAddr); ok && v != "" {
		cfg.Spectator.Addr = v
		cfg.Spectator.Enabled = true
	}
	return nil
}
