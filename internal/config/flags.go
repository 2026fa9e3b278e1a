package config

import "flag"

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagLevel        = flag.String("level", "", "Level document path or URL")
	flagPreserveZero = flag.Bool("preserve-zero", false, "Keep explicit zero values from the level document")
	flagWindowed     = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen   = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth        = flag.Int("width", 0, "Window width")
	flagHeight       = flag.Int("height", 0, "Window height")
	flagSpectator    = flag.String("spectator", "", "Serve the spectator stream on this address")
	flagMute         = flag.Bool("mute", false, "Disable audio")
	flagShowDebug    = flag.Bool("show-debug", false, "Show the debug overlay at startup")
	flagWriteConfig  = flag.String("write-config", "", "Write the effective config to this path and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// WriteConfigPath returns the --write-config target, empty when not set.
func WriteConfigPath() string {
	return *flagWriteConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Render.ShowAxes = true
	}
	if *flagLevel != "" {
		cfg.Level.Source = *flagLevel
	}
	if *flagPreserveZero {
		cfg.Level.PreserveZero = true
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagSpectator != "" {
		cfg.Spectator.Enabled = true
		cfg.Spectator.Addr = *flagSpectator
	}
	if *flagMute {
		cfg.Audio.Enabled = false
	}
	if *flagShowDebug {
		cfg.Render.ShowDebug = true
	}
}
