// Package main is the entry point for the marble maze.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/marble-maze/internal/config"
	"github.com/Faultbox/marble-maze/internal/game"
	"github.com/Faultbox/marble-maze/internal/level"
	"github.com/Faultbox/marble-maze/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			logger.Error("failed to write config", zap.String("path", path), zap.Error(err))
			os.Exit(1)
		}
		logger.Info("config written", zap.String("path", path))
		return
	}

	logger.Info("=== Marble Maze ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	// A missing or malformed level falls back to the built-in one.
	desc := level.LoadOrDefault(context.Background(), cfg.Level.Source, level.Options{Timeout: cfg.Level.Timeout})
	mode := level.DefaultTruthy
	if cfg.Level.PreserveZero {
		mode = level.DefaultPresence
	}
	lvl := level.Resolve(desc, mode)
	if err := lvl.Validate(); err != nil {
		logger.Error("level rejected", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("level resolved",
		zap.String("source", cfg.Level.Source),
		zap.Stringer("mode", mode),
		zap.Int("holes", len(lvl.Holes)),
		zap.Int("walls", len(lvl.Walls)),
	)

	// Create and run game
	g, err := game.New(cfg, lvl)
	if err != nil {
		logger.Error("failed to create game", zap.Error(err))
		os.Exit(1)
	}
	defer g.Close()

	// Run the game loop
	if err := g.Run(); err != nil {
		logger.Error("game error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("game closed normally")
}
