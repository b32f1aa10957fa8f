package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/spiral-haiku/internal/config"
	"github.com/iburimskiy/spiral-haiku/internal/game"
	"github.com/iburimskiy/spiral-haiku/internal/sound"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	backend := flag.String("audio", "", "audio backend: speaker, oto or none")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *backend != "" {
		cfg.Sound.Backend = *backend
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	engine, err := sound.NewEngine(cfg.Sound, logger)
	if err != nil {
		slog.Error("audio unavailable, continuing silently", "backend", cfg.Sound.Backend, "err", err)
		silent := cfg.Sound
		silent.Backend = config.BackendNone
		if engine, err = sound.NewEngine(silent, logger); err != nil {
			panic(err)
		}
	}
	defer engine.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, err := game.NewGame(ctx, cfg, engine, logger)
	if err != nil {
		slog.Error("failed to start", "err", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		panic(err)
	}
}
