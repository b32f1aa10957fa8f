// Command spiral-term plays the spiral toy inside a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iburimskiy/spiral-haiku/internal/burst"
	"github.com/iburimskiy/spiral-haiku/internal/config"
	"github.com/iburimskiy/spiral-haiku/internal/sound"
	"github.com/iburimskiy/spiral-haiku/internal/term"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	logPath := flag.String("log", "", "write logs to this file (the terminal is busy)")
	backend := flag.String("audio", "", "audio backend: speaker, oto or none")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *backend != "" {
		cfg.Sound.Backend = *backend
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	var out io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	engine, err := sound.NewEngine(cfg.Sound, logger)
	if err != nil {
		logger.Error("audio unavailable, continuing silently", "err", err)
		silent := cfg.Sound
		silent.Backend = config.BackendNone
		if engine, err = sound.NewEngine(silent, logger); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	defer engine.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seed := uint64(time.Now().UnixNano())
	orch := burst.NewOrchestrator(ctx, cfg, engine, rand.New(rand.NewPCG(seed, seed>>1)), logger)

	p := tea.NewProgram(
		term.New(orch),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
