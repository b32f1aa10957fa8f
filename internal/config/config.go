package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	WindowWidth  = 1024
	WindowHeight = 768
	WindowTitle  = "Spiral Haiku - click anywhere, S: save card, C: copy poem, Esc/Q: quit"

	VisualRingSize = 8192

	// Spiral layout
	SpiralTerms     = 7
	BaseRadiusRatio = 0.2
	LayerGrowth     = 0.3

	// Element lifetimes
	ClearFade      = 500 * time.Millisecond
	NoteHold       = 500 * time.Millisecond
	NoteFade       = 500 * time.Millisecond
	ConnectionHold = 2 * time.Second
	ConnectionFade = 1 * time.Second
	MaxEntities    = 2048

	// Tones
	SampleRate       = 44100
	AudioBuffer      = 50 * time.Millisecond
	ModeThreshold    = 100 * time.Millisecond
	BaseFrequency    = 110.0
	TermStep         = 15.0
	NoteStep         = 3.0
	ChiptuneGain     = 0.1
	ChiptuneDuration = 200 * time.Millisecond
	AmbientGainStart = 0.3
	AmbientGainEnd   = 0.01
	AmbientDuration  = 1500 * time.Millisecond

	// Haiku
	HaikuDelay  = 300 * time.Millisecond
	Placeholder = "~"
)

// Audio backends understood by the sound engine.
const (
	BackendSpeaker = "speaker"
	BackendOto     = "oto"
	BackendNone    = "none"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	LogLevel string       `yaml:"log_level"`
	Window   WindowConfig `yaml:"window"`
	Spiral   SpiralConfig `yaml:"spiral"`
	Scene    SceneConfig  `yaml:"scene"`
	Sound    SoundConfig  `yaml:"sound"`
	Haiku    HaikuConfig  `yaml:"haiku"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type SpiralConfig struct {
	Terms           int     `yaml:"terms"`
	BaseRadiusRatio float64 `yaml:"base_radius_ratio"`
	LayerGrowth     float64 `yaml:"layer_growth"`
}

type SceneConfig struct {
	ClearFade      time.Duration `yaml:"clear_fade"`
	NoteHold       time.Duration `yaml:"note_hold"`
	NoteFade       time.Duration `yaml:"note_fade"`
	ConnectionHold time.Duration `yaml:"connection_hold"`
	ConnectionFade time.Duration `yaml:"connection_fade"`
	MaxEntities    int           `yaml:"max_entities"`
}

type SoundConfig struct {
	Backend          string        `yaml:"backend"`
	SampleRate       int           `yaml:"sample_rate"`
	Buffer           time.Duration `yaml:"buffer"`
	Volume           float64       `yaml:"volume"`
	ModeThreshold    time.Duration `yaml:"mode_threshold"`
	BaseFrequency    float64       `yaml:"base_frequency"`
	TermStep         float64       `yaml:"term_step"`
	NoteStep         float64       `yaml:"note_step"`
	ChiptuneGain     float64       `yaml:"chiptune_gain"`
	ChiptuneDuration time.Duration `yaml:"chiptune_duration"`
	AmbientGainStart float64       `yaml:"ambient_gain_start"`
	AmbientGainEnd   float64       `yaml:"ambient_gain_end"`
	AmbientDuration  time.Duration `yaml:"ambient_duration"`
}

type HaikuConfig struct {
	Delay       time.Duration `yaml:"delay"`
	Placeholder string        `yaml:"placeholder"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Window: WindowConfig{
			Width:  WindowWidth,
			Height: WindowHeight,
			Title:  WindowTitle,
		},
		Spiral: SpiralConfig{
			Terms:           SpiralTerms,
			BaseRadiusRatio: BaseRadiusRatio,
			LayerGrowth:     LayerGrowth,
		},
		Scene: SceneConfig{
			ClearFade:      ClearFade,
			NoteHold:       NoteHold,
			NoteFade:       NoteFade,
			ConnectionHold: ConnectionHold,
			ConnectionFade: ConnectionFade,
			MaxEntities:    MaxEntities,
		},
		Sound: SoundConfig{
			Backend:          BackendSpeaker,
			SampleRate:       SampleRate,
			Buffer:           AudioBuffer,
			Volume:           1,
			ModeThreshold:    ModeThreshold,
			BaseFrequency:    BaseFrequency,
			TermStep:         TermStep,
			NoteStep:         NoteStep,
			ChiptuneGain:     ChiptuneGain,
			ChiptuneDuration: ChiptuneDuration,
			AmbientGainStart: AmbientGainStart,
			AmbientGainEnd:   AmbientGainEnd,
			AmbientDuration:  AmbientDuration,
		},
		Haiku: HaikuConfig{
			Delay:       HaikuDelay,
			Placeholder: Placeholder,
		},
	}
}

// Load returns Default overlaid with the YAML document at path.
// An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Spiral.Terms != 6 && c.Spiral.Terms != 7:
		return fmt.Errorf("%w: spiral.terms must be 6 or 7, got %d", ErrInvalid, c.Spiral.Terms)
	case c.Spiral.BaseRadiusRatio <= 0 || c.Spiral.LayerGrowth < 0:
		return fmt.Errorf("%w: spiral ratios must be positive", ErrInvalid)
	case c.Scene.MaxEntities <= 0:
		return fmt.Errorf("%w: scene.max_entities must be positive", ErrInvalid)
	case c.Scene.ClearFade < 0 || c.Scene.NoteHold < 0 || c.Scene.NoteFade < 0 ||
		c.Scene.ConnectionHold < 0 || c.Scene.ConnectionFade < 0:
		return fmt.Errorf("%w: scene durations must not be negative", ErrInvalid)
	case c.Sound.SampleRate <= 0:
		return fmt.Errorf("%w: sound.sample_rate must be positive", ErrInvalid)
	case c.Sound.Volume < 0:
		return fmt.Errorf("%w: sound.volume must not be negative", ErrInvalid)
	case c.Sound.AmbientGainStart <= 0 || c.Sound.AmbientGainEnd <= 0:
		// exponential ramps cannot reach or leave zero
		return fmt.Errorf("%w: ambient gains must be positive", ErrInvalid)
	case c.Haiku.Delay < 0:
		return fmt.Errorf("%w: haiku.delay must not be negative", ErrInvalid)
	}
	switch c.Sound.Backend {
	case BackendSpeaker, BackendOto, BackendNone:
	default:
		return fmt.Errorf("%w: unknown audio backend %q", ErrInvalid, c.Sound.Backend)
	}
	return nil
}

// SlogLevel maps LogLevel onto slog, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
