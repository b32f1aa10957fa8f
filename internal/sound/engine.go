package sound

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/hajimehoshi/oto/v2"

	"github.com/iburimskiy/spiral-haiku/internal/config"
)

// levelWindow is how many recent output samples feed Level.
const levelWindow = 1024

// Engine owns the single audio output. Every tone becomes one entry in a
// shared mixer; the mixer drops it once its streamer runs dry.
type Engine struct {
	backend string
	sr      beep.SampleRate
	volume  float64
	log     *slog.Logger

	mixer *beep.Mixer
	tap   *visualTap

	mu     sync.Mutex // guards mixer for the oto and none backends
	lock   func()
	unlock func()

	otoCtx    *oto.Context
	otoPlayer oto.Player

	played atomic.Int64
	closed atomic.Bool
}

// NewEngine opens the configured backend. The speaker backend can only be
// initialised once per process.
func NewEngine(cfg config.SoundConfig, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{
		backend: cfg.Backend,
		sr:      beep.SampleRate(cfg.SampleRate),
		volume:  cfg.Volume,
		log:     log,
		mixer:   &beep.Mixer{},
	}
	e.tap = newVisualTap(e.mixer, config.VisualRingSize)
	e.lock, e.unlock = e.mu.Lock, e.mu.Unlock

	switch cfg.Backend {
	case config.BackendSpeaker:
		if err := speaker.Init(e.sr, e.sr.N(cfg.Buffer)); err != nil {
			return nil, fmt.Errorf("init speaker: %w", err)
		}
		e.lock, e.unlock = speaker.Lock, speaker.Unlock
		speaker.Play(e.tap)
	case config.BackendOto:
		ctx, ready, err := oto.NewContext(cfg.SampleRate, 2, oto.FormatFloat32LE)
		if err != nil {
			return nil, fmt.Errorf("init oto: %w", err)
		}
		<-ready
		e.otoCtx = ctx
		e.otoPlayer = ctx.NewPlayer(&mixReader{e: e})
		e.otoPlayer.Play()
	case config.BackendNone:
	default:
		return nil, fmt.Errorf("%w: unknown audio backend %q", config.ErrInvalid, cfg.Backend)
	}

	log.Info("audio ready", "backend", cfg.Backend, "sample_rate", cfg.SampleRate)
	return e, nil
}

func (e *Engine) Backend() string { return e.backend }

func (e *Engine) SampleRate() beep.SampleRate { return e.sr }

// Play queues t on the output and returns immediately.
func (e *Engine) Play(t Tone) {
	if e.closed.Load() || e.backend == config.BackendNone {
		return
	}
	var s beep.Streamer = t.Streamer(e.sr)
	if e.volume != 1 {
		s = &effects.Gain{Streamer: s, Gain: e.volume - 1}
	}
	e.lock()
	e.mixer.Add(s)
	e.unlock()
	e.played.Add(1)
}

// Voices is the number of tones still sounding.
func (e *Engine) Voices() int {
	e.lock()
	defer e.unlock()
	return e.mixer.Len()
}

// Played counts tones accepted since start.
func (e *Engine) Played() int64 { return e.played.Load() }

// Level is a compressed 0..1 loudness of what was played most recently.
func (e *Engine) Level() float64 {
	return clamp(math.Pow(e.tap.rms(levelWindow), 0.3), 0, 1)
}

func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	switch e.backend {
	case config.BackendSpeaker:
		speaker.Lock()
		speaker.Clear()
		speaker.Unlock()
		speaker.Close()
	case config.BackendOto:
		if err := e.otoPlayer.Close(); err != nil {
			return fmt.Errorf("close oto player: %w", err)
		}
	}
	return nil
}

// mixReader feeds the oto player from the mixer as float32 LE stereo.
type mixReader struct {
	e   *Engine
	buf [][2]float64
}

func (r *mixReader) Read(p []byte) (int, error) {
	if r.e.closed.Load() {
		return 0, io.EOF
	}
	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([][2]float64, frames)
	}
	buf := r.buf[:frames]

	r.e.mu.Lock()
	r.e.tap.Stream(buf)
	r.e.mu.Unlock()

	for i, s := range buf {
		putStereoF32LR(p, i, clamp(s[0], -1, 1), clamp(s[1], -1, 1))
	}
	return frames * 8, nil
}

// putStereoF32LR writes independent left/right samples in [-1,1].
func putStereoF32LR(buf []byte, i int, left, right float64) {
	lv := math.Float32bits(float32(left))
	rv := math.Float32bits(float32(right))
	buf[i*8] = byte(lv)
	buf[i*8+1] = byte(lv >> 8)
	buf[i*8+2] = byte(lv >> 16)
	buf[i*8+3] = byte(lv >> 24)
	buf[i*8+4] = byte(rv)
	buf[i*8+5] = byte(rv >> 8)
	buf[i*8+6] = byte(rv >> 16)
	buf[i*8+7] = byte(rv >> 24)
}
