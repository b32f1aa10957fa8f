package sound

import (
	"math"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"

	"github.com/iburimskiy/spiral-haiku/internal/config"
)

type Waveform uint8

const (
	Square Waveform = iota
	Sine
)

// Tone is one fire-and-forget oscillator event.
type Tone struct {
	Waveform  Waveform
	Frequency float64
	// Gain ramps exponentially from GainStart to GainEnd over Duration.
	// Equal values give a flat gain with a hard stop.
	GainStart float64
	GainEnd   float64
	Pan       float64
	Duration  time.Duration
}

// Voicing turns a mode plus pitch into a Tone.
type Voicing struct {
	ChiptuneGain     float64
	ChiptuneDuration time.Duration
	AmbientGainStart float64
	AmbientGainEnd   float64
	AmbientDuration  time.Duration
}

func VoicingFrom(cfg config.SoundConfig) Voicing {
	return Voicing{
		ChiptuneGain:     cfg.ChiptuneGain,
		ChiptuneDuration: cfg.ChiptuneDuration,
		AmbientGainStart: cfg.AmbientGainStart,
		AmbientGainEnd:   cfg.AmbientGainEnd,
		AmbientDuration:  cfg.AmbientDuration,
	}
}

func (v Voicing) Tone(mode Mode, freq, pan float64) Tone {
	if mode == Ambient {
		return Tone{
			Waveform:  Sine,
			Frequency: freq * 0.5,
			GainStart: v.AmbientGainStart,
			GainEnd:   v.AmbientGainEnd,
			Pan:       pan,
			Duration:  v.AmbientDuration,
		}
	}
	return Tone{
		Waveform:  Square,
		Frequency: freq,
		GainStart: v.ChiptuneGain,
		GainEnd:   v.ChiptuneGain,
		Pan:       pan,
		Duration:  v.ChiptuneDuration,
	}
}

// NoteFrequency pitches a note by its term value and slot in the layer.
func NoteFrequency(base, termStep, noteStep float64, value, slot int) float64 {
	return base + float64(value)*termStep + float64(slot)*noteStep
}

// Pan maps x to [-1, 1] relative to the horizontal center of a viewport
// width wide. Points beyond the edges clamp.
func Pan(x, width float64) float64 {
	half := width / 2
	if half <= 0 {
		return 0
	}
	return clamp((x-half)/half, -1, 1)
}

// GainAt evaluates the envelope at elapsed time into the tone.
func (t Tone) GainAt(elapsed time.Duration) float64 {
	if elapsed < 0 || elapsed >= t.Duration {
		return 0
	}
	if t.GainStart == t.GainEnd || t.GainStart <= 0 || t.GainEnd <= 0 {
		return t.GainStart
	}
	p := float64(elapsed) / float64(t.Duration)
	return t.GainStart * math.Pow(t.GainEnd/t.GainStart, p)
}

func (t Tone) sample(phase float64) float64 {
	if t.Waveform == Square {
		if phase < 0.5 {
			return 1
		}
		return -1
	}
	return math.Sin(2 * math.Pi * phase)
}

// Streamer renders the tone at sr. It ends after Duration.
func (t Tone) Streamer(sr beep.SampleRate) beep.Streamer {
	total := sr.N(t.Duration)
	step := t.Frequency / float64(sr)

	var (
		pos   int
		phase float64
	)
	osc := beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if pos >= total {
			return 0, false
		}
		for i := range samples {
			if pos >= total {
				break
			}
			v := t.sample(phase) * t.GainAt(sr.D(pos))
			samples[i][0] = v
			samples[i][1] = v
			phase += step
			phase -= math.Floor(phase)
			pos++
			n++
		}
		return n, true
	})
	return &effects.Pan{Streamer: osc, Pan: t.Pan}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
