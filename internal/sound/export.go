package sound

import (
	"errors"
	"fmt"
	"io"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

var ErrNoTones = errors.New("no tones to export")

// WriteWAV renders tones, all starting together, as 16-bit stereo WAV.
// The file lasts as long as the longest tone.
func WriteWAV(w io.WriteSeeker, tones []Tone, sr beep.SampleRate) error {
	if len(tones) == 0 {
		return ErrNoTones
	}
	streams := make([]beep.Streamer, len(tones))
	for i, t := range tones {
		streams[i] = t.Streamer(sr)
	}
	format := beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2}
	if err := wav.Encode(w, beep.Mix(streams...), format); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}
