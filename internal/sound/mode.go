package sound

import "time"

// Mode picks the voice used for every tone of the next burst.
type Mode uint8

const (
	Chiptune Mode = iota
	Ambient
)

func (m Mode) String() string {
	if m == Ambient {
		return "ambient"
	}
	return "chiptune"
}

// Cadence tracks pointer-move timing. It is a value: Move returns the
// updated copy and the caller keeps it.
type Cadence struct {
	Threshold time.Duration
	LastMove  time.Time
	Mode      Mode
}

func NewCadence(threshold time.Duration) Cadence {
	return Cadence{Threshold: threshold, Mode: Chiptune}
}

// Move records a pointer move at now. Moves closer together than Threshold
// switch to Ambient; anything slower, or the first move ever, is Chiptune.
func (c Cadence) Move(now time.Time) Cadence {
	if !c.LastMove.IsZero() && now.Sub(c.LastMove) < c.Threshold {
		c.Mode = Ambient
	} else {
		c.Mode = Chiptune
	}
	c.LastMove = now
	return c
}
