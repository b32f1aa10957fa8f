// Package scene keeps the live notes and connections of the canvas.
//
// Entities carry their own fade and expiry stamps; callers advance time by
// calling Sweep once per frame instead of scheduling removals.
package scene

import (
	"image/color"
	"time"

	"github.com/iburimskiy/spiral-haiku/internal/config"
	"github.com/iburimskiy/spiral-haiku/internal/spiral"
)

type Kind uint8

const (
	KindNote Kind = iota
	KindConnection
)

func (k Kind) String() string {
	if k == KindConnection {
		return "connection"
	}
	return "note"
}

type Entity struct {
	Kind Kind
	// A is the note center or the connection start; B is only set for connections.
	A, B  spiral.Point
	Size  float64 // note diameter or line width
	Color color.RGBA
	Glyph rune

	Opacity  float64 // peak alpha
	fadeFrom float64

	Born    time.Time
	FadeAt  time.Time
	Expires time.Time
}

// Alpha returns the entity's opacity at now.
func (e Entity) Alpha(now time.Time) float64 {
	if !now.Before(e.Expires) {
		return 0
	}
	if now.Before(e.FadeAt) {
		return e.Opacity
	}
	span := e.Expires.Sub(e.FadeAt)
	if span <= 0 {
		return 0
	}
	left := float64(e.Expires.Sub(now)) / float64(span)
	return e.fadeFrom * left
}

type Scene struct {
	cfg      config.SceneConfig
	entities []Entity
	evicted  int
}

func New(cfg config.SceneConfig) *Scene {
	if cfg.MaxEntities <= 0 {
		cfg.MaxEntities = config.MaxEntities
	}
	return &Scene{
		cfg:      cfg,
		entities: make([]Entity, 0, 64),
	}
}

func (s *Scene) SpawnNote(pos spiral.Point, size float64, c color.RGBA, glyph rune, now time.Time) {
	fadeAt := now.Add(s.cfg.NoteHold)
	s.add(Entity{
		Kind:     KindNote,
		A:        pos,
		Size:     size,
		Color:    c,
		Glyph:    glyph,
		Opacity:  1,
		fadeFrom: 1,
		Born:     now,
		FadeAt:   fadeAt,
		Expires:  fadeAt.Add(s.cfg.NoteFade),
	})
}

func (s *Scene) SpawnConnection(a, b spiral.Point, c color.RGBA, opacity, width float64, now time.Time) {
	fadeAt := now.Add(s.cfg.ConnectionHold)
	s.add(Entity{
		Kind:     KindConnection,
		A:        a,
		B:        b,
		Size:     width,
		Color:    c,
		Opacity:  opacity,
		fadeFrom: opacity,
		Born:     now,
		FadeAt:   fadeAt,
		Expires:  fadeAt.Add(s.cfg.ConnectionFade),
	})
}

// add appends e, evicting the oldest entity once the cap is reached.
func (s *Scene) add(e Entity) {
	if len(s.entities) >= s.cfg.MaxEntities {
		n := len(s.entities) - s.cfg.MaxEntities + 1
		copy(s.entities, s.entities[n:])
		s.entities = s.entities[:len(s.entities)-n]
		s.evicted += n
	}
	s.entities = append(s.entities, e)
}

// ClearAll fades every live entity out over ClearFade, starting from
// whatever alpha it has right now. Entities already due to expire sooner
// keep their schedule.
func (s *Scene) ClearAll(now time.Time) {
	end := now.Add(s.cfg.ClearFade)
	for i := range s.entities {
		e := &s.entities[i]
		if !e.Expires.After(end) {
			continue
		}
		e.fadeFrom = e.Alpha(now)
		e.FadeAt = now
		e.Expires = end
	}
}

// Sweep drops expired entities and reports how many went.
func (s *Scene) Sweep(now time.Time) int {
	kept := s.entities[:0]
	for _, e := range s.entities {
		if now.Before(e.Expires) {
			kept = append(kept, e)
		}
	}
	removed := len(s.entities) - len(kept)
	clear(s.entities[len(kept):])
	s.entities = kept
	return removed
}

// Live returns the current entities, oldest first. The slice is owned by
// the scene and only valid until the next mutation.
func (s *Scene) Live() []Entity { return s.entities }

// Snapshot copies the current entities.
func (s *Scene) Snapshot() []Entity {
	out := make([]Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

func (s *Scene) Len() int     { return len(s.entities) }
func (s *Scene) Evicted() int { return s.evicted }
