package game

import (
	"fmt"
	"image/color"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/spiral-haiku/internal/scene"
)

const backgroundBand = 4 // rows per backdrop stripe

var poemColor = color.RGBA{R: 0x00, G: 0xff, B: 0x99, A: 0xff}

func (g *Game) Draw(screen *ebiten.Image) {
	now := time.Now()
	g.drawBackground(screen)

	live := g.orch.Scene().Live()
	for _, e := range live {
		if e.Kind == scene.KindConnection {
			g.drawConnection(screen, e, now)
		}
	}
	level := g.engine.Level()
	for _, e := range live {
		if e.Kind == scene.KindNote {
			g.drawNote(screen, e, now, level)
		}
	}

	g.drawPoem(screen)
	g.drawHUD(screen, now)
}

// drawBackground paints a slowly drifting dark gradient modulated by noise.
func (g *Game) drawBackground(screen *ebiten.Image) {
	h := float64(g.height)
	for y := 0; y < g.height; y += backgroundBand {
		ratio := float64(y) / h
		n := g.noise.Eval2(g.time*0.05, ratio*3)
		r, gv, b := hsvToRgb(220+80*n+30*ratio, 0.6, 0.06+0.06*n)
		vector.DrawFilledRect(screen, 0, float32(y), float32(g.width), backgroundBand, color.RGBA{R: r, G: gv, B: b, A: 255}, false)
	}
}

func (g *Game) drawConnection(screen *ebiten.Image, e scene.Entity, now time.Time) {
	a := e.Alpha(now)
	if a <= 0 {
		return
	}
	vector.StrokeLine(screen,
		float32(e.A.X), float32(e.A.Y), float32(e.B.X), float32(e.B.Y),
		float32(e.Size), fade(e.Color, a), true)
}

// drawNote draws a soft halo plus a solid core; both swell with the audio level.
func (g *Game) drawNote(screen *ebiten.Image, e scene.Entity, now time.Time, level float64) {
	a := e.Alpha(now)
	if a <= 0 {
		return
	}
	r := e.Size / 2 * (1 + 0.35*level)
	x, y := float32(e.A.X), float32(e.A.Y)
	vector.DrawFilledCircle(screen, x, y, float32(r*1.8), fade(e.Color, a*0.25), true)
	vector.DrawFilledCircle(screen, x, y, float32(r), fade(e.Color, a), true)
}

func (g *Game) drawPoem(screen *ebiten.Image) {
	poem := g.orch.Poem().Text
	if poem == "" {
		return
	}
	bounds := g.poemBounds()
	vector.DrawFilledRect(screen,
		float32(bounds.Min.X), float32(bounds.Min.Y), float32(bounds.Dx()), float32(bounds.Dy()),
		color.RGBA{R: 0, G: 0, B: 0, A: 170}, false)
	vector.StrokeRect(screen,
		float32(bounds.Min.X), float32(bounds.Min.Y), float32(bounds.Dx()), float32(bounds.Dy()),
		1, color.RGBA{R: 0x00, G: 0x88, B: 0x55, A: 255}, false)

	face := g.poemFace()
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(g.width)/2, float64(bounds.Min.Y+poemPad))
	op.LineSpacing = face.Size * poemLineSpacing
	op.PrimaryAlign = text.AlignCenter
	op.ColorScale.ScaleWithColor(poemColor)
	text.Draw(screen, poem, face, op)
}

func (g *Game) drawHUD(screen *ebiten.Image, now time.Time) {
	status := fmt.Sprintf("mode: %s | live: %s", g.orch.Mode(), humanize.Comma(int64(g.orch.Scene().Len())))
	status += fmt.Sprintf(" | voices: %d | tones: %s", g.engine.Voices(), humanize.Comma(g.engine.Played()))
	if n := g.orch.Scene().Evicted(); n > 0 {
		status += " | evicted: " + humanize.Comma(int64(n))
	}
	if p := g.orch.Poem(); p.Text != "" {
		status += " | poem " + formatDuration(now.Sub(p.At))
	}
	if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	} else if g.notice != "" {
		status += " | " + g.notice
	}
	ebitenutil.DebugPrintAt(screen, status, 12, 12)
}
