// Package card renders a still PNG of a burst with its poem underneath.
package card

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/iburimskiy/spiral-haiku/internal/scene"
	"github.com/iburimskiy/spiral-haiku/internal/spiral"
)

var ErrEmpty = errors.New("nothing to export")

type Options struct {
	Width, Height int
	// PoemHeight is the band reserved below the art for the poem.
	PoemHeight float64
	FontSize   float64
	Background color.Color
	Ink        color.Color
}

func DefaultOptions() Options {
	return Options{
		Width:      1200,
		Height:     1000,
		PoemHeight: 220,
		FontSize:   28,
		Background: color.RGBA{R: 8, G: 10, B: 20, A: 255},
		Ink:        color.RGBA{R: 0x00, G: 0xff, B: 0x99, A: 0xff},
	}
}

// Render draws every entity still alive at now, at its peak opacity, fitted
// into the art area, and the poem centered below.
func Render(poem string, entities []scene.Entity, vp spiral.Viewport, now time.Time, opt Options) (image.Image, error) {
	var live []scene.Entity
	for _, e := range entities {
		if e.Alpha(now) > 0 {
			live = append(live, e)
		}
	}
	if strings.TrimSpace(poem) == "" && len(live) == 0 {
		return nil, ErrEmpty
	}

	dc := gg.NewContext(opt.Width, opt.Height)
	dc.SetColor(opt.Background)
	dc.Clear()

	artH := float64(opt.Height) - opt.PoemHeight
	scale := 1.0
	if vp.Width > 0 && vp.Height > 0 {
		scale = math.Min(float64(opt.Width)/vp.Width, artH/vp.Height)
	}
	offX := (float64(opt.Width) - vp.Width*scale) / 2
	offY := (artH - vp.Height*scale) / 2
	project := func(p spiral.Point) (float64, float64) {
		return offX + p.X*scale, offY + p.Y*scale
	}

	// connections first so notes sit on top
	for _, e := range live {
		if e.Kind != scene.KindConnection {
			continue
		}
		x1, y1 := project(e.A)
		x2, y2 := project(e.B)
		dc.SetColor(withAlpha(e.Color, e.Opacity))
		dc.SetLineWidth(math.Max(1, e.Size*scale))
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}
	for _, e := range live {
		if e.Kind != scene.KindNote {
			continue
		}
		x, y := project(e.A)
		r := e.Size / 2 * scale
		dc.SetColor(withAlpha(e.Color, 0.25))
		dc.DrawCircle(x, y, r*1.8)
		dc.Fill()
		dc.SetColor(withAlpha(e.Color, e.Opacity))
		dc.DrawCircle(x, y, r)
		dc.Fill()
	}

	if poem != "" {
		face, err := loadFace(goregular.TTF, opt.FontSize)
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(face)
		dc.SetColor(opt.Ink)
		lines := strings.Split(poem, "\n")
		lh := opt.FontSize * 1.5
		top := artH + (opt.PoemHeight-lh*float64(len(lines)))/2 + lh/2
		for i, line := range lines {
			dc.DrawStringAnchored(line, float64(opt.Width)/2, top+float64(i)*lh, 0.5, 0.5)
		}
	}
	return dc.Image(), nil
}

func loadFace(ttfData []byte, size float64) (font.Face, error) {
	ttf, err := truetype.Parse(ttfData)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// Save writes img to path as PNG.
func Save(path string, img image.Image) error {
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("save card: %w", err)
	}
	return nil
}

func withAlpha(c color.RGBA, a float64) color.NRGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(a * 255)}
}
