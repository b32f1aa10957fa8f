package card

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/freetype/truetype"

	"github.com/iburimskiy/spiral-haiku/internal/config"
	"github.com/iburimskiy/spiral-haiku/internal/scene"
	"github.com/iburimskiy/spiral-haiku/internal/spiral"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func burst() []scene.Entity {
	s := scene.New(config.Default().Scene)
	red := color.RGBA{R: 255, A: 255}
	s.SpawnConnection(spiral.Point{X: 100, Y: 100}, spiral.Point{X: 300, Y: 100}, red, 0.6, 2, t0)
	s.SpawnNote(spiral.Point{X: 500, Y: 400}, 40, red, '♪', t0)
	return s.Snapshot()
}

func TestRenderDrawsNotes(t *testing.T) {
	opt := DefaultOptions()
	vp := spiral.Viewport{Width: 1000, Height: 800}
	img, err := Render("data error\ndigital in the machine\ncyberspace glitch", burst(), vp, t0, opt)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != opt.Width || b.Dy() != opt.Height {
		t.Fatalf("unexpected bounds %v", b)
	}

	// viewport center maps to the center of the art area
	artH := float64(opt.Height) - opt.PoemHeight
	r, g, b, _ := img.At(opt.Width/2, int(artH/2)).RGBA()
	if r>>8 < 200 || g>>8 > 60 || b>>8 > 60 {
		t.Fatalf("expected a red note at the center, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
	// a corner stays background
	br, bg, bb, _ := img.At(2, 2).RGBA()
	if br>>8 != 8 || bg>>8 != 10 || bb>>8 != 20 {
		t.Fatalf("corner should be background, got %d,%d,%d", br>>8, bg>>8, bb>>8)
	}
}

func TestRenderSkipsExpired(t *testing.T) {
	_, err := Render("", burst(), spiral.Viewport{Width: 1000, Height: 800}, t0.Add(time.Hour), DefaultOptions())
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestSave(t *testing.T) {
	img, err := Render("leaf", nil, spiral.Viewport{Width: 10, Height: 10}, t0, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "card.png")
	if err := Save(path, img); err != nil {
		t.Fatal(err)
	}
	st, err := os.Stat(path)
	if err != nil || st.Size() == 0 {
		t.Fatalf("card not written: %v", err)
	}
}

func TestLoadFaceKeepsParseError(t *testing.T) {
	_, err := loadFace([]byte("not a font"), 12)
	var fe truetype.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected a wrapped truetype.FormatError, got %v", err)
	}
}
