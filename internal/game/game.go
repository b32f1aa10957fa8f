package game

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/ncruces/zenity"
	"github.com/ojrac/opensimplex-go"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/iburimskiy/spiral-haiku/internal/burst"
	"github.com/iburimskiy/spiral-haiku/internal/card"
	"github.com/iburimskiy/spiral-haiku/internal/config"
	"github.com/iburimskiy/spiral-haiku/internal/sound"
)

const (
	poemMargin      = 40
	poemPad         = 12
	poemLineSpacing = 1.6
)

var errNoPoem = errors.New("no poem yet, click somewhere first")

// Game is the ebiten surface: it feeds pointer input to a burst.Orchestrator
// and paints the live scene.
type Game struct {
	cfg    config.Config
	orch   *burst.Orchestrator
	engine *sound.Engine
	log    *slog.Logger

	noise   opensimplex.Noise
	fontSrc *text.GoTextFaceSource

	width, height int
	cursor        image.Point
	touches       []ebiten.TouchID

	// viz
	time float64

	// input edge detection
	prevKey map[ebiten.Key]bool

	lastErr error
	notice  string
}

func NewGame(ctx context.Context, cfg config.Config, engine *sound.Engine, log *slog.Logger) (*Game, error) {
	if log == nil {
		log = slog.Default()
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load poem font: %w", err)
	}
	seed := time.Now().UnixNano()
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed>>1)))

	g := &Game{
		cfg:     cfg,
		orch:    burst.NewOrchestrator(ctx, cfg, engine, rng, log),
		engine:  engine,
		log:     log,
		noise:   opensimplex.NewNormalized(seed),
		fontSrc: src,
		width:   cfg.Window.Width,
		height:  cfg.Window.Height,
		cursor:  image.Pt(-1, -1),
		prevKey: map[ebiten.Key]bool{},
	}
	g.orch.Resize(float64(g.width), float64(g.height))
	return g, nil
}

func (g *Game) Update() error {
	now := time.Now()

	justPressed := func(k ebiten.Key) bool {
		pressed := ebiten.IsKeyPressed(k)
		jp := pressed && !g.prevKey[k]
		g.prevKey[k] = pressed
		return jp
	}

	mouseX, mouseY := ebiten.CursorPosition()
	if pt := image.Pt(mouseX, mouseY); pt != g.cursor {
		g.cursor = pt
		g.orch.Move(now)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.orch.Click(float64(mouseX), float64(mouseY), now)
	}
	g.touches = inpututil.AppendJustPressedTouchIDs(g.touches[:0])
	for _, id := range g.touches {
		tx, ty := ebiten.TouchPosition(id)
		g.orch.Move(now)
		g.orch.Click(float64(tx), float64(ty), now)
	}

	if justPressed(ebiten.KeyS) {
		if err := g.exportCard(now); err != nil {
			g.lastErr = err
		}
	}
	if justPressed(ebiten.KeyC) {
		if err := g.copyPoem(); err != nil {
			g.lastErr = err
		}
	}
	if justPressed(ebiten.KeyEscape) || justPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	if g.orch.Tick(now) {
		g.lastErr = nil
	}
	g.orch.SetPoemBounds(g.poemBounds())
	g.time += 1.0 / 60.0
	return nil
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.orch.Resize(float64(outsideWidth), float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}

func (g *Game) poemFace() *text.GoTextFace {
	return &text.GoTextFace{Source: g.fontSrc, Size: burst.PoemFontSize(float64(g.width))}
}

// poemBounds is the screen rectangle the poem occupies, padding included.
func (g *Game) poemBounds() image.Rectangle {
	poem := g.orch.Poem().Text
	if poem == "" {
		return image.Rectangle{}
	}
	face := g.poemFace()
	w, h := text.Measure(poem, face, face.Size*poemLineSpacing)
	x := float64(g.width)/2 - w/2
	y := float64(g.height) - poemMargin - h
	return image.Rect(int(x)-poemPad, int(y)-poemPad, int(x+w)+poemPad, int(y+h)+poemPad)
}

func (g *Game) copyPoem() error {
	poem := g.orch.Poem()
	if poem.Text == "" {
		return errNoPoem
	}
	if err := clipboard.WriteAll(poem.Text); err != nil {
		return fmt.Errorf("copy poem: %w", err)
	}
	g.notice = "poem copied"
	return nil
}

func (g *Game) exportCard(now time.Time) error {
	poem := g.orch.Poem()
	if poem.Text == "" {
		return errNoPoem
	}
	filename, err := zenity.SelectFileSave(
		zenity.Title("Save Poem Card"),
		zenity.Filename(fmt.Sprintf("spiral-%s.png", poem.Burst.String()[:8])),
		zenity.ConfirmOverwrite(),
		zenity.FileFilters{{
			Name:     "PNG image",
			Patterns: []string{"*.png"},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}

	img, err := card.Render(poem.Text, g.orch.Scene().Snapshot(), g.orch.Viewport(), now, card.DefaultOptions())
	if err != nil {
		return err
	}
	if err := card.Save(filename, img); err != nil {
		return err
	}
	g.log.Info("card saved", "path", filename, "burst", poem.Burst)
	g.notice = "saved " + filename

	// the burst that wrote this poem also gets its sound exported
	if b := g.orch.LastBurst(); b.ID == poem.Burst {
		wavPath := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".wav"
		if err := g.exportSound(wavPath, b); err != nil {
			return err
		}
		g.notice += " + " + filepath.Base(wavPath)
	}
	return nil
}

func (g *Game) exportSound(path string, b burst.Burst) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := sound.WriteWAV(f, b.Tones, g.engine.SampleRate()); err != nil {
		return err
	}
	g.log.Info("burst audio saved", "path", path, "burst", b.ID, "tones", len(b.Tones))
	return nil
}
