// Package burst turns pointer input into spiral bursts: notes, links,
// tones and a haiku. It has no UI dependencies; front-ends drive it.
package burst

import (
	"context"
	"image"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iburimskiy/spiral-haiku/internal/config"
	"github.com/iburimskiy/spiral-haiku/internal/haiku"
	"github.com/iburimskiy/spiral-haiku/internal/scene"
	"github.com/iburimskiy/spiral-haiku/internal/sound"
	"github.com/iburimskiy/spiral-haiku/internal/spiral"
)

const (
	noteBaseSize = 8
	noteSizeStep = 3

	// composed poems waiting for the next Tick
	poemQueue = 16
)

// ToneSink plays tones. *sound.Engine is the production sink.
type ToneSink interface {
	Play(sound.Tone)
}

// Poem is the haiku currently on display.
type Poem struct {
	Burst uuid.UUID
	Text  string
	At    time.Time
}

// Burst summarises what a single click spawned.
type Burst struct {
	ID     uuid.UUID
	Origin spiral.Point
	Mode   sound.Mode
	Notes  int
	Links  int
	Words  []string
	Tones  []sound.Tone
}

// Orchestrator turns pointer events into bursts. Move, Click, Tick and the
// accessors must be called from one goroutine (the UI loop); only haiku
// composition runs elsewhere and reports back through Tick.
type Orchestrator struct {
	cfg      config.Config
	scene    *scene.Scene
	tones    ToneSink
	voicing  sound.Voicing
	composer *haiku.Composer
	bank     haiku.WordBank
	rng      *rand.Rand
	log      *slog.Logger

	cadence  sound.Cadence
	viewport spiral.Viewport
	poemRect image.Rectangle
	poem     Poem
	last     Burst

	ctx     context.Context
	poems   chan Poem
	pending sync.WaitGroup
}

// NewOrchestrator wires the pipeline. Cancelling ctx abandons pending poems.
func NewOrchestrator(ctx context.Context, cfg config.Config, tones ToneSink, rng *rand.Rand, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		cfg:      cfg,
		scene:    scene.New(cfg.Scene),
		tones:    tones,
		voicing:  sound.VoicingFrom(cfg.Sound),
		composer: haiku.NewComposer(cfg.Haiku, rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))),
		bank:     haiku.DefaultBank,
		rng:      rng,
		log:      log,
		cadence:  sound.NewCadence(cfg.Sound.ModeThreshold),
		viewport: spiral.Viewport{Width: float64(cfg.Window.Width), Height: float64(cfg.Window.Height)},
		ctx:      ctx,
		poems:    make(chan Poem, poemQueue),
	}
}

func (o *Orchestrator) Resize(w, h float64) {
	o.viewport = spiral.Viewport{Width: w, Height: h}
}

// SetPoemBounds marks the region where clicks belong to the poem text.
func (o *Orchestrator) SetPoemBounds(r image.Rectangle) { o.poemRect = r }

func (o *Orchestrator) Viewport() spiral.Viewport { return o.viewport }
func (o *Orchestrator) Scene() *scene.Scene       { return o.scene }
func (o *Orchestrator) Poem() Poem                { return o.poem }
func (o *Orchestrator) Mode() sound.Mode          { return o.cadence.Mode }
func (o *Orchestrator) LastBurst() Burst          { return o.last }

// Move records a pointer move and reclassifies the sound mode.
func (o *Orchestrator) Move(now time.Time) {
	prev := o.cadence.Mode
	o.cadence = o.cadence.Move(now)
	if o.cadence.Mode != prev {
		o.log.Debug("sound mode", "mode", o.cadence.Mode)
	}
}

// Click spawns a burst at (x, y). It reports false, doing nothing, when
// the point lies on the poem.
func (o *Orchestrator) Click(x, y float64, now time.Time) (Burst, bool) {
	if image.Pt(int(math.Floor(x)), int(math.Floor(y))).In(o.poemRect) {
		return Burst{}, false
	}

	o.scene.ClearAll(now)

	origin := spiral.Point{X: x, Y: y}
	layout := spiral.Generate(origin, o.viewport, spiral.Params{
		Terms:           o.cfg.Spiral.Terms,
		BaseRadiusRatio: o.cfg.Spiral.BaseRadiusRatio,
		LayerGrowth:     o.cfg.Spiral.LayerGrowth,
	})
	b := Burst{
		ID:     uuid.New(),
		Origin: origin,
		Mode:   o.cadence.Mode,
		Notes:  len(layout.Nodes),
		Links:  len(layout.Links),
	}

	snd := o.cfg.Sound
	for _, n := range layout.Nodes {
		size := noteBaseSize + noteSizeStep*float64(n.Term.Value)
		c := palette[o.rng.IntN(len(palette))]
		glyph := glyphs[o.rng.IntN(len(glyphs))]
		o.scene.SpawnNote(n.Pos, size, c, glyph, now)

		freq := sound.NoteFrequency(snd.BaseFrequency, snd.TermStep, snd.NoteStep, n.Term.Value, n.Slot)
		tone := o.voicing.Tone(b.Mode, freq, sound.Pan(n.Pos.X, o.viewport.Width))
		o.tones.Play(tone)
		b.Tones = append(b.Tones, tone)
	}
	for _, l := range layout.Links {
		width := 1 + o.rng.Float64()*2
		o.scene.SpawnConnection(l.From, l.To, palette[l.Palette%len(palette)], l.Opacity, width, now)
	}

	b.Words = make([]string, 0, len(layout.Terms))
	for _, term := range layout.Terms {
		b.Words = append(b.Words, o.bank.Pick(term.Value, o.rng, o.cfg.Haiku.Placeholder))
	}

	o.log.Debug("burst",
		"burst", b.ID,
		"x", x, "y", y,
		"mode", b.Mode,
		"notes", b.Notes,
		"links", b.Links,
		"live", o.scene.Len(),
	)
	o.last = b
	o.compose(b)
	return b, true
}

// compose runs the haiku off the UI goroutine. Newer clicks do not cancel
// older compositions; whichever resolves last is displayed.
func (o *Orchestrator) compose(b Burst) {
	o.pending.Add(1)
	go func() {
		defer o.pending.Done()
		text, err := o.composer.Compose(o.ctx, b.Words)
		if err != nil {
			o.log.Debug("haiku abandoned", "burst", b.ID, "err", err)
			return
		}
		select {
		case o.poems <- Poem{Burst: b.ID, Text: text, At: time.Now()}:
		case <-o.ctx.Done():
		}
	}()
}

// Tick expires old entities and applies finished poems in arrival order.
// It reports whether the displayed poem changed.
func (o *Orchestrator) Tick(now time.Time) bool {
	o.scene.Sweep(now)
	changed := false
	for {
		select {
		case p := <-o.poems:
			o.poem = p
			changed = true
			o.log.Info("haiku", "burst", p.Burst, "text", p.Text)
		default:
			return changed
		}
	}
}

// Wait blocks until every pending composition has delivered or given up.
// Delivery needs either a Tick draining the queue or a cancelled context.
func (o *Orchestrator) Wait() { o.pending.Wait() }

// PoemFontSize scales the poem with the viewport width, capped at 20.
func PoemFontSize(viewportWidth float64) float64 {
	return math.Min(viewportWidth*0.03, 20)
}
