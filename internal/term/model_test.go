package term

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iburimskiy/spiral-haiku/internal/burst"
	"github.com/iburimskiy/spiral-haiku/internal/config"
	"github.com/iburimskiy/spiral-haiku/internal/sound"
)

// glyphSet lists every rune a note can be drawn with.
const glyphSet = "♪♫♩♬♭♮♯"

type silent struct{}

func (silent) Play(sound.Tone) {}

func newModel(t *testing.T) Model {
	t.Helper()
	return newModelWith(t, config.Default())
}

func newModelWith(t *testing.T, cfg config.Config) Model {
	t.Helper()
	cfg.Haiku.Delay = 0
	ctx, cancel := context.WithCancel(context.Background())
	orch := burst.NewOrchestrator(ctx, cfg, silent{}, rand.New(rand.NewPCG(9, 9)), slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() {
		cancel()
		orch.Wait()
	})
	m, _ := New(orch).Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// settle ticks until the orchestrator shows a poem.
func settle(t *testing.T, m Model) Model {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m = update(t, m, tickMsg(time.Now()))
		if m.orch.Poem().Text != "" {
			return m
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("poem never arrived")
	return m
}

func TestClickDrawsNotes(t *testing.T) {
	m := newModel(t)
	if strings.ContainsAny(m.View(), glyphSet) {
		t.Fatal("empty canvas should have no notes")
	}

	m = update(t, m, tea.MouseMsg{X: 40, Y: 12, Type: tea.MouseLeft})
	m = update(t, m, tickMsg(time.Now()))
	view := m.View()
	if !strings.ContainsAny(view, glyphSet) {
		t.Fatalf("expected note glyphs in view:\n%s", view)
	}
	if got := len(strings.Split(view, "\n")); got != 24 {
		t.Fatalf("expected 24 rows, got %d", got)
	}
}

func TestPoemShownAndCopied(t *testing.T) {
	m := newModel(t)
	m = update(t, m, tea.MouseMsg{X: 20, Y: 5, Type: tea.MouseLeft})
	m = settle(t, m)

	first := strings.Split(m.orch.Poem().Text, "\n")[0]
	if !strings.Contains(m.View(), first) {
		t.Fatalf("view should contain poem line %q", first)
	}

	var copied string
	m.writeClipboard = func(s string) error {
		copied = s
		return nil
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	if copied != m.orch.Poem().Text {
		t.Fatalf("copied %q, want the poem", copied)
	}
	if m.status != "poem copied" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestStatusShowsEvictions(t *testing.T) {
	cfg := config.Default()
	cfg.Scene.MaxEntities = 10
	m := newModelWith(t, cfg)
	if strings.Contains(m.View(), "evicted") {
		t.Fatal("nothing evicted yet")
	}
	m = update(t, m, tea.MouseMsg{X: 40, Y: 12, Type: tea.MouseLeft})
	n := m.orch.Scene().Evicted()
	if n == 0 {
		t.Fatal("a full burst should overflow a 10 entity scene")
	}
	if want := fmt.Sprintf("evicted: %d", n); !strings.Contains(m.View(), want) {
		t.Fatalf("status line should report %q", want)
	}
}

func TestMotionSetsMode(t *testing.T) {
	m := newModel(t)
	m = update(t, m, tea.MouseMsg{X: 1, Y: 1, Type: tea.MouseMotion})
	m = update(t, m, tea.MouseMsg{X: 2, Y: 1, Type: tea.MouseMotion})
	if m.orch.Mode() != sound.Ambient {
		t.Fatalf("back-to-back motion should be ambient, got %v", m.orch.Mode())
	}
}

func TestQuit(t *testing.T) {
	m := newModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should quit")
	}
}

func TestHex(t *testing.T) {
	if got := hex(color.RGBA{G: 0xff, A: 0xff}); got != "#00ff00" {
		t.Fatalf("got %s", got)
	}
}
