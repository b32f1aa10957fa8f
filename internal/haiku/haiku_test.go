package haiku

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/iburimskiy/spiral-haiku/internal/config"
)

var sample = []string{"data", "error", "digital", "cyberspace", "glitch"}

func TestRenderTemplates(t *testing.T) {
	want := []string{
		"data error\ndigital in the machine\ncyberspace glitch",
		"Error data\nerror roots find sunlight\nglitch reboots",
		"data data\ndigital cyberspace\nglitch blossoms",
	}
	for i, w := range want {
		if got := Render(i, sample, "~"); got != w {
			t.Fatalf("template %d:\n got %q\nwant %q", i, got, w)
		}
	}
	if Render(Templates, sample, "~") != want[0] || Render(-1, sample, "~") != want[2] {
		t.Fatal("template index should wrap")
	}
}

func TestRenderPadsShortInput(t *testing.T) {
	got := Render(0, []string{"leaf", "sap"}, "~")
	if got != "leaf sap\n~ in the machine\n~ ~" {
		t.Fatalf("unexpected padding: %q", got)
	}
	if strings.Contains(got, "%!") {
		t.Fatalf("format artefact in %q", got)
	}
}

func TestPickPlaceholderOnMiss(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, v := range []int{0, 4, 8, 13, -1} {
		if got := DefaultBank.Pick(v, rng, "~"); got != "~" {
			t.Fatalf("value %d: expected placeholder, got %q", v, got)
		}
	}
	empty := WordBank{3: nil}
	if got := empty.Pick(3, rng, "?"); got != "?" {
		t.Fatalf("empty entry should yield placeholder, got %q", got)
	}
}

func TestPickFromBank(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for v, words := range DefaultBank {
		for i := 0; i < 20; i++ {
			got := DefaultBank.Pick(v, rng, "~")
			found := false
			for _, w := range words {
				if w == got {
					found = true
				}
			}
			if !found {
				t.Fatalf("value %d: %q not in bank", v, got)
			}
		}
	}
}

func TestComposeReturnsATemplate(t *testing.T) {
	c := NewComposer(config.HaikuConfig{Delay: 5 * time.Millisecond, Placeholder: "~"}, rand.New(rand.NewPCG(3, 4)))
	allowed := map[string]bool{}
	for i := 0; i < Templates; i++ {
		allowed[Render(i, sample, "~")] = true
	}
	seen := map[string]bool{}
	for i := 0; i < 30; i++ {
		got, err := c.Compose(context.Background(), sample)
		if err != nil {
			t.Fatal(err)
		}
		if !allowed[got] {
			t.Fatalf("unexpected poem %q", got)
		}
		seen[got] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected template variety over 30 draws, saw %d", len(seen))
	}
}

func TestComposeHonoursDelay(t *testing.T) {
	c := NewComposer(config.HaikuConfig{Delay: 30 * time.Millisecond, Placeholder: "~"}, rand.New(rand.NewPCG(1, 1)))
	start := time.Now()
	if _, err := c.Compose(context.Background(), sample); err != nil {
		t.Fatal(err)
	}
	if el := time.Since(start); el < 30*time.Millisecond {
		t.Fatalf("returned after %v, before the delay", el)
	}
}

func TestComposeCancelled(t *testing.T) {
	c := NewComposer(config.HaikuConfig{Delay: time.Hour, Placeholder: "~"}, rand.New(rand.NewPCG(1, 1)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Compose(ctx, sample)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
