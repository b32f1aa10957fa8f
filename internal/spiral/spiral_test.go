package spiral

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestFibonacciSupportedLengths(t *testing.T) {
	for _, n := range []int{6, 7} {
		terms := Fibonacci(n)
		if len(terms) != n {
			t.Fatalf("n=%d: got %d terms", n, len(terms))
		}
		if terms[0].Value != 1 || terms[1].Value != 1 {
			t.Fatalf("n=%d: sequence must start 1,1, got %v", n, terms[:2])
		}
		for i := 2; i < n; i++ {
			if terms[i].Value != terms[i-1].Value+terms[i-2].Value {
				t.Fatalf("n=%d: term %d = %d breaks recurrence", n, i, terms[i].Value)
			}
		}
		for i, term := range terms {
			if term.Index != i {
				t.Fatalf("term %d has index %d", i, term.Index)
			}
		}
	}
}

func TestFibonacciShort(t *testing.T) {
	if got := Fibonacci(0); len(got) != 0 {
		t.Fatalf("expected no terms, got %v", got)
	}
	if got := Fibonacci(1); len(got) != 1 || got[0].Value != 1 {
		t.Fatalf("expected [1], got %v", got)
	}
}

func TestGenerateCenterClickRadii(t *testing.T) {
	vp := Viewport{Width: 1000, Height: 800}
	layout := Generate(vp.Center(), vp, Params{Terms: 6, BaseRadiusRatio: 0.2, LayerGrowth: 0.3})

	if !near(layout.BaseRadius, 160) {
		t.Fatalf("expected base radius 160, got %v", layout.BaseRadius)
	}
	if len(layout.Nodes) != 1+1+2+3+5+8 {
		t.Fatalf("expected 20 nodes, got %d", len(layout.Nodes))
	}
	for _, n := range layout.Nodes {
		want := 160 * (1 + float64(n.Term.Index)*0.3)
		if !near(n.Radius, want) {
			t.Fatalf("layer %d: radius %v, want %v", n.Term.Index, n.Radius, want)
		}
		dist := math.Hypot(n.Pos.X-500, n.Pos.Y-400)
		if math.Abs(dist-want) > 1e-6 {
			t.Fatalf("layer %d: node at distance %v, want %v", n.Term.Index, dist, want)
		}
	}
}

func TestGenerateAngleAccumulates(t *testing.T) {
	vp := Viewport{Width: 100, Height: 100}
	layout := Generate(Point{}, vp, Params{Terms: 6, BaseRadiusRatio: 0.2, LayerGrowth: 0.3})

	angle := 0.0
	for _, n := range layout.Nodes {
		if !near(n.Angle, angle) {
			t.Fatalf("layer %d slot %d: angle %v, want %v", n.Term.Index, n.Slot, n.Angle, angle)
		}
		angle += 2 * math.Pi / float64(n.Term.Value)
	}
	// first node of the first layer lies on the positive x axis
	first := layout.Nodes[0]
	if !near(first.Pos.X, 20) || !near(first.Pos.Y, 0) {
		t.Fatalf("first node at %+v", first.Pos)
	}
}

func TestGenerateLinks(t *testing.T) {
	vp := Viewport{Width: 1000, Height: 800}
	layout := Generate(vp.Center(), vp, Params{Terms: 6, BaseRadiusRatio: 0.2, LayerGrowth: 0.3})

	var radial, chord int
	for _, l := range layout.Links {
		switch l.Kind {
		case LinkRadial:
			radial++
			if l.From != layout.Origin {
				t.Fatalf("radial link must start at origin, got %+v", l.From)
			}
			if l.Opacity != radialOpacity || l.Palette != l.Layer {
				t.Fatalf("radial link styling %+v", l)
			}
		case LinkChord:
			chord++
			if l.Palette != l.Layer+1 {
				t.Fatalf("chord palette %d for layer %d", l.Palette, l.Layer)
			}
			r := LayerRadius(layout.BaseRadius, l.Layer, 0.3)
			if d := math.Hypot(l.From.X-500, l.From.Y-400); math.Abs(d-r) > 1e-6 {
				t.Fatalf("chord start off its ring: %v vs %v", d, r)
			}
		}
	}
	// even slots per layer: 1,1,1,2,3,4 -> 12; of those with slot>0: 0,0,0,1,2,3 -> 6
	if radial != 12 || chord != 6 {
		t.Fatalf("expected 12 radial / 6 chord links, got %d / %d", radial, chord)
	}
}
