// Package spiral lays out Fibonacci bursts: one ring of nodes per term,
// placed on a running angle around a click origin.
package spiral

import "math"

// Term is one element of a truncated Fibonacci sequence.
type Term struct {
	Index int
	Value int
}

// Fibonacci returns the first n terms starting 1, 1.
func Fibonacci(n int) []Term {
	if n <= 0 {
		return nil
	}
	terms := make([]Term, n)
	a, b := 1, 1
	for i := range terms {
		terms[i] = Term{Index: i, Value: a}
		a, b = b, a+b
	}
	return terms
}

type Point struct {
	X, Y float64
}

type Viewport struct {
	Width, Height float64
}

func (v Viewport) Center() Point {
	return Point{X: v.Width / 2, Y: v.Height / 2}
}

// BaseRadius is ratio times the shorter viewport side.
func (v Viewport) BaseRadius(ratio float64) float64 {
	return ratio * math.Min(v.Width, v.Height)
}

// LayerRadius scales base by 1 + layer*growth.
func LayerRadius(base float64, layer int, growth float64) float64 {
	return base * (1 + float64(layer)*growth)
}

type Params struct {
	Terms           int
	BaseRadiusRatio float64
	LayerGrowth     float64
}

// Node is a single note position. Slot counts nodes within the layer.
type Node struct {
	Term   Term
	Slot   int
	Angle  float64
	Radius float64
	Pos    Point
}

type LinkKind uint8

const (
	LinkRadial LinkKind = iota // origin to node
	LinkChord                  // node two slots back to node, same layer
)

type Link struct {
	Kind     LinkKind
	From, To Point
	Layer    int
	Palette  int
	Opacity  float64
}

// Layout is everything one burst places on screen.
type Layout struct {
	Origin     Point
	BaseRadius float64
	Terms      []Term
	Nodes      []Node
	Links      []Link
}

const (
	radialOpacity = 0.4
	chordOpacity  = 0.6
)

// Generate places the nodes of every term around origin. The angle
// accumulator carries across layers, so each ring starts where the previous
// one stopped.
func Generate(origin Point, vp Viewport, p Params) Layout {
	terms := Fibonacci(p.Terms)
	base := vp.BaseRadius(p.BaseRadiusRatio)
	out := Layout{
		Origin:     origin,
		BaseRadius: base,
		Terms:      terms,
	}

	angle := 0.0
	for _, term := range terms {
		radius := LayerRadius(base, term.Index, p.LayerGrowth)
		step := 2 * math.Pi / float64(term.Value)
		for slot := 0; slot < term.Value; slot++ {
			pos := at(origin, angle, radius)
			out.Nodes = append(out.Nodes, Node{
				Term:   term,
				Slot:   slot,
				Angle:  angle,
				Radius: radius,
				Pos:    pos,
			})

			if slot%2 == 0 {
				out.Links = append(out.Links, Link{
					Kind:    LinkRadial,
					From:    origin,
					To:      pos,
					Layer:   term.Index,
					Palette: term.Index,
					Opacity: radialOpacity,
				})
				if slot > 0 {
					out.Links = append(out.Links, Link{
						Kind:    LinkChord,
						From:    at(origin, angle-2*step, radius),
						To:      pos,
						Layer:   term.Index,
						Palette: term.Index + 1,
						Opacity: chordOpacity,
					})
				}
			}

			angle += step
		}
	}
	return out
}

func at(origin Point, angle, radius float64) Point {
	return Point{
		X: origin.X + math.Cos(angle)*radius,
		Y: origin.Y + math.Sin(angle)*radius,
	}
}
