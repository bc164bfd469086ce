package figure

import (
	"strings"

	"github.com/ivlev/rviewer/internal/geom"
)

const (
	// MessageSize is the font size of overlay messages, in screen pixels.
	MessageSize = 10.0
	// MessageMargin is the left inset of overlay messages.
	MessageMargin = 4.0
)

// Layout is a figure resolved onto a target surface. Only the fields of
// the figure's kind are set. Both backends draw from a Layout, so the
// geometry is computed in exactly one place.
type Layout struct {
	Kind  Kind
	Color Color
	Fill  bool
	// Stroke is the figure's line width, not yet scaled by the backend.
	Stroke float64

	Box      geom.Rect
	Center   geom.Point
	Radius   float64
	Arc      *geom.Arc
	Segments []geom.Segment
	Points   []geom.Point
	Text     *TextLayout
}

type TextLayout struct {
	Lines     []string
	X         float64
	Baselines []float64
	Size      float64
	// Anchor is the horizontal alignment of every line around X.
	Anchor    geom.Align
	Monospace bool
}

// Resolve computes the target-space geometry of f under t.
func Resolve(f Figure, t geom.Transform) Layout {
	switch f := f.(type) {
	case Rect:
		c := f.Align.Shift(f.Center, f.Size)
		half := f.Size.Mul(0.5)
		return Layout{
			Kind:   KindRect,
			Color:  f.Params.Color,
			Fill:   f.Fill,
			Stroke: f.Width,
			Box:    geom.Canon(t.Point(c.Sub(half)), t.Point(c.Add(half))),
		}
	case Circle:
		l := Layout{
			Kind:   KindCircle,
			Color:  f.Params.Color,
			Fill:   f.Fill,
			Stroke: f.Width,
			Center: t.Point(f.Center),
			Radius: t.Len(f.Radius),
		}
		if f.Arc != nil {
			arc := f.Arc.Target(t)
			l.Arc = &arc
		}
		return l
	case Line:
		return Layout{
			Kind:     KindLine,
			Color:    f.Params.Color,
			Stroke:   f.Width,
			Segments: []geom.Segment{{A: t.Point(f.Start), B: t.Point(f.Finish)}},
		}
	case Grid:
		c := f.Align.Shift(f.Center, f.Size)
		lines := geom.GridLines(c, f.Size, f.Cols, f.Rows)
		for i, s := range lines {
			lines[i] = geom.Segment{A: t.Point(s.A), B: t.Point(s.B)}
		}
		return Layout{
			Kind:     KindGrid,
			Color:    f.Params.Color,
			Stroke:   f.Width,
			Segments: lines,
		}
	case Poly:
		return Layout{
			Kind:   KindPoly,
			Color:  f.Params.Color,
			Fill:   f.Fill,
			Stroke: f.Width,
			Points: t.Points(f.Points),
		}
	case Text:
		anchor := t.Point(f.Center)
		size := t.Len(f.Font)
		lines := strings.Split(f.Text, "\n")
		return Layout{
			Kind:  KindText,
			Color: f.Params.Color,
			Text: &TextLayout{
				Lines:     lines,
				X:         anchor.X,
				Baselines: geom.Baselines(anchor.Y, size, f.Align.V, len(lines)),
				Size:      size,
				Anchor:    f.Align.H,
			},
		}
	case Message:
		// Поверх сцены, без трансформации
		return Layout{
			Kind:  KindMessage,
			Color: White,
			Text: &TextLayout{
				Lines:     []string{f.Text},
				X:         MessageMargin,
				Baselines: []float64{float64(f.Index)*MessageSize*geom.LineSpacing + MessageSize},
				Size:      MessageSize,
				Anchor:    geom.Begin,
				Monospace: true,
			},
		}
	}
	return Layout{}
}
