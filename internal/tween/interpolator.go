// Package tween builds in-between figures for two keyframes of the same
// object and the easing curves that drive them.
package tween

import (
	"math"

	"github.com/ivlev/rviewer/internal/figure"
	"github.com/ivlev/rviewer/internal/geom"
)

// lerp performs linear interpolation between a and b
func lerp(a, b, k float64) float64 {
	return a*(1-k) + b*k
}

func lerpInt(a, b int, k float64) int {
	return int(math.Round(lerp(float64(a), float64(b), k)))
}

func lerpPoint(a, b geom.Point, k float64) geom.Point {
	return geom.Point{X: lerp(a.X, b.X, k), Y: lerp(a.Y, b.Y, k)}
}

// lerpCommon blends the colour; the rest of the metadata stays from a.
func lerpCommon(a, b figure.CommonParams, k float64) figure.CommonParams {
	out := a
	out.Color = a.Color.Lerp(b.Color, k)
	return out
}

// lerpText cuts the longer string down to a length between the two.
func lerpText(a, b string, k float64) string {
	switch {
	case k <= 0:
		return a
	case k >= 1:
		return b
	}
	ra, rb := []rune(a), []rune(b)
	n := lerpInt(len(ra), len(rb), k)
	if len(ra) > len(rb) {
		return string(ra[:n])
	}
	return string(rb[:n])
}

// Interpolate blends a towards b by factor k. Numeric fields are mixed
// linearly, integer ones rounded, discrete ones (fill, alignment, tags)
// come from a. It reports false when the figures cannot be blended:
// different kinds, messages, or polys with different vertex counts.
func Interpolate(a, b figure.Figure, k float64) (figure.Figure, bool) {
	switch a := a.(type) {
	case figure.Rect:
		b, ok := b.(figure.Rect)
		if !ok {
			return nil, false
		}
		out := a
		out.Center = lerpPoint(a.Center, b.Center, k)
		out.Size = lerpPoint(a.Size, b.Size, k)
		out.Width = lerp(a.Width, b.Width, k)
		out.Params = lerpCommon(a.Params, b.Params, k)
		return out, true
	case figure.Circle:
		b, ok := b.(figure.Circle)
		if !ok {
			return nil, false
		}
		out := a
		out.Center = lerpPoint(a.Center, b.Center, k)
		out.Radius = lerp(a.Radius, b.Radius, k)
		out.Width = lerp(a.Width, b.Width, k)
		if a.Arc != nil && b.Arc != nil {
			arc := geom.Arc{From: lerp(a.Arc.From, b.Arc.From, k), To: lerp(a.Arc.To, b.Arc.To, k)}
			out.Arc = &arc
		}
		out.Params = lerpCommon(a.Params, b.Params, k)
		return out, true
	case figure.Line:
		b, ok := b.(figure.Line)
		if !ok {
			return nil, false
		}
		out := a
		out.Start = lerpPoint(a.Start, b.Start, k)
		out.Finish = lerpPoint(a.Finish, b.Finish, k)
		out.Width = lerp(a.Width, b.Width, k)
		out.Params = lerpCommon(a.Params, b.Params, k)
		return out, true
	case figure.Grid:
		b, ok := b.(figure.Grid)
		if !ok {
			return nil, false
		}
		out := a
		out.Center = lerpPoint(a.Center, b.Center, k)
		out.Size = lerpPoint(a.Size, b.Size, k)
		out.Cols = lerpInt(a.Cols, b.Cols, k)
		out.Rows = lerpInt(a.Rows, b.Rows, k)
		out.Width = lerp(a.Width, b.Width, k)
		out.Params = lerpCommon(a.Params, b.Params, k)
		return out, true
	case figure.Poly:
		b, ok := b.(figure.Poly)
		if !ok || len(a.Points) != len(b.Points) {
			return nil, false
		}
		out := a
		out.Points = make([]geom.Point, len(a.Points))
		for i := range a.Points {
			out.Points[i] = lerpPoint(a.Points[i], b.Points[i], k)
		}
		out.Width = lerp(a.Width, b.Width, k)
		out.Params = lerpCommon(a.Params, b.Params, k)
		return out, true
	case figure.Text:
		b, ok := b.(figure.Text)
		if !ok {
			return nil, false
		}
		out := a
		out.Center = lerpPoint(a.Center, b.Center, k)
		out.Text = lerpText(a.Text, b.Text, k)
		out.Font = lerp(a.Font, b.Font, k)
		out.Params = lerpCommon(a.Params, b.Params, k)
		return out, true
	}
	return nil, false
}

// InBetweens returns one synthetic figure per curve factor, in curve
// order. Figures that cannot be blended yield nothing.
func InBetweens(a, b figure.Figure, curve []float64) []figure.Figure {
	if _, ok := Interpolate(a, b, 0); !ok {
		return nil
	}
	out := make([]figure.Figure, 0, len(curve))
	for _, k := range curve {
		f, _ := Interpolate(a, b, k)
		out = append(out, f)
	}
	return out
}
