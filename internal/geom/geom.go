// Package geom holds the coordinate math shared by the on-screen canvas and
// the vector document backends: points, alignment, the render transform,
// pan/zoom views, arcs, grids and the text placement heuristic.
package geom

import (
	"fmt"
	"math"
)

type Point struct {
	X, Y float64
}

func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) Mul(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Rect is an axis-aligned box in target coordinates.
type Rect struct {
	Min, Max Point
}

// RectAround returns the box of the given size centred on c.
func RectAround(c, size Point) Rect {
	half := size.Mul(0.5)
	return Canon(c.Sub(half), c.Add(half))
}

// Canon builds a Rect from two opposite corners in any order.
func Canon(a, b Point) Rect {
	return Rect{
		Min: Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: Point{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

func (r Rect) Dx() float64 { return r.Max.X - r.Min.X }
func (r Rect) Dy() float64 { return r.Max.Y - r.Min.Y }

// Segment is a straight stroke between two points.
type Segment struct {
	A, B Point
}
