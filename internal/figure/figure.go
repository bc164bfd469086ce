// Package figure defines the closed set of drawable shapes and the metadata
// they share. Figures are immutable values once decoded.
package figure

import (
	"github.com/ivlev/rviewer/internal/geom"
)

type Kind uint8

const (
	KindRect Kind = iota
	KindCircle
	KindLine
	KindGrid
	KindPoly
	KindText
	KindMessage
)

var kindNames = [...]string{"rect", "circle", "line", "grid", "poly", "text", "msg"}

// String returns the protocol keyword of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// CommonParams is the metadata every figure carries.
type CommonParams struct {
	Color Color
	// Tags in declaration order. Empty means always visible.
	Tags []string
	Keep bool
	// ID joins figures across keyframes for in-betweening.
	ID    int
	HasID bool
	// Curve names the easing curve used when this figure is the target
	// of an in-between.
	Curve string
}

func DefaultCommon() CommonParams {
	return CommonParams{Color: Black}
}

// Figure is one of Rect, Circle, Line, Grid, Poly, Text or Message.
type Figure interface {
	Kind() Kind
	Common() CommonParams
	sealed()
}

type Rect struct {
	Center geom.Point
	Size   geom.Point
	Width  float64
	Fill   bool
	Align  geom.Alignment
	Params CommonParams
}

type Circle struct {
	Center geom.Point
	Radius float64
	Width  float64
	Fill   bool
	// Arc limits the circle to a sector; nil draws the full circle.
	Arc    *geom.Arc
	Params CommonParams
}

type Line struct {
	Start  geom.Point
	Finish geom.Point
	Width  float64
	Params CommonParams
}

type Grid struct {
	Center geom.Point
	Size   geom.Point
	Cols   int
	Rows   int
	Width  float64
	Align  geom.Alignment
	Params CommonParams
}

// Poly is a polyline, or a polygon when Fill is set.
type Poly struct {
	Points []geom.Point
	Width  float64
	Fill   bool
	Params CommonParams
}

type Text struct {
	Center geom.Point
	Text   string
	Font   float64
	Align  geom.Alignment
	Params CommonParams
}

// Message is a screen-only overlay line. Index stacks messages declared
// within the same tick.
type Message struct {
	Text  string
	Index int
}

func (Rect) Kind() Kind    { return KindRect }
func (Circle) Kind() Kind  { return KindCircle }
func (Line) Kind() Kind    { return KindLine }
func (Grid) Kind() Kind    { return KindGrid }
func (Poly) Kind() Kind    { return KindPoly }
func (Text) Kind() Kind    { return KindText }
func (Message) Kind() Kind { return KindMessage }

func (f Rect) Common() CommonParams   { return f.Params }
func (f Circle) Common() CommonParams { return f.Params }
func (f Line) Common() CommonParams   { return f.Params }
func (f Grid) Common() CommonParams   { return f.Params }
func (f Poly) Common() CommonParams   { return f.Params }
func (f Text) Common() CommonParams   { return f.Params }

// Messages carry no tags and no id: they are always drawn and never
// in-betweened.
func (Message) Common() CommonParams { return DefaultCommon() }

func (Rect) sealed()    {}
func (Circle) sealed()  {}
func (Line) sealed()    {}
func (Grid) sealed()    {}
func (Poly) sealed()    {}
func (Text) sealed()    {}
func (Message) sealed() {}

// NeedToDraw reports whether f is visible under the set of enabled tags.
// Untagged figures are always visible; tagged ones need at least one of
// their tags enabled.
func NeedToDraw(f Figure, enabled map[string]bool) bool {
	tags := f.Common().Tags
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if enabled[t] {
			return true
		}
	}
	return false
}
