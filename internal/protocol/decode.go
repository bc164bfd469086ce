// Package protocol decodes the line-oriented scene protocol: figure lines
// such as "rect c=(1,2) s=(3,4) col=(255,0,0)" and directives such as
// "tick" or "size (100,100)".
package protocol

import (
	"errors"
	"strings"
	"unicode"

	"github.com/ivlev/rviewer/internal/figure"
	"github.com/ivlev/rviewer/internal/geom"
)

// Defaults are the drawing properties a figure line falls back to.
type Defaults struct {
	Width float64
	Font  float64
	// MessageIndex is the stacking index given to a decoded msg line.
	MessageIndex int
}

// Line is one decoded protocol line. Exactly one of Figure and Directive
// is set.
type Line struct {
	Figure    figure.Figure
	Directive *Directive
}

type decodeFunc func(p Params, d Defaults) (figure.Figure, error)

var figures = map[string]decodeFunc{
	"rect":   decodeRect,
	"circle": decodeCircle,
	"line":   decodeLine,
	"grid":   decodeGrid,
	"poly":   decodePoly,
	"text":   decodeText,
}

// SplitKeyword returns the first word of a line and the rest of it. The
// keyword ends at whitespace or '='; a leading '=' of the rest is dropped.
func SplitKeyword(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool { return unicode.IsSpace(r) || r == '=' })
	if i < 0 {
		return s, ""
	}
	rest := strings.TrimSpace(s[i:])
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "="))
	return s[:i], rest
}

// Decode turns one line into a figure or a directive.
func Decode(s string, d Defaults) (Line, error) {
	keyword, rest := SplitKeyword(s)
	if keyword == "" {
		return Line{}, ErrBlankLine
	}
	if keyword == "msg" {
		return Line{Figure: figure.Message{Text: rest, Index: d.MessageIndex}}, nil
	}
	if fn, ok := figures[keyword]; ok {
		p, err := ParseParams(rest)
		if err != nil {
			return Line{}, &ParseError{Line: s, Err: err}
		}
		f, err := fn(p, d)
		if err != nil {
			return Line{}, withLine(s, err)
		}
		return Line{Figure: f}, nil
	}
	if kind, ok := directives[keyword]; ok {
		dir, err := parseDirective(kind, rest)
		if err != nil {
			return Line{}, withLine(s, err)
		}
		return Line{Directive: dir}, nil
	}
	return Line{}, &ParseError{Line: s, Err: ErrUnknownKeyword}
}

func withLine(line string, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Line = line
		return pe
	}
	return &ParseError{Line: line, Err: err}
}

func decodeCommon(p Params) (figure.CommonParams, error) {
	c := figure.DefaultCommon()
	var err error
	if c.Color, err = p.Color("col", figure.Black); err != nil {
		return c, err
	}
	c.Tags = append([]string(nil), p.All("t")...)
	if c.Keep, err = p.Bool("k", false); err != nil {
		return c, err
	}
	if p.Has("id") {
		if c.ID, err = p.Int("id", 0); err != nil {
			return c, err
		}
		c.HasID = true
	}
	c.Curve = p.String("fu", "")
	return c, nil
}

// fields collects the first error of a sequence of getter calls.
type fields struct {
	err error
}

func (f *fields) point(p Params, key string, def geom.Point) geom.Point {
	if f.err != nil {
		return def
	}
	v, err := p.Point(key, def)
	f.err = err
	return v
}

func (f *fields) float(p Params, key string, def float64) float64 {
	if f.err != nil {
		return def
	}
	v, err := p.Float(key, def)
	f.err = err
	return v
}

func (f *fields) bool(p Params, key string) bool {
	if f.err != nil {
		return false
	}
	v, err := p.Bool(key, false)
	f.err = err
	return v
}

func (f *fields) align(p Params) geom.Alignment {
	if f.err != nil {
		return geom.Alignment{}
	}
	v, err := p.Alignment("a", geom.Alignment{})
	f.err = err
	return v
}

func (f *fields) common(p Params) figure.CommonParams {
	if f.err != nil {
		return figure.DefaultCommon()
	}
	c, err := decodeCommon(p)
	f.err = err
	return c
}

func decodeRect(p Params, d Defaults) (figure.Figure, error) {
	var f fields
	r := figure.Rect{
		Center: f.point(p, "c", geom.Point{}),
		Size:   f.point(p, "s", geom.Point{}),
		Width:  f.float(p, "w", d.Width),
		Fill:   f.bool(p, "f"),
		Align:  f.align(p),
		Params: f.common(p),
	}
	return r, f.err
}

func decodeCircle(p Params, d Defaults) (figure.Figure, error) {
	var f fields
	c := figure.Circle{
		Center: f.point(p, "c", geom.Point{}),
		Radius: f.float(p, "r", 1),
		Width:  f.float(p, "w", d.Width),
		Fill:   f.bool(p, "f"),
		Params: f.common(p),
	}
	if f.err == nil && p.Has("arc") {
		a := f.point(p, "arc", geom.Point{})
		arc := geom.Arc{From: a.X, To: a.Y}.Normalize()
		c.Arc = &arc
	}
	return c, f.err
}

func decodeLine(p Params, d Defaults) (figure.Figure, error) {
	var f fields
	l := figure.Line{
		Start:  f.point(p, "s", geom.Point{}),
		Finish: f.point(p, "f", geom.Point{}),
		Width:  f.float(p, "w", d.Width),
		Params: f.common(p),
	}
	return l, f.err
}

func decodeGrid(p Params, d Defaults) (figure.Figure, error) {
	var f fields
	g := figure.Grid{
		Center: f.point(p, "c", geom.Point{}),
		Size:   f.point(p, "s", geom.Point{}),
		Width:  f.float(p, "w", d.Width),
		Align:  f.align(p),
		Params: f.common(p),
	}
	if f.err != nil {
		return g, f.err
	}
	cols, rows, err := p.Dims("d", 1, 1)
	g.Cols, g.Rows = cols, rows
	return g, err
}

func decodePoly(p Params, d Defaults) (figure.Figure, error) {
	var f fields
	pl := figure.Poly{
		Width:  f.float(p, "w", d.Width),
		Fill:   f.bool(p, "f"),
		Params: f.common(p),
	}
	if f.err != nil {
		return pl, f.err
	}
	pts, err := p.Points("p")
	pl.Points = pts
	return pl, err
}

func decodeText(p Params, d Defaults) (figure.Figure, error) {
	var f fields
	t := figure.Text{
		Center: f.point(p, "c", geom.Point{}),
		Text:   strings.ReplaceAll(p.String("m", ""), ";", "\n"),
		Font:   f.float(p, "s", d.Font),
		Align:  f.align(p),
		Params: f.common(p),
	}
	return t, f.err
}
