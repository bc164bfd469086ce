package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ivlev/rviewer/internal/geom"
)

type DirectiveKind uint8

const (
	Tick DirectiveKind = iota
	Speed
	Width
	Font
	Size
	SVGWidth
	Disable
	SetFunc
	InBetweens
	FlipY
	Shift
)

var directives = map[string]DirectiveKind{
	"tick":        Tick,
	"speed":       Speed,
	"width":       Width,
	"font":        Font,
	"size":        Size,
	"svgwidth":    SVGWidth,
	"disable":     Disable,
	"setfunc":     SetFunc,
	"in_betweens": InBetweens,
	"flipy":       FlipY,
	"shift":       Shift,
}

// Directive is a scene-level command. Which field carries the argument
// depends on Kind.
type Directive struct {
	Kind DirectiveKind

	// Speed, Width, Font, SVGWidth.
	Value float64
	// Size, Shift.
	Point geom.Point
	// InBetweens.
	Count int
	// FlipY.
	Flag bool
	// Disable (the tag) and SetFunc (the curve name).
	Name string
	// SetFunc.
	Curve []float64
}

func parseDirective(kind DirectiveKind, arg string) (*Directive, error) {
	d := &Directive{Kind: kind}
	var err error
	switch kind {
	case Tick:
	case Speed:
		d.Value, err = parseFloat(arg)
		if err == nil && d.Value <= 0 {
			err = errors.New("speed must be positive")
		}
	case Width, Font, SVGWidth:
		d.Value, err = parseFloat(arg)
	case Size, Shift:
		d.Point, err = parsePoint(arg)
	case Disable:
		d.Name = arg
		if d.Name == "" {
			err = ErrMissingValue
		}
	case SetFunc:
		fields := strings.Fields(arg)
		if len(fields) == 0 {
			err = ErrMissingValue
			break
		}
		d.Name = fields[0]
		d.Curve = make([]float64, 0, len(fields)-1)
		for _, s := range fields[1:] {
			var k float64
			if k, err = parseFloat(s); err != nil {
				break
			}
			d.Curve = append(d.Curve, k)
		}
	case InBetweens:
		d.Count, err = strconv.Atoi(arg)
		if err == nil && d.Count < 1 {
			err = errors.New("in_betweens must be at least 1")
		}
	case FlipY:
		d.Flag, err = parseBool(arg)
	default:
		err = fmt.Errorf("directive %d not handled", kind)
	}
	if err != nil {
		return nil, &ParseError{Value: arg, Err: err}
	}
	return d, nil
}
