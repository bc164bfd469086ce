package geom

import "fmt"

// Align is the placement of a figure along one axis relative to its anchor.
type Align uint8

const (
	Center Align = iota
	Begin
	End
)

func (a Align) Byte() byte {
	switch a {
	case Begin:
		return 'B'
	case End:
		return 'E'
	}
	return 'C'
}

func alignFromByte(b byte) (Align, error) {
	switch b {
	case 'B':
		return Begin, nil
	case 'C':
		return Center, nil
	case 'E':
		return End, nil
	}
	return Center, fmt.Errorf("unknown alignment %q", b)
}

// Offset shifts an anchor so that a figure of the given extent starts,
// centres or ends on it.
func (a Align) Offset(extent float64) float64 {
	switch a {
	case Begin:
		return extent / 2
	case End:
		return -extent / 2
	}
	return 0
}

// Anchor is the fraction of the text advance that sits left of the anchor.
func (a Align) Anchor() float64 {
	switch a {
	case Begin:
		return 0
	case End:
		return 1
	}
	return 0.5
}

// TextAnchor is the SVG text-anchor keyword for the horizontal alignment.
func (a Align) TextAnchor() string {
	switch a {
	case Begin:
		return "start"
	case End:
		return "end"
	}
	return "middle"
}

// Alignment is the horizontal/vertical pair, written on the wire as two
// letters from {B,C,E}, e.g. "BC".
type Alignment struct {
	H, V Align
}

func ParseAlignment(s string) (Alignment, error) {
	if len(s) != 2 {
		return Alignment{}, fmt.Errorf("alignment must be two letters, got %q", s)
	}
	h, err := alignFromByte(s[0])
	if err != nil {
		return Alignment{}, err
	}
	v, err := alignFromByte(s[1])
	if err != nil {
		return Alignment{}, err
	}
	return Alignment{H: h, V: v}, nil
}

func (a Alignment) String() string {
	return string([]byte{a.H.Byte(), a.V.Byte()})
}

// Shift moves the anchor c to the centre of a box of the given size.
// It works in scene coordinates, before any transform.
func (a Alignment) Shift(c, size Point) Point {
	return Point{X: c.X + a.H.Offset(size.X), Y: c.Y + a.V.Offset(size.Y)}
}
