package geom

import "math"

// Arc is a circle sector between two angles in radians.
type Arc struct {
	From, To float64
}

// NormalizeAngle brings a into (-π, π].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

func (a Arc) Normalize() Arc {
	return Arc{From: NormalizeAngle(a.From), To: NormalizeAngle(a.To)}
}

// Reflect mirrors the arc about the x axis: angles are negated and
// swapped so the sector keeps its counter-clockwise orientation.
func (a Arc) Reflect() Arc {
	return Arc{From: -a.To, To: -a.From}
}

// Delta is the swept angle going from From to To, in (0, 2π].
func (a Arc) Delta() float64 {
	d := math.Mod(a.To-a.From, 2*math.Pi)
	if d <= 0 {
		d += 2 * math.Pi
	}
	return d
}

func (a Arc) LargeArc() bool {
	return a.Delta() > math.Pi
}

// Ends returns the start and end points of the arc on a circle.
func (a Arc) Ends(c Point, r float64) (Point, Point) {
	return Point{X: c.X + r*math.Cos(a.From), Y: c.Y + r*math.Sin(a.From)},
		Point{X: c.X + r*math.Cos(a.To), Y: c.Y + r*math.Sin(a.To)}
}

// Target returns the arc as it must be swept on the target surface.
func (a Arc) Target(t Transform) Arc {
	a = a.Normalize()
	if t.Mirrored() {
		return a.Reflect()
	}
	return a
}

// GridLines returns the strokes of a cols×rows grid filling the box of the
// given size centred on c: cols+1 vertical strokes and rows+1 horizontal
// ones.
func GridLines(c, size Point, cols, rows int) []Segment {
	cols = max(cols, 1)
	rows = max(rows, 1)
	box := RectAround(c, size)
	lines := make([]Segment, 0, cols+rows+2)
	for i := 0; i <= cols; i++ {
		x := box.Min.X + box.Dx()*float64(i)/float64(cols)
		lines = append(lines, Segment{A: Point{X: x, Y: box.Min.Y}, B: Point{X: x, Y: box.Max.Y}})
	}
	for j := 0; j <= rows; j++ {
		y := box.Min.Y + box.Dy()*float64(j)/float64(rows)
		lines = append(lines, Segment{A: Point{X: box.Min.X, Y: y}, B: Point{X: box.Max.X, Y: y}})
	}
	return lines
}

const (
	// BaselineRatio moves the visual centre of a line of text down to its
	// baseline, as a fraction of the font size.
	BaselineRatio = 0.4
	// VerticalAlignRatio is the half-height used for B/E vertical alignment.
	VerticalAlignRatio = 0.5
	// LineSpacing is the distance between baselines of a multi-line text.
	LineSpacing = 1.2
)

// Baselines returns the baseline y of each of n lines of text whose block
// is anchored at y (top-down target coordinates).
func Baselines(y, size float64, v Align, n int) []float64 {
	y += size * BaselineRatio
	switch v {
	case Begin:
		y -= size * VerticalAlignRatio
	case End:
		y += size * VerticalAlignRatio
	}
	step := size * LineSpacing
	y -= step * float64(n-1) / 2
	out := make([]float64, n)
	for i := range out {
		out[i] = y + step*float64(i)
	}
	return out
}
