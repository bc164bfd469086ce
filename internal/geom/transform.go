package geom

// Mapping is the second stage of a Transform: it takes reconciled scene
// coordinates to the target surface.
type Mapping func(Point) Point

// Transform maps scene coordinates onto a target surface in two stages.
// Stage one adds the scene shift and, unless FlipY is set, mirrors y
// about the scene height. Stage two is the Mapping of the target.
type Transform struct {
	Shift  Point
	Height float64
	FlipY  bool

	// Map is nil for the identity mapping.
	Map Mapping
	// InvertY mirrors y about Height once more after Map, for targets
	// whose documents are top-down.
	InvertY bool
	// Scale is the length factor applied by Map. Zero means 1.
	Scale float64
}

func (t Transform) Point(p Point) Point {
	p = p.Add(t.Shift)
	if !t.FlipY {
		p.Y = t.Height - p.Y
	}
	if t.Map != nil {
		p = t.Map(p)
	}
	if t.InvertY {
		p.Y = t.Height - p.Y
	}
	return p
}

func (t Transform) Points(ps []Point) []Point {
	out := make([]Point, len(ps))
	for i, p := range ps {
		out[i] = t.Point(p)
	}
	return out
}

// Len maps a scene length (radius, font size) to the target.
func (t Transform) Len(v float64) float64 {
	if t.Scale == 0 {
		return v
	}
	return v * t.Scale
}

// Mirrored reports whether the transform as a whole reverses the y axis.
// Stage one mirrors unless FlipY is set; InvertY mirrors again.
func (t Transform) Mirrored() bool {
	return !t.FlipY != t.InvertY
}

// DocumentTransform is the transform of the vector export backend. The
// document keeps scene units at unit scale and inverts y a second time
// after stage one: with flipy off scene y lands unchanged in the document.
func DocumentTransform(shift Point, height float64, flipY bool) Transform {
	return Transform{Shift: shift, Height: height, FlipY: flipY, Scale: 1, InvertY: true}
}

// View is an interactive pan/zoom over reconciled scene coordinates.
type View struct {
	Center Point
	Zoom   float64
	Width  float64
	Height float64
}

// FitView centres a scene of the given size in a viewport, leaving a
// 10% margin.
func FitView(scene Point, width, height float64) View {
	zoom := 1.0
	if scene.X > 0 && scene.Y > 0 {
		zoom = min(height/scene.Y, width/scene.X) * 0.9
	}
	return View{
		Center: scene.Mul(0.5),
		Zoom:   zoom,
		Width:  width,
		Height: height,
	}
}

func (v View) Map(p Point) Point {
	return Point{
		X: (p.X-v.Center.X)*v.Zoom + v.Width/2,
		Y: (p.Y-v.Center.Y)*v.Zoom + v.Height/2,
	}
}

func (v View) Unmap(p Point) Point {
	return Point{
		X: (p.X-v.Width/2)/v.Zoom + v.Center.X,
		Y: (p.Y-v.Height/2)/v.Zoom + v.Center.Y,
	}
}

// Pan moves the view by a delta given in screen pixels.
func (v View) Pan(dx, dy float64) View {
	v.Center = v.Center.Sub(Point{X: dx / v.Zoom, Y: dy / v.Zoom})
	return v
}

// ZoomAt scales the view by factor keeping the screen point at fixed.
func (v View) ZoomAt(at Point, factor float64) View {
	before := v.Unmap(at)
	v.Zoom *= factor
	after := v.Unmap(at)
	v.Center = v.Center.Add(before.Sub(after))
	return v
}

// Transform returns the screen transform of this view.
func (v View) Transform(shift Point, height float64, flipY bool) Transform {
	return Transform{Shift: shift, Height: height, FlipY: flipY, Map: v.Map, Scale: v.Zoom}
}
