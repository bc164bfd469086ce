package tween

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ivlev/rviewer/internal/figure"
	"github.com/ivlev/rviewer/internal/geom"
)

func withID(id int) figure.CommonParams {
	p := figure.DefaultCommon()
	p.ID, p.HasID = id, true
	return p
}

func TestInterpolateEndpoints(t *testing.T) {
	red := figure.CommonParams{Color: figure.Color{R: 255, A: 255}}
	blue := figure.CommonParams{Color: figure.Color{B: 255, A: 100}}
	pairs := []struct {
		name string
		a, b figure.Figure
	}{
		{"rect",
			figure.Rect{Center: geom.Pt(0, 0), Size: geom.Pt(1, 1), Width: 1, Params: red},
			figure.Rect{Center: geom.Pt(10, 20), Size: geom.Pt(3, 5), Width: 3, Params: blue}},
		{"circle",
			figure.Circle{Center: geom.Pt(1, 1), Radius: 1, Width: 1, Params: red},
			figure.Circle{Center: geom.Pt(5, 1), Radius: 4, Width: 2, Params: blue}},
		{"line",
			figure.Line{Start: geom.Pt(0, 0), Finish: geom.Pt(1, 1), Width: 1, Params: red},
			figure.Line{Start: geom.Pt(2, 2), Finish: geom.Pt(9, 9), Width: 1, Params: blue}},
		{"grid",
			figure.Grid{Size: geom.Pt(2, 2), Cols: 1, Rows: 2, Width: 1, Params: red},
			figure.Grid{Size: geom.Pt(8, 8), Cols: 5, Rows: 2, Width: 1, Params: blue}},
		{"poly",
			figure.Poly{Points: []geom.Point{geom.Pt(0, 0), geom.Pt(1, 0)}, Width: 1, Params: red},
			figure.Poly{Points: []geom.Point{geom.Pt(0, 4), geom.Pt(4, 4)}, Width: 1, Params: blue}},
		{"text",
			figure.Text{Center: geom.Pt(0, 0), Text: "abc", Font: 10, Params: red},
			figure.Text{Center: geom.Pt(4, 4), Text: "xyzxyz", Font: 20, Params: blue}},
	}
	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			got0, ok := Interpolate(tt.a, tt.b, 0)
			if !ok {
				t.Fatal("Interpolate reported mismatch")
			}
			if diff := cmp.Diff(tt.a, got0); diff != "" {
				t.Errorf("k=0 (-a +got):\n%s", diff)
			}
			got1, _ := Interpolate(tt.a, tt.b, 1)
			// Цвет и геометрия берутся из b, дискретные поля из a.
			want := tt.b
			if diff := cmp.Diff(want, got1); diff != "" {
				t.Errorf("k=1 (-b +got):\n%s", diff)
			}
		})
	}
}

func TestInterpolateMidpoint(t *testing.T) {
	a := figure.Rect{Center: geom.Pt(0, 0), Size: geom.Pt(2, 2), Width: 1, Fill: true,
		Params: figure.CommonParams{Color: figure.Color{A: 0}, Tags: []string{"t"}}}
	b := figure.Rect{Center: geom.Pt(10, 4), Size: geom.Pt(4, 6), Width: 3,
		Params: figure.CommonParams{Color: figure.Color{R: 200, A: 255}}}
	got, ok := Interpolate(a, b, 0.5)
	if !ok {
		t.Fatal("mismatch")
	}
	want := figure.Rect{Center: geom.Pt(5, 2), Size: geom.Pt(3, 4), Width: 2, Fill: true,
		Params: figure.CommonParams{Color: figure.Color{R: 100, A: 128}, Tags: []string{"t"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	g, _ := Interpolate(
		figure.Grid{Cols: 1, Rows: 1},
		figure.Grid{Cols: 4, Rows: 2}, 0.5)
	if gr := g.(figure.Grid); gr.Cols != 3 || gr.Rows != 2 {
		t.Errorf("grid dims = %dx%d, want rounded 3x2", gr.Cols, gr.Rows)
	}
}

func TestInterpolateText(t *testing.T) {
	a := figure.Text{Text: "|||||||||||||||"}
	b := figure.Text{Text: ""}
	curve := Linear(16)
	out := InBetweens(a, b, curve)
	if len(out) != 15 {
		t.Fatalf("got %d in-betweens, want 15", len(out))
	}
	for i, f := range out {
		want := 15 - (i + 1)
		if n := len(f.(figure.Text).Text); math.Abs(float64(n-want)) > 1 {
			t.Errorf("in-between %d has %d runes, want about %d", i, n, want)
		}
	}
}

func TestInterpolateMismatch(t *testing.T) {
	tests := []struct {
		name string
		a, b figure.Figure
	}{
		{"kinds", figure.Rect{}, figure.Circle{}},
		{"poly sizes", figure.Poly{Points: make([]geom.Point, 2)}, figure.Poly{Points: make([]geom.Point, 3)}},
		{"messages", figure.Message{Text: "a"}, figure.Message{Text: "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InBetweens(tt.a, tt.b, []float64{0.25, 0.5, 0.75}); len(got) != 0 {
				t.Errorf("InBetweens = %v, want none", got)
			}
		})
	}
}

func TestCurves(t *testing.T) {
	approx := cmpopts.EquateApprox(0, 1e-9)
	if diff := cmp.Diff([]float64{0.25, 0.5, 0.75}, Linear(4), approx); diff != "" {
		t.Errorf("Linear(4):\n%s", diff)
	}
	if got := Linear(1); len(got) != 0 {
		t.Errorf("Linear(1) = %v, want empty", got)
	}
	q, ok := Easing("inOutQuad", 2)
	if !ok || len(q) != 1 || math.Abs(q[0]-0.5) > 1e-9 {
		t.Errorf("Easing(inOutQuad, 2) = %v, %v", q, ok)
	}
	if _, ok := Easing("nope", 4); ok {
		t.Errorf("unknown easing found")
	}
	if diff := cmp.Diff([]float64{0.1, 1, 1}, Fit([]float64{0.1}, 3)); diff != "" {
		t.Errorf("Fit pads:\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0.1}, Fit([]float64{0.1, 0.2}, 1)); diff != "" {
		t.Errorf("Fit truncates:\n%s", diff)
	}
	if names := EasingNames(); names[0] != "inCubic" {
		t.Errorf("EasingNames not sorted: %v", names)
	}
}

func TestMatch(t *testing.T) {
	a := []figure.Figure{
		figure.Rect{Params: withID(1)},
		figure.Circle{Params: withID(2)},
		figure.Line{Params: figure.DefaultCommon()},
		figure.Rect{Params: withID(1)},
		figure.Rect{Params: withID(3)},
	}
	b := []figure.Figure{
		figure.Rect{Params: withID(3)},
		figure.Rect{Params: withID(2)},
		figure.Line{Params: figure.DefaultCommon()},
		figure.Rect{Params: withID(1)},
		figure.Rect{Params: withID(9)},
	}
	want := []Pair{{A: 4, B: 0}, {A: 0, B: 3}}
	if diff := cmp.Diff(want, Match(a, b)); diff != "" {
		t.Errorf("Match (-want +got):\n%s", diff)
	}
}
