package protocol

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ivlev/rviewer/internal/figure"
	"github.com/ivlev/rviewer/internal/geom"
)

var defaults = Defaults{Width: 1, Font: 1}

func common(c figure.Color, tags ...string) figure.CommonParams {
	p := figure.DefaultCommon()
	p.Color = c
	p.Tags = tags
	return p
}

func TestDecodeDefaults(t *testing.T) {
	tests := []struct {
		line string
		want figure.Figure
	}{
		{"rect", figure.Rect{Width: 2, Params: figure.DefaultCommon()}},
		{"circle c=(1,2)", figure.Circle{Center: geom.Pt(1, 2), Radius: 1, Width: 2, Params: figure.DefaultCommon()}},
		{"grid", figure.Grid{Cols: 1, Rows: 1, Width: 2, Params: figure.DefaultCommon()}},
		{"text m=hi", figure.Text{Text: "hi", Font: 7, Params: figure.DefaultCommon()}},
	}
	d := Defaults{Width: 2, Font: 7}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Decode(tt.line, d)
			if err != nil {
				t.Fatalf("Decode(%q): %v", tt.line, err)
			}
			if diff := cmp.Diff(tt.want, got.Figure, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Decode(%q) (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestDecodeFields(t *testing.T) {
	red := figure.Color{R: 255, A: 255}
	tests := []struct {
		line string
		want figure.Figure
	}{
		{
			"rect c=(1,2) s=(3,4) w=0.5 f=1 a=BE col=(255,0,0) t=a t=b id=7 fu=ease",
			figure.Rect{
				Center: geom.Pt(1, 2), Size: geom.Pt(3, 4), Width: 0.5, Fill: true,
				Align: geom.Alignment{H: geom.Begin, V: geom.End},
				Params: figure.CommonParams{
					Color: red, Tags: []string{"a", "b"}, ID: 7, HasID: true, Curve: "ease",
				},
			},
		},
		{
			"line s=(0,0) f=(10,5) col=#ff0000 k",
			figure.Line{Finish: geom.Pt(10, 5), Width: 1, Params: figure.CommonParams{Color: red, Keep: true}},
		},
		{
			"poly p=(0,0) p=(1,0) p=(1,1) f col=(0,0,255,128)",
			figure.Poly{
				Points: []geom.Point{geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(1, 1)},
				Width:  1, Fill: true,
				Params: common(figure.Color{B: 255, A: 128}),
			},
		},
		{
			`text m="hello world;second" c=(5,5) s=12 a=EC`,
			figure.Text{
				Center: geom.Pt(5, 5), Text: "hello world\nsecond", Font: 12,
				Align:  geom.Alignment{H: geom.End, V: geom.Center},
				Params: figure.DefaultCommon(),
			},
		},
		{
			"grid c=(0,0) s=(10,10) d=(5,2) a=BB",
			figure.Grid{
				Size: geom.Pt(10, 10), Cols: 5, Rows: 2, Width: 1,
				Align:  geom.Alignment{H: geom.Begin, V: geom.Begin},
				Params: figure.DefaultCommon(),
			},
		},
		{
			"msg step 3 done",
			figure.Message{Text: "step 3 done", Index: 2},
		},
	}
	d := defaults
	d.MessageIndex = 2
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Decode(tt.line, d)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if diff := cmp.Diff(tt.want, got.Figure, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeArcIsNormalized(t *testing.T) {
	got, err := Decode("circle r=2 arc=(0,4.71238898038469)", defaults)
	if err != nil {
		t.Fatal(err)
	}
	c := got.Figure.(figure.Circle)
	if c.Arc == nil || math.Abs(c.Arc.To+math.Pi/2) > 1e-9 {
		t.Errorf("arc = %+v, want To = -π/2", c.Arc)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		line  string
		field string
	}{
		{"rect c=(1,x)", "c"},
		{"rect c=1,2", "c"},
		{"circle r=big", "r"},
		{"rect col=(300,0,0)", "col"},
		{"rect f=2", "f"},
		{"rect a=CX", "a"},
		{"grid d=(-1,2)", "d"},
		{"poly p=(0,0) p=(1)", "p"},
		{"rect id=seven", "id"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := Decode(tt.line, defaults)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Decode(%q) error = %v, want *ParseError", tt.line, err)
			}
			if pe.Field != tt.field {
				t.Errorf("Field = %q, want %q", pe.Field, tt.field)
			}
			if pe.Line != tt.line {
				t.Errorf("Line = %q, want %q", pe.Line, tt.line)
			}
		})
	}

	_, err := Decode("hexagon c=(0,0)", defaults)
	if !errors.Is(err, ErrUnknownKeyword) {
		t.Errorf("unknown keyword error = %v", err)
	}
	_, err = Decode(`text m="open`, defaults)
	if !errors.Is(err, ErrUnterminated) {
		t.Errorf("unterminated quote error = %v", err)
	}
}

func TestDecodeDirectives(t *testing.T) {
	tests := []struct {
		line string
		want Directive
	}{
		{"tick", Directive{Kind: Tick}},
		{"speed 30", Directive{Kind: Speed, Value: 30}},
		{"width 2.5", Directive{Kind: Width, Value: 2.5}},
		{"font 14", Directive{Kind: Font, Value: 14}},
		{"size (100,50)", Directive{Kind: Size, Point: geom.Pt(100, 50)}},
		{"size=(30,30)", Directive{Kind: Size, Point: geom.Pt(30, 30)}},
		{"svgwidth 0.5", Directive{Kind: SVGWidth, Value: 0.5}},
		{"disable grid", Directive{Kind: Disable, Name: "grid"}},
		{"setfunc slow 0.1 0.2 0.9", Directive{Kind: SetFunc, Name: "slow", Curve: []float64{0.1, 0.2, 0.9}}},
		{"in_betweens=60", Directive{Kind: InBetweens, Count: 60}},
		{"flipy", Directive{Kind: FlipY, Flag: true}},
		{"flipy 0", Directive{Kind: FlipY, Flag: false}},
		{"shift (1,-2)", Directive{Kind: Shift, Point: geom.Pt(1, -2)}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Decode(tt.line, defaults)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got.Directive == nil {
				t.Fatalf("not a directive: %+v", got)
			}
			if diff := cmp.Diff(tt.want, *got.Directive, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}

	for _, bad := range []string{"speed 0", "speed fast", "size 10", "disable", "in_betweens 0", "setfunc x 0.1 y", "flipy 2"} {
		if _, err := Decode(bad, defaults); err == nil {
			t.Errorf("Decode(%q) succeeded", bad)
		}
	}
}

func TestBlankLine(t *testing.T) {
	got, err := Decode("   ", defaults)
	if !errors.Is(err, ErrBlankLine) || got.Figure != nil || got.Directive != nil {
		t.Errorf("blank line = %+v, %v", got, err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	arc := geom.Arc{From: -1, To: 2}
	withID := figure.CommonParams{Color: figure.Color{R: 1, G: 2, B: 3, A: 4}, Tags: []string{"x", "y"}, Keep: true, ID: -3, HasID: true, Curve: "inOutQuad"}
	figs := []figure.Figure{
		figure.Rect{Center: geom.Pt(1.25, -3), Size: geom.Pt(4, 5), Width: 0.3, Fill: true, Align: geom.Alignment{H: geom.End, V: geom.Begin}, Params: withID},
		figure.Circle{Center: geom.Pt(0, 0), Radius: 3.5, Width: 2, Arc: &arc, Params: figure.DefaultCommon()},
		figure.Circle{Center: geom.Pt(7, 7), Radius: 1, Width: 1, Fill: true, Params: withID},
		figure.Line{Start: geom.Pt(1, 2), Finish: geom.Pt(3, 4), Width: 0.1, Params: withID},
		figure.Grid{Center: geom.Pt(5, 5), Size: geom.Pt(10, 10), Cols: 3, Rows: 4, Width: 1, Params: withID},
		figure.Poly{Points: []geom.Point{geom.Pt(0, 0), geom.Pt(1e-3, 1e6)}, Width: 1, Params: withID},
		figure.Text{Center: geom.Pt(2, 2), Text: "two words\nand a line", Font: 11, Params: withID},
		figure.Message{Text: "hello there", Index: 0},
	}
	for _, f := range figs {
		t.Run(f.Kind().String(), func(t *testing.T) {
			line := Encode(f)
			got, err := Decode(line, Defaults{Width: 99, Font: 99})
			if err != nil {
				t.Fatalf("Decode(%q): %v", line, err)
			}
			if diff := cmp.Diff(f, got.Figure, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip of %q (-want +got):\n%s", line, diff)
			}
		})
	}
}
