// Package svg renders frames as SVG documents. Geometry comes from
// figure.Resolve, shared with the canvas; only the transform differs.
package svg

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ivlev/rviewer/internal/figure"
	"github.com/ivlev/rviewer/internal/geom"
)

// Background of exported frames, rgb(41, 41, 41).
var Background = figure.Color{R: 41, G: 41, B: 41, A: 255}

const fontFamily = "system-ui"

type Params struct {
	// Size of the document in scene units; also its pixel size.
	Size geom.Point
	// WidthScale multiplies every stroke width.
	WidthScale float64
	Background figure.Color
}

type Document struct {
	params Params
	body   strings.Builder
}

// New starts a document with a full-bleed background.
func New(p Params) *Document {
	d := &Document{params: p}
	fmt.Fprintf(&d.body, `<rect x="0" y="0" width="%s" height="%s" fill="%s"/>`+"\n",
		num(p.Size.X), num(p.Size.Y), p.Background.CSS())
	return d
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (d *Document) paint(l figure.Layout) string {
	op := num(l.Color.Opacity())
	if l.Fill {
		return fmt.Sprintf(`fill="%s" opacity="%s"`, l.Color.CSS(), op)
	}
	return fmt.Sprintf(`fill="none" stroke="%s" stroke-width="%s" opacity="%s"`,
		l.Color.CSS(), num(l.Stroke*d.params.WidthScale), op)
}

// Add exports one figure under t. Messages are screen-only and add
// nothing.
func (d *Document) Add(f figure.Figure, t geom.Transform) {
	l := figure.Resolve(f, t)
	b := &d.body
	switch l.Kind {
	case figure.KindRect:
		fmt.Fprintf(b, `<rect x="%s" y="%s" width="%s" height="%s" %s/>`+"\n",
			num(l.Box.Min.X), num(l.Box.Min.Y), num(l.Box.Dx()), num(l.Box.Dy()), d.paint(l))
	case figure.KindCircle:
		if l.Arc == nil {
			fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%s" %s/>`+"\n",
				num(l.Center.X), num(l.Center.Y), num(l.Radius), d.paint(l))
			return
		}
		fmt.Fprintf(b, `<path d="%s" %s/>`+"\n", arcPath(l), d.paint(l))
	case figure.KindLine, figure.KindGrid:
		var p strings.Builder
		for _, s := range l.Segments {
			fmt.Fprintf(&p, "M%s %s L%s %s ", num(s.A.X), num(s.A.Y), num(s.B.X), num(s.B.Y))
		}
		l.Fill = false
		fmt.Fprintf(b, `<path d="%s" %s/>`+"\n", strings.TrimSpace(p.String()), d.paint(l))
	case figure.KindPoly:
		pts := make([]string, len(l.Points))
		for i, p := range l.Points {
			pts[i] = num(p.X) + "," + num(p.Y)
		}
		el := "polyline"
		if l.Fill {
			el = "polygon"
		}
		fmt.Fprintf(b, `<%s points="%s" %s/>`+"\n", el, strings.Join(pts, " "), d.paint(l))
	case figure.KindText:
		tl := l.Text
		for i, line := range tl.Lines {
			fmt.Fprintf(b, `<text x="%s" y="%s" font-size="%s" text-anchor="%s" font-family="%s" fill="%s" opacity="%s">`,
				num(tl.X), num(tl.Baselines[i]), num(tl.Size), tl.Anchor.TextAnchor(), fontFamily,
				l.Color.CSS(), num(l.Color.Opacity()))
			xml.EscapeText(b, []byte(line))
			b.WriteString("</text>\n")
		}
	}
}

// arcPath is a stroked arc, or a closed wedge when filled.
func arcPath(l figure.Layout) string {
	start, end := l.Arc.Ends(l.Center, l.Radius)
	large := 0
	if l.Arc.LargeArc() {
		large = 1
	}
	r := num(l.Radius)
	arc := fmt.Sprintf("A%s %s 0 %d 1 %s %s", r, r, large, num(end.X), num(end.Y))
	if l.Fill {
		return fmt.Sprintf("M%s %s L%s %s %s Z", num(l.Center.X), num(l.Center.Y), num(start.X), num(start.Y), arc)
	}
	return fmt.Sprintf("M%s %s %s", num(start.X), num(start.Y), arc)
}

func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var head strings.Builder
	fmt.Fprintf(&head, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		num(d.params.Size.X), num(d.params.Size.Y), num(d.params.Size.X), num(d.params.Size.Y))
	n, err := io.WriteString(w, head.String()+d.body.String()+"</svg>\n")
	return int64(n), err
}

func (d *Document) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := d.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write svg %s: %w", path, err)
	}
	return f.Close()
}
