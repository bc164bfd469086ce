// Package canvas rasterizes frames in-process with gg. It backs the
// player preview and shares its geometry with the SVG export through
// figure.Resolve.
package canvas

import (
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ivlev/rviewer/internal/figure"
	"github.com/ivlev/rviewer/internal/geom"
	"github.com/ivlev/rviewer/internal/scene"
	"github.com/ivlev/rviewer/internal/svg"
)

// Renderer holds the font sources shared by every frame.
type Renderer struct {
	regular *text.FontSource
	mono    *text.FontSource
	// MinStroke keeps hairlines visible when zoomed out.
	MinStroke float64
}

// New loads the figure font from fontPath, or the built-in Go font when
// fontPath is empty.
func New(fontPath string) (*Renderer, error) {
	var (
		regular *text.FontSource
		err     error
	)
	if fontPath != "" {
		regular, err = text.NewFontSourceFromFile(fontPath)
	} else {
		regular, err = text.NewFontSource(goregular.TTF)
	}
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	mono, err := text.NewFontSource(gomono.TTF)
	if err != nil {
		regular.Close()
		return nil, fmt.Errorf("load mono font: %w", err)
	}
	return &Renderer{regular: regular, mono: mono, MinStroke: 1}, nil
}

func (r *Renderer) Close() error {
	r.mono.Close()
	return r.regular.Close()
}

// Draw paints one resolved figure.
func (r *Renderer) Draw(dc *gg.Context, l figure.Layout) {
	dc.SetRGBA(l.Color.Floats())
	dc.SetLineWidth(max(l.Stroke, r.MinStroke))

	switch l.Kind {
	case figure.KindRect:
		dc.DrawRectangle(l.Box.Min.X, l.Box.Min.Y, l.Box.Dx(), l.Box.Dy())
		r.finish(dc, l.Fill)
	case figure.KindCircle:
		if l.Arc == nil {
			dc.DrawCircle(l.Center.X, l.Center.Y, l.Radius)
			r.finish(dc, l.Fill)
			return
		}
		from := l.Arc.From
		to := from + l.Arc.Delta()
		if l.Fill {
			// Сектор: центр, дуга, обратно в центр
			dc.MoveTo(l.Center.X, l.Center.Y)
			start, _ := l.Arc.Ends(l.Center, l.Radius)
			dc.LineTo(start.X, start.Y)
			dc.DrawArc(l.Center.X, l.Center.Y, l.Radius, from, to)
			dc.ClosePath()
		} else {
			dc.NewSubPath()
			dc.DrawArc(l.Center.X, l.Center.Y, l.Radius, from, to)
		}
		r.finish(dc, l.Fill)
	case figure.KindLine, figure.KindGrid:
		for _, s := range l.Segments {
			dc.MoveTo(s.A.X, s.A.Y)
			dc.LineTo(s.B.X, s.B.Y)
		}
		r.finish(dc, false)
	case figure.KindPoly:
		if len(l.Points) == 0 {
			return
		}
		dc.MoveTo(l.Points[0].X, l.Points[0].Y)
		for _, p := range l.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		if l.Fill {
			dc.ClosePath()
		}
		r.finish(dc, l.Fill)
	case figure.KindText, figure.KindMessage:
		r.drawText(dc, l.Text)
	}
}

func (r *Renderer) finish(dc *gg.Context, fill bool) {
	if fill {
		_ = dc.Fill()
		return
	}
	_ = dc.Stroke()
}

func (r *Renderer) drawText(dc *gg.Context, tl *figure.TextLayout) {
	if tl == nil || tl.Size <= 0 {
		return
	}
	src := r.regular
	if tl.Monospace {
		src = r.mono
	}
	dc.SetFont(src.Face(tl.Size))
	for i, line := range tl.Lines {
		dc.DrawStringAnchored(line, tl.X, tl.Baselines[i], tl.Anchor.Anchor(), 0)
	}
}

// RenderFrame draws frame i of s into a new width×height context. The
// caller owns the context and must Close it.
func (r *Renderer) RenderFrame(s *scene.Scene, i int, view geom.View) *gg.Context {
	dc := gg.NewContext(int(view.Width), int(view.Height))
	bg := svg.Background
	dc.ClearWithColor(gg.RGBA2(bg.Floats()))

	t := s.ScreenTransform(view)
	for _, f := range s.VisibleObjects(i) {
		r.Draw(dc, figure.Resolve(f, t))
	}
	return dc
}

// Snapshot renders frame i and returns the image.
func (r *Renderer) Snapshot(s *scene.Scene, i int, view geom.View) image.Image {
	dc := r.RenderFrame(s, i, view)
	defer dc.Close()
	_ = dc.FlushGPU()
	return dc.Image()
}

// WritePNG renders frame i as PNG into w.
func (r *Renderer) WritePNG(w io.Writer, s *scene.Scene, i int, view geom.View) error {
	dc := r.RenderFrame(s, i, view)
	defer dc.Close()
	return dc.EncodePNG(w)
}

// SavePNG renders frame i as PNG to path.
func (r *Renderer) SavePNG(path string, s *scene.Scene, i int, view geom.View) error {
	dc := r.RenderFrame(s, i, view)
	defer dc.Close()
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save png %s: %w", path, err)
	}
	return nil
}
