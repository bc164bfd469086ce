package raster

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/gen2brain/go-fitz"
	"golang.org/x/image/draw"

	"github.com/ivlev/rviewer/internal/system"
)

// Fitz rasterizes in-process with MuPDF. The document is opened per call
// because a fitz.Document is not safe for concurrent use.
type Fitz struct{}

func (f *Fitz) Rasterize(ctx context.Context, svgPath, pngPath string, width int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := fitz.New(svgPath)
	if err != nil {
		return fmt.Errorf("fitz open %s: %w", svgPath, err)
	}
	defer doc.Close()

	bound, err := doc.Bound(0)
	if err != nil {
		return fmt.Errorf("fitz bound: %w", err)
	}
	if bound.Dx() <= 0 || bound.Dy() <= 0 {
		return fmt.Errorf("fitz: empty page %v", bound)
	}
	// 72 DPI соответствует единице SVG на пиксель
	dpi := 72 * float64(width) / float64(bound.Dx())
	src, err := doc.ImageDPI(0, dpi)
	if err != nil {
		return fmt.Errorf("fitz render: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	img := image.Image(src)
	if src.Bounds().Dx() != width {
		h := max(1, width*src.Bounds().Dy()/src.Bounds().Dx())
		dst := system.GetImage(image.Pt(width, h))
		defer system.PutImage(dst)
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		img = dst
	}
	return writePNG(pngPath, img)
}

func writePNG(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("encode png %s: %w", path, err)
	}
	return out.Close()
}
