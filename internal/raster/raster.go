// Package raster converts exported SVG frames to PNG. External tools are
// run per call under the caller's context, so a deadline on ctx kills a
// hung converter.
package raster

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ivlev/rviewer/internal/config"
)

var ErrUnknownTool = errors.New("unknown conversion tool")

// Rasterizer renders svgPath into pngPath at the given pixel width.
type Rasterizer interface {
	Rasterize(ctx context.Context, svgPath, pngPath string, width int) error
}

const (
	ToolRsvg     = "rsvg-convert"
	ToolInkscape = "inkscape"
	ToolFitz     = "fitz"
)

// New returns the rasterizer named by settings.ConversionTool.
func New(s config.Settings) (Rasterizer, error) {
	switch s.ConversionTool {
	case ToolRsvg, "":
		return &RsvgConvert{Path: s.RsvgPath}, nil
	case ToolInkscape:
		return &Inkscape{Path: s.InkscapePath}, nil
	case ToolFitz:
		return &Fitz{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTool, s.ConversionTool)
}

type RsvgConvert struct {
	Path string
}

func (r *RsvgConvert) Args(svgPath, pngPath string, width int) []string {
	return []string{svgPath, "-o", pngPath, "-w", strconv.Itoa(width)}
}

func (r *RsvgConvert) Rasterize(ctx context.Context, svgPath, pngPath string, width int) error {
	return run(ctx, orDefault(r.Path, ToolRsvg), r.Args(svgPath, pngPath, width))
}

type Inkscape struct {
	Path string
}

func (i *Inkscape) Args(svgPath, pngPath string, width int) []string {
	return []string{"-o", pngPath, "-w", strconv.Itoa(width), svgPath}
}

func (i *Inkscape) Rasterize(ctx context.Context, svgPath, pngPath string, width int) error {
	return run(ctx, orDefault(i.Path, ToolInkscape), i.Args(svgPath, pngPath, width))
}

func orDefault(path, def string) string {
	if path == "" {
		return def
	}
	return path
}

func run(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("%s error: %w, output: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}
