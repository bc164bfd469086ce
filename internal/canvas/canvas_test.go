package canvas

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/rviewer/internal/geom"
	"github.com/ivlev/rviewer/internal/scene"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func buildScene(t *testing.T, input string) *scene.Scene {
	t.Helper()
	s := scene.New()
	if _, err := s.Ingest(context.Background(), strings.NewReader(input), nil); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSnapshotPaintsFigures(t *testing.T) {
	r := newRenderer(t)
	s := buildScene(t, strings.Join([]string{
		"size (10,10)",
		"rect c=(5,5) s=(4,4) f col=(255,0,0)",
		"msg hello",
	}, "\n"))

	view := geom.FitView(s.Size(), 100, 100)
	img := r.Snapshot(s, 0, view)
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Fatalf("bounds = %v", b)
	}

	cr, cg, _, _ := img.At(50, 50).RGBA()
	if cr>>8 < 200 || cg>>8 > 60 {
		t.Errorf("centre pixel not red: %v", img.At(50, 50))
	}
	br, bg, bb, _ := img.At(98, 98).RGBA()
	if br>>8 != 41 || bg>>8 != 41 || bb>>8 != 41 {
		t.Errorf("corner pixel not background: %v", img.At(98, 98))
	}
}

func TestHiddenTagsAreNotDrawn(t *testing.T) {
	r := newRenderer(t)
	s := buildScene(t, "disable hidden\nrect c=(5,5) s=(4,4) f col=(255,0,0) t=hidden\n")
	img := r.Snapshot(s, 0, geom.FitView(s.Size(), 100, 100))
	cr, _, _, _ := img.At(50, 50).RGBA()
	if cr>>8 != 41 {
		t.Errorf("disabled figure drawn: %v", img.At(50, 50))
	}
}

func TestWritePNG(t *testing.T) {
	r := newRenderer(t)
	s := buildScene(t, "circle c=(5,5) r=3 arc=(0,3.14)\ntext c=(5,5) m=ab\ngrid c=(5,5) s=(8,8) d=(2,2)\npoly p=(1,1) p=(2,2) p=(1,3) f\n")
	var buf bytes.Buffer
	if err := r.WritePNG(&buf, s, 0, geom.FitView(s.Size(), 64, 48)); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("bounds = %v", b)
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := r.SavePNG(path, s, 0, geom.FitView(s.Size(), 32, 32)); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("png not written: %v", err)
	}
}
