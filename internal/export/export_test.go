package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ivlev/rviewer/internal/config"
	"github.com/ivlev/rviewer/internal/scene"
	"github.com/ivlev/rviewer/internal/svg"
	"github.com/ivlev/rviewer/internal/system"
	"github.com/ivlev/rviewer/internal/video"
)

// hangingRasterizer никогда не завершается сам, только по таймауту.
type hangingRasterizer struct {
	calls atomic.Int64
}

func (r *hangingRasterizer) Rasterize(ctx context.Context, svgPath, pngPath string, width int) error {
	r.calls.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

// copyRasterizer "растеризует", копируя svg в png.
type copyRasterizer struct {
	mu     sync.Mutex
	widths []int
}

func (r *copyRasterizer) Rasterize(ctx context.Context, svgPath, pngPath string, width int) error {
	data, err := os.ReadFile(svgPath)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.widths = append(r.widths, width)
	r.mu.Unlock()
	return os.WriteFile(pngPath, data, 0644)
}

type failingRasterizer struct{}

func (failingRasterizer) Rasterize(context.Context, string, string, int) error {
	return errors.New("broken svg")
}

type fakeEncoder struct {
	calls []video.Params
	err   error
}

func (e *fakeEncoder) Assemble(ctx context.Context, p video.Params) error {
	e.calls = append(e.calls, p)
	return e.err
}

func loadScene(t *testing.T, input string) *scene.Scene {
	t.Helper()
	s := scene.New()
	if _, err := s.Ingest(context.Background(), strings.NewReader(input), nil); err != nil {
		t.Fatal(err)
	}
	return s
}

func newExporter(t *testing.T, s *scene.Scene) (*Exporter, *fakeEncoder) {
	t.Helper()
	dir := t.TempDir()
	settings := config.DefaultSettings()
	settings.FramesDir = filepath.Join(dir, "frames")
	settings.VideoOutput = filepath.Join(dir, "video.mp4")
	settings.BaseTimeout = 10 * time.Millisecond
	enc := &fakeEncoder{}
	var out bytes.Buffer
	return &Exporter{
		Scene:      s,
		Settings:   settings,
		Rasterizer: &copyRasterizer{},
		Encoder:    enc,
		Codec:      "libx264",
		Background: svg.Background,
		Progress: func(label string, total int) *system.Progress {
			return system.NewProgressWriter(&out, label, total)
		},
	}, enc
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

const threeFrames = "size (10,10)\nrect c=(5,5) s=(2,2)\ntick\nrect\ntick\ncircle\ntick\nline\n"

func TestAlwaysTimingOutBatch(t *testing.T) {
	logs := captureLog(t)
	s := loadScene(t, "rect\ntick\ncircle\ntick\nline\ntick\n")
	if n := s.FrameCount(); n != 3 {
		t.Fatalf("%d frames, want 3", n)
	}
	e, enc := newExporter(t, s)
	r := &hangingRasterizer{}
	e.Rasterizer = r
	if err := os.WriteFile(e.Settings.VideoOutput, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	rep, err := e.ExportVideo(context.Background())
	if !errors.Is(err, ErrNoFrames) {
		t.Errorf("ExportVideo err = %v, want ErrNoFrames", err)
	}
	if diff := cmp.Diff(Report{Total: 3, Failed: []int{0, 1, 2}}, rep); diff != "" {
		t.Errorf("report (-want +got):\n%s", diff)
	}
	if got := r.calls.Load(); got != 9 {
		t.Errorf("%d attempts, want 3 per frame", got)
	}
	if got := strings.Count(logs.String(), "не сохранен"); got != 3 {
		t.Errorf("%d failures logged, want 3:\n%s", got, logs)
	}
	if len(enc.calls) != 0 {
		t.Errorf("encoder ran without frames")
	}
	if _, err := os.Stat(e.Settings.VideoOutput); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stale video left after failed batch: %v", err)
	}
	entries, _ := os.ReadDir(e.Settings.FramesDir)
	if len(entries) != 0 {
		t.Errorf("frames dir not empty: %v", entries)
	}
}

func TestRetryTimeoutsGrow(t *testing.T) {
	captureLog(t)
	s := loadScene(t, "rect\n")
	e, _ := newExporter(t, s)
	var deadlines []time.Duration
	var mu sync.Mutex
	e.Rasterizer = rasterFunc(func(ctx context.Context) error {
		d, _ := ctx.Deadline()
		mu.Lock()
		deadlines = append(deadlines, time.Until(d).Round(10*time.Millisecond))
		mu.Unlock()
		<-ctx.Done()
		return ctx.Err()
	})
	err := e.convert(context.Background(), 0, "in.svg", "out.png")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond}
	if diff := cmp.Diff(want, deadlines); diff != "" {
		t.Errorf("timeouts (-want +got):\n%s", diff)
	}
}

type rasterFunc func(ctx context.Context) error

func (f rasterFunc) Rasterize(ctx context.Context, _, _ string, _ int) error { return f(ctx) }

func TestNonTimeoutFailureIsNotRetried(t *testing.T) {
	captureLog(t)
	s := loadScene(t, "rect\n")
	e, _ := newExporter(t, s)
	calls := 0
	e.Rasterizer = rasterFunc(func(context.Context) error {
		calls++
		return errors.New("broken svg")
	})
	if err := e.convert(context.Background(), 0, "a", "b"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("%d calls, want 1", calls)
	}

	e.Rasterizer = failingRasterizer{}
	rep, err := e.SaveAllPNG(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Failed) != 1 || rep.Saved != 0 {
		t.Errorf("report = %+v", rep)
	}
}

func TestExportVideo(t *testing.T) {
	s := loadScene(t, "speed 25\n"+threeFrames)
	e, enc := newExporter(t, s)
	raster := &copyRasterizer{}
	e.Rasterizer = raster
	e.Settings.MaxThreads = 2

	if err := os.WriteFile(e.Settings.VideoOutput, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	rep, err := e.ExportVideo(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rep.Saved != 3 || len(rep.Failed) != 0 {
		t.Errorf("report = %+v", rep)
	}
	for _, w := range raster.widths {
		if w != 1080 {
			t.Errorf("rasterized at width %d", w)
		}
	}
	for i := 1; i <= 3; i++ {
		if _, err := os.Stat(filepath.Join(e.Settings.FramesDir, fmt.Sprintf("%05d.png", i))); err != nil {
			t.Errorf("frame %d missing: %v", i, err)
		}
	}
	tmps, _ := filepath.Glob(filepath.Join(e.Settings.FramesDir, "_tmp_frame_*"))
	if len(tmps) != 0 {
		t.Errorf("temporary svgs left: %v", tmps)
	}
	if _, err := os.Stat(e.Settings.VideoOutput); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("old video was not removed")
	}

	want := []video.Params{{
		FPS:     25,
		Pattern: filepath.Join(e.Settings.FramesDir, "%05d.png"),
		Output:  e.Settings.VideoOutput,
		Codec:   "libx264",
	}}
	if diff := cmp.Diff(want, enc.calls, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("encoder calls (-want +got):\n%s", diff)
	}
}

func TestEncoderFailure(t *testing.T) {
	s := loadScene(t, "rect\n")
	e, enc := newExporter(t, s)
	enc.err = errors.New("ffmpeg missing")
	if _, err := e.SaveAllPNG(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := e.MakeVideo(context.Background()); err == nil || !strings.Contains(err.Error(), "ffmpeg missing") {
		t.Errorf("err = %v", err)
	}
}

func TestSaveAllSVG(t *testing.T) {
	s := loadScene(t, threeFrames)
	e, _ := newExporter(t, s)
	if err := e.SaveAllSVG(context.Background()); err != nil {
		t.Fatal(err)
	}
	svgs, _ := filepath.Glob(filepath.Join(e.Settings.FramesDir, "*.svg"))
	if len(svgs) != 3 {
		t.Errorf("%d svgs, want 3", len(svgs))
	}
	data, err := os.ReadFile(filepath.Join(e.Settings.FramesDir, "00001.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `<rect x="4" y="4" width="2" height="2"`) {
		t.Errorf("first frame lacks the baseline rect:\n%s", data)
	}
}

func TestSaveFrameSVGYAxis(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"flipy off", "size (10,10)\nrect c=(5,1) s=(2,2) f\n", `<rect x="4" y="0" width="2" height="2"`},
		{"flipy on", "size (10,10)\nflipy\nrect c=(5,1) s=(2,2) f\n", `<rect x="4" y="8" width="2" height="2"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newExporter(t, loadScene(t, tt.input))
			path := filepath.Join(t.TempDir(), "frame.svg")
			if err := e.SaveFrameSVG(0, path); err != nil {
				t.Fatal(err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("frame lacks %s:\n%s", tt.want, data)
			}
		})
	}
}

func TestSingleFrames(t *testing.T) {
	s := loadScene(t, threeFrames)
	e, _ := newExporter(t, s)
	dir := t.TempDir()

	if err := e.SaveFrameSVG(7, filepath.Join(dir, "x.svg")); err == nil {
		t.Errorf("out-of-range frame exported")
	}
	png := filepath.Join(dir, "one.png")
	if err := e.SaveFramePNG(context.Background(), 1, png); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(png); err != nil {
		t.Errorf("png missing: %v", err)
	}
	if tmps, _ := filepath.Glob(filepath.Join(dir, "*.svg")); len(tmps) != 0 {
		t.Errorf("temporary svg left: %v", tmps)
	}
}

func TestNotFinished(t *testing.T) {
	e, _ := newExporter(t, scene.New())
	if err := e.SaveAllSVG(context.Background()); !errors.Is(err, ErrNotFinished) {
		t.Errorf("SaveAllSVG err = %v", err)
	}
	if _, err := e.SaveAllPNG(context.Background()); !errors.Is(err, ErrNotFinished) {
		t.Errorf("SaveAllPNG err = %v", err)
	}
}

func TestNew(t *testing.T) {
	settings := config.DefaultSettings()
	settings.ConversionTool = "fitz"
	e, err := New(scene.New(), settings)
	if err != nil {
		t.Fatal(err)
	}
	if e.Codec != "libx264" || e.Background != svg.Background {
		t.Errorf("exporter = %+v", e)
	}
	settings.ConversionTool = "paint"
	if _, err := New(scene.New(), settings); err == nil {
		t.Errorf("unknown tool accepted")
	}
}
