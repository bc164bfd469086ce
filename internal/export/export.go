// Package export writes a finished timeline to disk: single frames and
// whole batches as SVG or PNG, and the PNG batch assembled into a video.
package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/rviewer/internal/config"
	"github.com/ivlev/rviewer/internal/figure"
	"github.com/ivlev/rviewer/internal/raster"
	"github.com/ivlev/rviewer/internal/scene"
	"github.com/ivlev/rviewer/internal/svg"
	"github.com/ivlev/rviewer/internal/system"
	"github.com/ivlev/rviewer/internal/video"
)

var (
	// ErrNoFrames is returned by MakeVideo when the frames directory holds
	// no PNG frames.
	ErrNoFrames = errors.New("no png frames to assemble")
	// ErrNotFinished is returned by batch exports while ingestion is
	// still running.
	ErrNotFinished = errors.New("scene is still loading")
)

type Exporter struct {
	Scene      *scene.Scene
	Settings   config.Settings
	Rasterizer raster.Rasterizer
	Encoder    video.VideoEncoder
	Codec      string
	Background figure.Color

	// Progress creates the progress printer of a batch.
	Progress func(label string, total int) *system.Progress
}

// New wires an exporter from settings. video_encoder "auto" probes ffmpeg
// for a hardware H.264 encoder.
func New(s *scene.Scene, settings config.Settings) (*Exporter, error) {
	r, err := raster.New(settings)
	if err != nil {
		return nil, err
	}
	bg, err := settings.BackgroundColor()
	if err != nil {
		return nil, fmt.Errorf("%w: background: %v", config.ErrInvalidSettings, err)
	}
	codec := settings.VideoEncoder
	if codec == "auto" {
		codec = system.GetBestH264Encoder(settings.FFmpegPath)
		if codec != "libx264" {
			fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", codec)
		}
	}
	return &Exporter{
		Scene:      s,
		Settings:   settings,
		Rasterizer: r,
		Encoder:    &video.FFmpegEncoder{Path: settings.FFmpegPath},
		Codec:      codec,
		Background: bg,
		Progress:   system.NewProgress,
	}, nil
}

// Document builds the SVG document of frame i.
func (e *Exporter) Document(i int) *svg.Document {
	p := e.Scene.Params()
	doc := svg.New(svg.Params{Size: p.Size, WidthScale: p.SVGWidth, Background: e.Background})
	t := e.Scene.DocumentTransform()
	for _, f := range e.Scene.VisibleObjects(i) {
		doc.Add(f, t)
	}
	return doc
}

func (e *Exporter) SaveFrameSVG(i int, path string) error {
	if _, ok := e.Scene.Frame(i); !ok {
		return fmt.Errorf("frame %d out of range [0, %d)", i, e.Scene.FrameCount())
	}
	return e.Document(i).Save(path)
}

// SaveFramePNG writes frame i through a temporary SVG next to path.
func (e *Exporter) SaveFramePNG(ctx context.Context, i int, path string) error {
	tmp := filepath.Join(filepath.Dir(path), fmt.Sprintf("_tmp_frame_%d_.svg", i+1))
	if err := e.SaveFrameSVG(i, tmp); err != nil {
		return err
	}
	defer os.Remove(tmp)
	return e.convert(ctx, i, tmp, path)
}

func (e *Exporter) framePath(i int, ext string) string {
	return filepath.Join(e.Settings.FramesDir, fmt.Sprintf("%05d.%s", i+1, ext))
}

func (e *Exporter) tmpPath(i int) string {
	return filepath.Join(e.Settings.FramesDir, fmt.Sprintf("_tmp_frame_%d_.svg", i+1))
}

func (e *Exporter) progress(label string, total int) *system.Progress {
	if e.Progress == nil {
		return system.NewProgressWriter(os.Stdout, label, total)
	}
	return e.Progress(label, total)
}

func (e *Exporter) checkFinished() error {
	if !e.Scene.Finished() {
		return ErrNotFinished
	}
	return nil
}

// SaveAllSVG writes every frame to frames/NNNNN.svg.
func (e *Exporter) SaveAllSVG(ctx context.Context) error {
	if err := e.checkFinished(); err != nil {
		return err
	}
	if err := os.MkdirAll(e.Settings.FramesDir, 0755); err != nil {
		return err
	}
	total := e.Scene.FrameCount()
	prog := e.progress("Saved svg", total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.SaveFrameSVG(i, e.framePath(i, "svg")); err != nil {
			return err
		}
		prog.Update(i + 1)
	}
	return nil
}

// Report is the outcome of a PNG batch.
type Report struct {
	Total  int
	Saved  int
	Failed []int
}

// SaveAllPNG writes every frame to frames/NNNNN.png. Temporary SVGs are
// written serially, then converted by at most max_threads workers. A frame
// that keeps failing is logged and skipped; the batch goes on.
func (e *Exporter) SaveAllPNG(ctx context.Context) (Report, error) {
	if err := e.checkFinished(); err != nil {
		return Report{}, err
	}
	if err := os.MkdirAll(e.Settings.FramesDir, 0755); err != nil {
		return Report{}, err
	}

	total := e.Scene.FrameCount()
	rep := Report{Total: total}
	for i := 0; i < total; i++ {
		if err := e.SaveFrameSVG(i, e.tmpPath(i)); err != nil {
			return rep, err
		}
	}
	fmt.Printf("[*] Создано svg: %d\n", total)

	prog := e.progress("Saved frame", total)
	failed := make([]bool, total)
	var done, saved atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, e.Settings.MaxThreads))
	for i := 0; i < total; i++ {
		g.Go(func() error {
			tmp := e.tmpPath(i)
			defer os.Remove(tmp)
			if err := e.convert(gctx, i, tmp, e.framePath(i, "png")); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Printf("[!] Кадр %d не сохранен: %v", i+1, err)
				failed[i] = true
			} else {
				saved.Add(1)
			}
			prog.Update(int(done.Add(1)))
			return nil
		})
	}
	err := g.Wait()

	rep.Saved = int(saved.Load())
	for i, f := range failed {
		if f {
			rep.Failed = append(rep.Failed, i)
		}
	}
	return rep, err
}

// convert runs the rasterizer with a growing timeout: base, 2×base, ...
// A timed out attempt is retried until max_attempts; any other failure
// ends the job at once.
func (e *Exporter) convert(ctx context.Context, frame int, svgPath, pngPath string) error {
	base := e.Settings.BaseTimeout
	attempts := max(1, e.Settings.MaxAttempts)
	timeout := base
	for attempt := 1; ; attempt++ {
		actx, cancel := context.WithTimeout(ctx, timeout)
		err := e.Rasterizer.Rasterize(actx, svgPath, pngPath, e.Settings.FrameResolution)
		cancel()
		switch {
		case err == nil:
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		case !errors.Is(err, context.DeadlineExceeded):
			return err
		}
		log.Printf("[!] Кадр %d: таймаут %v (попытка %d/%d)", frame+1, timeout, attempt, attempts)
		if attempt >= attempts {
			return fmt.Errorf("max attempts reached: %w", err)
		}
		timeout += base
	}
}

// MakeVideo assembles frames/NNNNN.png into the output video, replacing
// an existing one.
func (e *Exporter) MakeVideo(ctx context.Context) error {
	if err := os.Remove(e.Settings.VideoOutput); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove old video: %w", err)
	}
	pngs, err := filepath.Glob(filepath.Join(e.Settings.FramesDir, "[0-9][0-9][0-9][0-9][0-9].png"))
	if err != nil {
		return err
	}
	if len(pngs) == 0 {
		return fmt.Errorf("%w in %s", ErrNoFrames, e.Settings.FramesDir)
	}

	speed := e.Scene.Speed()
	start := time.Now()
	err = e.Encoder.Assemble(ctx, video.Params{
		FPS:     1 / speed,
		Pattern: filepath.Join(e.Settings.FramesDir, "%05d.png"),
		Output:  e.Settings.VideoOutput,
		Codec:   e.Codec,
	})
	if err != nil {
		return fmt.Errorf("ошибка сборки видео: %w", err)
	}
	fmt.Printf("[+++] Успех! Видео сохранено: %s (%.2fs)\n", e.Settings.VideoOutput, time.Since(start).Seconds())
	return nil
}

// ExportVideo renders the PNG batch and assembles it, even when some
// frames failed.
func (e *Exporter) ExportVideo(ctx context.Context) (Report, error) {
	rep, err := e.SaveAllPNG(ctx)
	if err != nil {
		return rep, err
	}
	if len(rep.Failed) > 0 {
		log.Printf("[!] Не сохранено кадров: %d из %d", len(rep.Failed), rep.Total)
	}
	return rep, e.MakeVideo(ctx)
}
