// Package player plays a timeline while it is still being loaded. It is
// headless: the current frame goes to a PNG preview and to OnFrame.
package player

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ivlev/rviewer/internal/canvas"
	"github.com/ivlev/rviewer/internal/geom"
	"github.com/ivlev/rviewer/internal/scene"
)

// Step is the outcome of one timer tick.
type Step int

const (
	// Advanced moved to the next frame.
	Advanced Step = iota
	// Waiting stayed on the last loaded frame while loading goes on.
	Waiting
	// Ended stopped on the last frame of a finished scene.
	Ended
)

type Player struct {
	Scene *scene.Scene

	// Renderer and PreviewPath enable the PNG preview.
	Renderer     *canvas.Renderer
	PreviewPath  string
	PreviewWidth int

	// OnFrame is called with the frame shown after every change.
	OnFrame func(frame, total int)

	// Sleep waits one frame period; tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error

	mu    sync.Mutex
	frame int
	shown bool
}

func New(s *scene.Scene) *Player {
	return &Player{Scene: s, PreviewWidth: 800, Sleep: sleep}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p *Player) Frame() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame
}

// Seek shows frame i, clamped to the loaded frames.
func (p *Player) Seek(i int) error {
	n := p.Scene.FrameCount()
	p.mu.Lock()
	p.frame = max(0, min(i, n-1))
	p.shown = n > 0
	i = p.frame
	p.mu.Unlock()
	return p.show(i, n)
}

func (p *Player) Next() error { return p.Seek(p.Frame() + 1) }

func (p *Player) Prev() error { return p.Seek(p.Frame() - 1) }

// Tick is one timer event: advance if a later frame is loaded, wait if
// loading is still running, otherwise end. The first loaded frame counts
// as an advance.
func (p *Player) Tick() (Step, error) {
	// finished читаем до числа кадров: после него новых кадров не будет
	finished := p.Scene.Finished()
	n := p.Scene.FrameCount()
	p.mu.Lock()
	if !p.shown && n > 0 {
		p.shown = true
		i := p.frame
		p.mu.Unlock()
		return Advanced, p.show(i, n)
	}
	if p.frame+1 < n {
		p.frame++
		i := p.frame
		p.mu.Unlock()
		return Advanced, p.show(i, n)
	}
	p.mu.Unlock()
	if !finished {
		return Waiting, nil
	}
	return Ended, nil
}

// Run plays from the current frame at the scene speed until the last
// frame of the finished scene is shown.
func (p *Player) Run(ctx context.Context) error {
	for {
		step, err := p.Tick()
		if err != nil {
			return err
		}
		if step == Ended {
			return nil
		}
		period := time.Duration(p.Scene.Speed() * float64(time.Second))
		if err := p.Sleep(ctx, period); err != nil {
			return err
		}
	}
}

func (p *Player) show(i, total int) error {
	if p.OnFrame != nil {
		p.OnFrame(i, total)
	}
	if p.Renderer == nil || p.PreviewPath == "" || total == 0 {
		return nil
	}
	size := p.Scene.Size()
	w := float64(p.PreviewWidth)
	h := w
	if size.X > 0 {
		h = float64(int(w * size.Y / size.X))
	}
	view := geom.FitView(size, w, max(h, 1))

	// Пишем во временный файл и переименовываем, чтобы просмотрщик не видел
	// недописанный кадр
	tmp := filepath.Join(filepath.Dir(p.PreviewPath), "."+filepath.Base(p.PreviewPath)+".tmp")
	if err := p.Renderer.SavePNG(tmp, p.Scene, i, view); err != nil {
		return err
	}
	if err := os.Rename(tmp, p.PreviewPath); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}
