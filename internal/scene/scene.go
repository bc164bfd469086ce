// Package scene owns the shared state of a session: the append-only object
// store, the timeline of frames, tag visibility and the scene parameters.
// Ingestion writes it while the player and the exporters read it, so every
// field group has its own lock.
package scene

import (
	"sync"
	"sync/atomic"

	"github.com/ivlev/rviewer/internal/figure"
	"github.com/ivlev/rviewer/internal/geom"
)

// Params are the scene-wide settings changed by directives.
type Params struct {
	Size geom.Point
	// Speed is the frame period in seconds.
	Speed    float64
	SVGWidth float64
	FlipY    bool
	Shift    geom.Point
}

func DefaultParams() Params {
	return Params{
		Size:     geom.Pt(10, 10),
		Speed:    0.033,
		SVGWidth: 0.3,
	}
}

type Scene struct {
	objMu   sync.RWMutex
	objects []figure.Figure

	frameMu  sync.RWMutex
	frames   [][]int
	baseline []int

	paramMu sync.RWMutex
	params  Params

	Tags *TagRegistry

	finished atomic.Bool
	unparsed atomic.Int64
}

func New() *Scene {
	return &Scene{
		params: DefaultParams(),
		Tags:   NewTagRegistry(),
	}
}

// Add appends a figure to the object store and returns its index.
func (s *Scene) Add(f figure.Figure) int {
	s.objMu.Lock()
	defer s.objMu.Unlock()
	s.objects = append(s.objects, f)
	return len(s.objects) - 1
}

func (s *Scene) Object(i int) (figure.Figure, bool) {
	s.objMu.RLock()
	defer s.objMu.RUnlock()
	if i < 0 || i >= len(s.objects) {
		return nil, false
	}
	return s.objects[i], true
}

func (s *Scene) ObjectCount() int {
	s.objMu.RLock()
	defer s.objMu.RUnlock()
	return len(s.objects)
}

func (s *Scene) pushFrame(frame []int) {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	s.frames = append(s.frames, frame)
}

func (s *Scene) setBaseline(b []int) {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	s.baseline = b
}

func (s *Scene) Baseline() []int {
	s.frameMu.RLock()
	defer s.frameMu.RUnlock()
	return append([]int(nil), s.baseline...)
}

func (s *Scene) FrameCount() int {
	s.frameMu.RLock()
	defer s.frameMu.RUnlock()
	return len(s.frames)
}

// Frame returns a copy of the object indices of frame i.
func (s *Scene) Frame(i int) ([]int, bool) {
	s.frameMu.RLock()
	defer s.frameMu.RUnlock()
	if i < 0 || i >= len(s.frames) {
		return nil, false
	}
	return append([]int(nil), s.frames[i]...), true
}

func (s *Scene) Frames() [][]int {
	s.frameMu.RLock()
	defer s.frameMu.RUnlock()
	out := make([][]int, len(s.frames))
	for i, f := range s.frames {
		out[i] = append([]int(nil), f...)
	}
	return out
}

// VisibleObjects returns the figures of frame i that pass the tag filter,
// in paint order. Out-of-range frames and indices are skipped.
func (s *Scene) VisibleObjects(i int) []figure.Figure {
	frame, ok := s.Frame(i)
	if !ok {
		return nil
	}
	enabled := s.Tags.Enabled()

	s.objMu.RLock()
	defer s.objMu.RUnlock()
	out := make([]figure.Figure, 0, len(frame))
	for _, idx := range frame {
		if idx < 0 || idx >= len(s.objects) {
			continue
		}
		if f := s.objects[idx]; figure.NeedToDraw(f, enabled) {
			out = append(out, f)
		}
	}
	return out
}

func (s *Scene) Params() Params {
	s.paramMu.RLock()
	defer s.paramMu.RUnlock()
	return s.params
}

func (s *Scene) Update(fn func(p *Params)) {
	s.paramMu.Lock()
	defer s.paramMu.Unlock()
	fn(&s.params)
}

func (s *Scene) Size() geom.Point { return s.Params().Size }

// Speed is the frame period in seconds.
func (s *Scene) Speed() float64 { return s.Params().Speed }

// DocumentTransform is the transform of the vector export.
func (s *Scene) DocumentTransform() geom.Transform {
	p := s.Params()
	return geom.DocumentTransform(p.Shift, p.Size.Y, p.FlipY)
}

// ScreenTransform is the transform of the interactive canvas for a view.
func (s *Scene) ScreenTransform(v geom.View) geom.Transform {
	p := s.Params()
	return v.Transform(p.Shift, p.Size.Y, p.FlipY)
}

func (s *Scene) markFinished() { s.finished.Store(true) }

// Finished reports whether ingestion has reached the end of its input.
func (s *Scene) Finished() bool { return s.finished.Load() }

// Unparsed is the number of input lines that could not be decoded.
func (s *Scene) Unparsed() int { return int(s.unparsed.Load()) }
