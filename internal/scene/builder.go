package scene

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/ivlev/rviewer/internal/figure"
	"github.com/ivlev/rviewer/internal/protocol"
	"github.com/ivlev/rviewer/internal/tween"
)

// maxLoggedErrors caps the per-line log output of one ingestion.
const maxLoggedErrors = 10

// DrawProperties are the defaults figure lines fall back to.
type DrawProperties struct {
	Width float64
	Font  float64
	// Messages counts msg lines since the last tick.
	Messages int
}

// Builder turns the decoded stream into frames. It is owned by the
// ingestion goroutine.
type Builder struct {
	scene  *Scene
	Props  DrawProperties
	Curves *Curves

	// OnFrame is called after each frame is pushed with the frame count.
	OnFrame func(frames int)

	acc      []int
	baseline []int
	ticked   bool
	lastKey  []int
	unparsed int
}

func NewBuilder(s *Scene) *Builder {
	return &Builder{
		scene:  s,
		Props:  DrawProperties{Width: 1, Font: 1},
		Curves: NewCurves(),
	}
}

// Feed processes one input line. A line that cannot be decoded is counted
// and its error returned; the builder stays usable.
func (b *Builder) Feed(line string) error {
	dec, err := protocol.Decode(line, protocol.Defaults{
		Width:        b.Props.Width,
		Font:         b.Props.Font,
		MessageIndex: b.Props.Messages,
	})
	if err != nil {
		b.unparsed++
		b.scene.unparsed.Add(1)
		return err
	}
	switch {
	case dec.Figure != nil:
		b.addFigure(dec.Figure)
	case dec.Directive != nil:
		b.apply(dec.Directive)
	}
	return nil
}

func (b *Builder) addFigure(f figure.Figure) {
	if _, ok := f.(figure.Message); ok {
		b.Props.Messages++
	}
	for _, t := range f.Common().Tags {
		b.scene.Tags.Register(t)
	}
	b.acc = append(b.acc, b.scene.Add(f))
}

func (b *Builder) apply(d *protocol.Directive) {
	switch d.Kind {
	case protocol.Tick:
		b.tick()
	case protocol.Speed:
		b.scene.Update(func(p *Params) { p.Speed = 1 / d.Value })
	case protocol.Width:
		b.Props.Width = d.Value
	case protocol.Font:
		b.Props.Font = d.Value
	case protocol.Size:
		b.scene.Update(func(p *Params) { p.Size = d.Point })
	case protocol.SVGWidth:
		b.scene.Update(func(p *Params) { p.SVGWidth = d.Value })
	case protocol.Disable:
		b.scene.Tags.Disable(d.Name)
	case protocol.SetFunc:
		b.Curves.Set(d.Name, d.Curve)
	case protocol.InBetweens:
		b.Curves.Frames = d.Count
	case protocol.FlipY:
		b.scene.Update(func(p *Params) { p.FlipY = d.Flag })
	case protocol.Shift:
		b.scene.Update(func(p *Params) { p.Shift = d.Point })
	}
}

func (b *Builder) tick() {
	if !b.ticked {
		b.baseline = append([]int(nil), b.acc...)
		b.scene.setBaseline(append([]int(nil), b.baseline...))
		b.ticked = true
	} else {
		b.push(b.acc)
	}
	b.Props.Messages = 0
	b.acc = append([]int(nil), b.baseline...)
}

// Finish pushes the final frame and marks the scene finished. The final
// frame is pushed even when empty or equal to the previous one.
func (b *Builder) Finish() {
	b.push(b.acc)
	b.acc = nil
	b.scene.markFinished()
}

func (b *Builder) Unparsed() int { return b.unparsed }

func (b *Builder) push(frame []int) {
	frame = append([]int(nil), frame...)
	if b.Curves.Frames > 1 && b.lastKey != nil {
		for _, f := range b.inBetweens(b.lastKey, frame) {
			b.emit(f)
		}
	}
	b.emit(frame)
	b.lastKey = frame
}

func (b *Builder) emit(frame []int) {
	b.scene.pushFrame(frame)
	if b.OnFrame != nil {
		b.OnFrame(b.scene.FrameCount())
	}
}

// inBetweens builds the Frames-1 synthetic frames between two keyframes.
// Objects joined by id are replaced by their in-betweens; everything else
// of the earlier keyframe is held until the later one appears.
func (b *Builder) inBetweens(prev, next []int) [][]int {
	inBase := make(map[int]bool, len(b.baseline))
	for _, i := range b.baseline {
		inBase[i] = true
	}
	segment := func(frame []int) ([]int, []figure.Figure) {
		var idx []int
		var figs []figure.Figure
		for _, i := range frame {
			if inBase[i] {
				continue
			}
			if f, ok := b.scene.Object(i); ok {
				idx = append(idx, i)
				figs = append(figs, f)
			}
		}
		return idx, figs
	}
	prevIdx, prevFigs := segment(prev)
	_, nextFigs := segment(next)

	n := b.Curves.Frames - 1
	// Для каждого объекта из prev: индексы его промежуточных состояний
	synth := make(map[int][]int)
	for _, p := range tween.Match(prevFigs, nextFigs) {
		curve := b.Curves.Lookup(nextFigs[p.B].Common().Curve)
		figs := tween.InBetweens(prevFigs[p.A], nextFigs[p.B], curve)
		if len(figs) != n {
			continue
		}
		ids := make([]int, n)
		for j, f := range figs {
			ids[j] = b.scene.Add(f)
		}
		synth[prevIdx[p.A]] = ids
	}

	frames := make([][]int, n)
	for j := range frames {
		frame := append([]int(nil), b.baseline...)
		for _, i := range prevIdx {
			if ids, ok := synth[i]; ok {
				frame = append(frame, ids[j])
			} else {
				frame = append(frame, i)
			}
		}
		frames[j] = frame
	}
	return frames
}

// Ingest reads protocol lines from r until EOF or cancellation, then
// finalizes the timeline. It returns the number of unparsed lines.
func (s *Scene) Ingest(ctx context.Context, r io.Reader, b *Builder) (int, error) {
	if b == nil {
		b = NewBuilder(s)
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var err error
	for sc.Scan() {
		if err = ctx.Err(); err != nil {
			break
		}
		if ferr := b.Feed(sc.Text()); ferr != nil && b.Unparsed() <= maxLoggedErrors {
			var pe *protocol.ParseError
			if errors.As(ferr, &pe) {
				log.Printf("[!] Строка не разобрана: %v", pe)
			}
		}
	}
	if err == nil {
		if serr := sc.Err(); serr != nil {
			err = fmt.Errorf("read input: %w", serr)
		}
	}
	// Даже при ошибке чтения фиксируем последний кадр, чтобы плеер не ждал вечно
	b.Finish()
	return b.Unparsed(), err
}
