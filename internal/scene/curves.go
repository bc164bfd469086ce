package scene

import (
	"github.com/ivlev/rviewer/internal/tween"
)

// DefaultCurveName addresses the default curve in a setfunc directive.
const DefaultCurveName = "default"

// Curves is the easing table of the in-between engine. Frames is the
// number of frames from one keyframe to the next; 1 turns in-betweening
// off.
type Curves struct {
	Frames int

	def   []float64
	named map[string][]float64
}

func NewCurves() *Curves {
	return &Curves{Frames: 1, named: make(map[string][]float64)}
}

func (c *Curves) Set(name string, curve []float64) {
	if name == DefaultCurveName {
		c.def = curve
		return
	}
	c.named[name] = curve
}

// Lookup returns exactly Frames-1 factors for the curve called name:
// a setfunc curve, else a built-in easing, else the default curve.
func (c *Curves) Lookup(name string) []float64 {
	n := c.Frames - 1
	if curve, ok := c.named[name]; ok && name != "" {
		return tween.Fit(curve, n)
	}
	if name != "" {
		if curve, ok := tween.Easing(name, c.Frames); ok {
			return curve
		}
	}
	if c.def != nil {
		return tween.Fit(c.def, n)
	}
	return tween.Linear(c.Frames)
}
