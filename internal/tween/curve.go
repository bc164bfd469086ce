package tween

import (
	"sort"

	"github.com/fogleman/ease"
)

// easings are the built-in curves addressable by name from fu= or setfunc.
var easings = map[string]func(float64) float64{
	"linear":     ease.Linear,
	"inQuad":     ease.InQuad,
	"outQuad":    ease.OutQuad,
	"inOutQuad":  ease.InOutQuad,
	"inCubic":    ease.InCubic,
	"outCubic":   ease.OutCubic,
	"inOutCubic": ease.InOutCubic,
	"inSine":     ease.InSine,
	"outSine":    ease.OutSine,
	"inOutSine":  ease.InOutSine,
	"inExpo":     ease.InExpo,
	"outExpo":    ease.OutExpo,
	"inOutExpo":  ease.InOutExpo,
	"outBounce":  ease.OutBounce,
	"outElastic": ease.OutElastic,
	"outBack":    ease.OutBack,
}

// Sample evaluates fn at i/frames for i = 1..frames-1: the factors of the
// frames-1 in-betweens between two keyframes.
func Sample(fn func(float64) float64, frames int) []float64 {
	if frames < 2 {
		return nil
	}
	out := make([]float64, frames-1)
	for i := range out {
		out[i] = fn(float64(i+1) / float64(frames))
	}
	return out
}

// Linear is the default curve.
func Linear(frames int) []float64 {
	return Sample(ease.Linear, frames)
}

// Easing samples a built-in curve by name.
func Easing(name string, frames int) ([]float64, bool) {
	fn, ok := easings[name]
	if !ok {
		return nil, false
	}
	return Sample(fn, frames), true
}

// EasingNames lists the built-in curves in alphabetical order.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for n := range easings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Fit makes a curve exactly n factors long: missing factors land on the
// target keyframe, extra ones are dropped.
func Fit(curve []float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		if i < len(curve) {
			out[i] = curve[i]
		} else {
			out[i] = 1
		}
	}
	return out
}
