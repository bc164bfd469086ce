package tween

import "github.com/ivlev/rviewer/internal/figure"

// Pair links a figure of the earlier keyframe (A) to the same object in the
// later one (B). A and B index the slices given to Match.
type Pair struct {
	A, B int
}

// Match joins two keyframes by figure id. Only the first figure with a
// given id on each side takes part, and the kinds must agree. Pairs come
// out in the order of b.
func Match(a, b []figure.Figure) []Pair {
	byID := make(map[int]int, len(a))
	for i, f := range a {
		c := f.Common()
		if !c.HasID {
			continue
		}
		if _, dup := byID[c.ID]; !dup {
			byID[c.ID] = i
		}
	}
	seen := make(map[int]bool, len(b))
	var pairs []Pair
	for j, f := range b {
		c := f.Common()
		if !c.HasID || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		i, ok := byID[c.ID]
		if !ok || a[i].Kind() != f.Kind() {
			continue
		}
		pairs = append(pairs, Pair{A: i, B: j})
	}
	return pairs
}
