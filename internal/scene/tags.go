package scene

import "sync"

// Tag is a registry entry as shown to the user.
type Tag struct {
	Name    string
	Enabled bool
}

// TagRegistry keeps the visibility switch of every tag in order of first
// appearance. A tag disabled before it is first used starts disabled.
type TagRegistry struct {
	mu       sync.Mutex
	order    []string
	enabled  map[string]bool
	disabled map[string]bool
}

func NewTagRegistry() *TagRegistry {
	return &TagRegistry{
		enabled:  make(map[string]bool),
		disabled: make(map[string]bool),
	}
}

// Register records a tag seen on a figure. Known tags are left as they are.
func (r *TagRegistry) Register(tag string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.enabled[tag]; ok {
		return
	}
	r.order = append(r.order, tag)
	r.enabled[tag] = !r.disabled[tag]
}

// Disable handles the disable directive: it switches a known tag off and
// makes sure the tag starts off if it has not been seen yet.
func (r *TagRegistry) Disable(tag string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disabled[tag] = true
	if _, ok := r.enabled[tag]; ok {
		r.enabled[tag] = false
	}
}

// SetEnabled is the user toggle. It reports false for an unknown tag.
func (r *TagRegistry) SetEnabled(tag string, on bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.enabled[tag]; !ok {
		return false
	}
	r.enabled[tag] = on
	return true
}

// Enabled returns a snapshot of the enabled tags.
func (r *TagRegistry) Enabled() map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]bool, len(r.enabled))
	for t, on := range r.enabled {
		if on {
			out[t] = true
		}
	}
	return out
}

func (r *TagRegistry) List() []Tag {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Tag, len(r.order))
	for i, t := range r.order {
		out[i] = Tag{Name: t, Enabled: r.enabled[t]}
	}
	return out
}
