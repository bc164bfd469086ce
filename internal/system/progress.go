package system

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Progress prints "[>] Ready: done/total". On a terminal the line is
// redrawn in place.
type Progress struct {
	mu    sync.Mutex
	w     io.Writer
	tty   bool
	total int
	label string
}

func NewProgress(label string, total int) *Progress {
	return &Progress{w: os.Stdout, tty: IsTerminal(os.Stdout), total: total, label: label}
}

// NewProgressWriter is NewProgress on an arbitrary writer, never a tty.
func NewProgressWriter(w io.Writer, label string, total int) *Progress {
	return &Progress{w: w, total: total, label: label}
}

func (p *Progress) Update(done int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tty {
		fmt.Fprintf(p.w, "\r[>] %s: %d/%d", p.label, done, p.total)
		if done >= p.total {
			fmt.Fprintln(p.w)
		}
		return
	}
	fmt.Fprintf(p.w, "[>] %s: %d/%d\n", p.label, done, p.total)
}
