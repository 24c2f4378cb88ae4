package tui

import (
	"bytes"
	"sync"

	"github.com/vito/midterm"
)

// Vterm is the scrollable virtual terminal holding the output of one task.
// Output written by programs under a pseudo terminal keeps its cursor movement and colors.
type Vterm struct {
	mu     sync.Mutex
	vt     *midterm.Terminal
	offset int
	height int
}

// NewVterm creates an empty terminal one line high.
func NewVterm() *Vterm {
	return &Vterm{vt: midterm.NewAutoResizingTerminal(), height: 1}
}

// Write feeds output to the terminal. A view scrolled to the bottom follows new output.
func (v *Vterm) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	follow := v.offset >= v.maxOffset()
	n, err := v.vt.Write(p)
	if follow {
		v.offset = v.maxOffset()
	}
	return n, err
}

// Resize sets the visible area. Values below one are raised to one.
func (v *Vterm) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	follow := v.offset >= v.maxOffset()
	v.vt.ResizeX(max(width, 1))
	v.height = max(height, 1)
	if follow {
		v.offset = v.maxOffset()
	}
	v.offset = min(v.offset, v.maxOffset())
}

// Scroll moves the view by delta lines, clamped to the written output.
func (v *Vterm) Scroll(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset = min(max(v.offset+delta, 0), v.maxOffset())
}

// ScrollToEnd moves the view to the latest output.
func (v *Vterm) ScrollToEnd() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset = v.maxOffset()
}

// Height returns the number of visible lines.
func (v *Vterm) Height() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.height
}

// Offset returns the first visible line.
func (v *Vterm) Offset() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}

// Lines returns the number of lines written so far.
func (v *Vterm) Lines() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vt.UsedHeight()
}

// View renders the visible lines.
func (v *Vterm) View() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	var buf bytes.Buffer
	used := v.vt.UsedHeight()
	for i := 0; i < v.height && v.offset+i < used; i++ {
		if i > 0 {
			buf.WriteByte('\n')
		}
		_ = v.vt.RenderLine(&buf, v.offset+i)
	}
	return buf.String()
}

func (v *Vterm) maxOffset() int {
	return max(v.vt.UsedHeight()-v.height, 0)
}
