// Package linear prints task progress as plain, task-prefixed lines.
package linear

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
	"go.trai.ch/quill/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer for logs and pipes.
//
// Task output goes to stdout as "[task] line"; plan and lifecycle lines go to
// stderr. Tasks started from inside a running task, the re-runs of a watch
// session, name the task that triggered them.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	out    *termenv.Output

	mu      sync.Mutex
	running map[string]*task // by span ID
}

type task struct {
	name    string
	trigger string
	started time.Time
	pending bytes.Buffer
}

// NewRenderer creates a Renderer. Nil writers default to os.Stdout and os.Stderr.
func NewRenderer(stdout, stderr io.Writer, profile termenv.Profile) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Renderer{
		stdout:  stdout,
		stderr:  stderr,
		out:     termenv.NewOutput(stderr, termenv.WithProfile(profile)),
		running: make(map[string]*task),
	}
}

// OnPlanEmit prints the targets and their execution order.
func (r *Renderer) OnPlanEmit(tasks []string, _ map[string][]string, targets []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	verb := "Running"
	if len(r.running) > 0 {
		verb = "Re-running"
	}
	head := fmt.Sprintf("%s %s:", verb, strings.Join(targets, ", "))
	order := strings.Join(tasks, " "+style.Arrow+" ")
	r.lifecycle("%s %s", r.out.String(head).Bold(), r.out.String(order).Faint())
}

// OnTaskStart announces a task.
func (r *Renderer) OnTaskStart(spanID, parentID, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := &task{name: name, started: startTime}
	if parent, ok := r.running[parentID]; ok {
		t.trigger = parent.name
	}
	r.running[spanID] = t

	if t.trigger != "" {
		r.lifecycle("%s Starting (%s)...", r.prefix(name), t.trigger)
		return
	}
	r.lifecycle("%s Starting...", r.prefix(name))
}

// OnTaskLog prints the complete lines in data and keeps a trailing partial line.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.running[spanID]
	if !ok {
		return
	}
	t.pending.Write(data)
	for {
		i := bytes.IndexByte(t.pending.Bytes(), '\n')
		if i < 0 {
			return
		}
		r.line(t.name, t.pending.Next(i+1))
	}
}

// OnTaskComplete prints any partial line and the outcome of the task.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.running[spanID]
	if !ok {
		return
	}
	delete(r.running, spanID)
	r.flush(t)

	took := endTime.Sub(t.started).Round(time.Millisecond)
	prefix := fmt.Sprintf("[%s]", t.name)

	switch code, hasCode := domain.ExitCode(err); {
	case err == nil:
		r.lifecycle("%s %s Completed in %v", prefix, r.icon(style.Check, style.Green), took)
	case errors.Is(err, context.Canceled):
		r.lifecycle("%s %s Cancelled after %v", prefix, r.icon(style.Warning, style.Yellow), took)
	case hasCode:
		r.lifecycle("%s %s Failed after %v (exit status %d): %v", prefix, r.icon(style.Cross, style.Red), took, code, err)
	default:
		r.lifecycle("%s %s Failed after %v: %v", prefix, r.icon(style.Cross, style.Red), took, err)
	}
}

// Stop prints the partial lines of tasks that are still running.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.running {
		r.flush(t)
	}
	return nil
}

func (r *Renderer) prefix(name string) termenv.Style {
	return r.out.String("[" + name + "]").Faint()
}

func (r *Renderer) icon(symbol string, color lipgloss.Color) termenv.Style {
	return r.out.String(symbol).Foreground(r.out.Color(string(color)))
}

func (r *Renderer) lifecycle(format string, args ...any) {
	_, _ = fmt.Fprintf(r.stderr, format+"\n", args...)
}

func (r *Renderer) flush(t *task) {
	if t.pending.Len() > 0 {
		r.line(t.name, t.pending.Bytes())
		t.pending.Reset()
	}
}

// line prints one line of task output without its line terminator. Blank lines are dropped.
func (r *Renderer) line(name string, data []byte) {
	data = bytes.TrimRight(data, "\r\n")
	if len(data) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", name, data)
}
