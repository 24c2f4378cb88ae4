// Package tui provides the interactive terminal view of a build.
package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/quill/internal/core/ports"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer with a Bubble Tea program.
//
// The program runs between Start and Stop. Events sent outside that window are
// dropped. Pressing q or ctrl+c closes Interrupted so the caller can cancel the build.
type Renderer struct {
	program *tea.Program

	interrupted chan struct{}
	interrupt   sync.Once

	mu      sync.Mutex
	started bool
	done    chan struct{}
	err     error
}

// NewRenderer creates a Renderer; opts configure the underlying program.
func NewRenderer(opts ...tea.ProgramOption) *Renderer {
	r := &Renderer{
		interrupted: make(chan struct{}),
		done:        make(chan struct{}),
	}
	r.program = tea.NewProgram(NewModel(r.signalInterrupt), opts...)
	return r
}

func (r *Renderer) signalInterrupt() {
	r.interrupt.Do(func() { close(r.interrupted) })
}

// Interrupted is closed when the user asks to stop the build.
func (r *Renderer) Interrupted() <-chan struct{} {
	return r.interrupted
}

// Start runs the program in the background until Stop or until ctx is done.
func (r *Renderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}
	r.started = true

	go func() {
		_, err := r.program.Run()
		r.err = err
		close(r.done)
	}()
	go func() {
		select {
		case <-ctx.Done():
			r.program.Quit()
		case <-r.done:
		}
	}()
	return nil
}

// Stop quits the program and waits until the terminal is restored.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if !started {
		return nil
	}

	r.program.Quit()
	<-r.done
	return r.err
}

// OnPlanEmit shows the planned tasks.
func (r *Renderer) OnPlanEmit(tasks []string, _ map[string][]string, targets []string) {
	r.send(PlanMsg{Tasks: tasks, Targets: targets})
}

// OnTaskStart marks a task as running.
func (r *Renderer) OnTaskStart(spanID, parentID, name string, startTime time.Time) {
	r.send(TaskStartMsg{SpanID: spanID, ParentID: parentID, Name: name, Time: startTime})
}

// OnTaskLog appends output to the terminal of a task.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.send(TaskLogMsg{SpanID: spanID, Data: append([]byte(nil), data...)})
}

// OnTaskComplete records the outcome of a task.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.send(TaskCompleteMsg{SpanID: spanID, Time: endTime, Err: err})
}

func (r *Renderer) send(msg tea.Msg) {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if started {
		r.program.Send(msg)
	}
}
