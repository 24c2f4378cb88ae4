// Package scheduler implements the task execution scheduler.
package scheduler

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
)

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting to be executed.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is currently executing.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted indicates the task has finished successfully.
	StatusCompleted TaskStatus = "Completed"
	// StatusFailed indicates the task execution failed.
	StatusFailed TaskStatus = "Failed"
	// StatusSkipped indicates the task did not run because an earlier task failed.
	StatusSkipped TaskStatus = "Skipped"
)

var _ domain.Invoker = (*Scheduler)(nil)

// Scheduler runs tasks of a validated graph together with their prerequisites.
type Scheduler struct {
	graph  *domain.Graph
	tracer ports.Tracer

	mu         sync.RWMutex
	taskStatus map[string]TaskStatus
}

// NewScheduler creates a new Scheduler for graph.
// The graph is validated if it has not been already.
func NewScheduler(graph *domain.Graph, tracer ports.Tracer) (*Scheduler, error) {
	if !graph.Validated() {
		if err := graph.Validate(); err != nil {
			return nil, err
		}
	}

	return &Scheduler{
		graph:      graph,
		tracer:     tracer,
		taskStatus: make(map[string]TaskStatus),
	}, nil
}

// Run executes the prerequisites of name, then name itself.
//
// The plan is resolved before anything runs, and the option presets of every
// planned task are applied to opts once. Tasks run one at a time in plan order.
// The first failure stops the run; tasks after it are not executed.
func (s *Scheduler) Run(ctx context.Context, name string, opts domain.Options) error {
	plan, err := s.graph.Plan(name)
	if err != nil {
		return err
	}

	opts = s.resolveOptions(plan, opts)
	s.initTaskStatuses(plan)
	s.tracer.EmitPlan(ctx, plan, s.dependencyMap(plan), []string{name})

	for i, taskName := range plan {
		if err := ctx.Err(); err != nil {
			s.skip(plan[i:])
			return err
		}
		if err := s.execute(ctx, taskName, opts); err != nil {
			s.skip(plan[i+1:])
			return err
		}
	}
	return nil
}

// RunAll runs each of names in series, stopping at the first failure.
// Every name resolves its own plan, so shared prerequisites run again.
func (s *Scheduler) RunAll(ctx context.Context, names []string, opts domain.Options) error {
	for _, name := range names {
		if _, ok := s.graph.Task(name); !ok {
			return domain.Annotate(domain.ErrTaskNotFound, domain.MetaTask, name)
		}
	}
	for _, name := range names {
		if err := s.Run(ctx, name, opts); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) execute(ctx context.Context, name string, opts domain.Options) error {
	task, _ := s.graph.Task(name)

	s.updateStatus(name, StatusRunning)
	ctx, span := s.tracer.Start(ctx, name)
	defer span.End()

	if opts.Production {
		span.SetAttribute(domain.AttrProduction, true)
	}

	if task.Action != nil {
		err := task.Action(ctx, domain.Call{Task: name, Options: opts, Invoker: s, Output: span})
		if err != nil {
			if code, ok := domain.ExitCode(err); ok {
				span.SetAttribute(domain.AttrExitCode, code)
			}
			if errors.Is(err, context.Canceled) {
				span.SetAttribute(domain.AttrCancelled, true)
			}
			span.RecordError(err)
			s.updateStatus(name, StatusFailed)
			return domain.Annotate(errors.Join(domain.ErrTaskExecutionFailed, err), domain.MetaTask, name)
		}
	}

	s.updateStatus(name, StatusCompleted)
	return nil
}

func (s *Scheduler) resolveOptions(plan []string, opts domain.Options) domain.Options {
	for _, name := range plan {
		if task, ok := s.graph.Task(name); ok && task.Preset != nil {
			opts = task.Preset(opts)
		}
	}
	return opts
}

func (s *Scheduler) dependencyMap(plan []string) map[string][]string {
	deps := make(map[string][]string, len(plan))
	for _, name := range plan {
		task, _ := s.graph.Task(name)
		deps[name] = slices.Clone(task.Dependencies)
	}
	return deps
}

// initTaskStatuses initializes the status of the planned tasks to Pending.
func (s *Scheduler) initTaskStatuses(plan []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range plan {
		s.taskStatus[name] = StatusPending
	}
}

func (s *Scheduler) updateStatus(name string, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStatus[name] = status
}

func (s *Scheduler) skip(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		if s.taskStatus[name] == StatusPending {
			s.taskStatus[name] = StatusSkipped
		}
	}
}
