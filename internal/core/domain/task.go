package domain

import (
	"context"
	"io"
)

// Options carries the per-invocation build switches into every action.
// It is resolved once when an invocation starts and never mutated afterwards.
type Options struct {
	// Production enables compaction of the application bundle.
	Production bool
}

// Invoker runs a task together with its prerequisite chain.
// Actions that re-enter the graph (the watch session) receive one through Call.
type Invoker interface {
	Run(ctx context.Context, name string, opts Options) error
}

// Call describes a single action invocation.
type Call struct {
	// Task is the name of the task whose action is running.
	Task string
	// Options are the resolved options of the enclosing invocation.
	Options Options
	// Invoker re-enters the task graph that is executing this action.
	Invoker Invoker
	// Output receives the output of external programs run by the action.
	Output io.Writer
}

// Action is the side-effecting unit of work of a task.
type Action func(ctx context.Context, call Call) error

// Preset adjusts the options of any invocation whose plan includes the task.
type Preset func(opts Options) Options

// Task represents a named unit of build work.
// A task without an Action only runs its prerequisites.
type Task struct {
	Name         string
	Description  string
	Dependencies []string
	Action       Action
	Preset       Preset
}
