// Package domain contains the core domain models and business logic for the task dependency graph.
package domain

import (
	"slices"
	"strings"
	"unicode"
)

// Graph represents a dependency graph of tasks.
type Graph struct {
	tasks     map[string]Task
	validated bool
}

// NewGraph creates a graph from the given tasks and validates it.
func NewGraph(tasks ...Task) (*Graph, error) {
	g := &Graph{tasks: make(map[string]Task, len(tasks))}
	for i := range tasks {
		if err := g.AddTask(tasks[i]); err != nil {
			return nil, err
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// AddTask adds a task to the graph.
// It returns an error if the name is invalid or a task with the same name already exists.
// Adding a task invalidates any previous validation.
func (g *Graph) AddTask(t Task) error {
	if g.tasks == nil {
		g.tasks = make(map[string]Task)
	}
	if t.Name == "" || strings.IndexFunc(t.Name, unicode.IsSpace) >= 0 {
		return Annotate(ErrInvalidTaskName, "task_name", t.Name)
	}
	if _, exists := g.tasks[t.Name]; exists {
		return Annotate(ErrTaskAlreadyExists, "task_name", t.Name)
	}
	t.Dependencies = slices.Clone(t.Dependencies)
	g.tasks[t.Name] = t
	g.validated = false
	return nil
}

// Validate checks that every dependency exists and that the graph has no cycles.
func (g *Graph) Validate() error {
	state := make(map[string]int, len(g.tasks)) // 0: unvisited, 1: visiting, 2: visited
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		state[name] = 1
		path = append(path, name)

		for _, dep := range g.tasks[name].Dependencies {
			if _, ok := g.tasks[dep]; !ok {
				return Annotate(ErrMissingDependency, "task", name, "dependency", dep)
			}
			switch state[dep] {
			case 1:
				return Annotate(ErrCycleDetected, "cycle", cyclePath(path, dep))
			case 0:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		state[name] = 2
		path = path[:len(path)-1]
		return nil
	}

	// Sorted iteration keeps the order stable across runs.
	for _, name := range g.Names() {
		if state[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	g.validated = true
	return nil
}

func cyclePath(path []string, dep string) string {
	start := slices.Index(path, dep)
	return strings.Join(append(slices.Clone(path[start:]), dep), " -> ")
}

// Validated reports whether the graph passed Validate since the last mutation.
func (g *Graph) Validated() bool {
	return g.validated
}

// Task returns the task registered under name.
func (g *Graph) Task(name string) (Task, bool) {
	t, ok := g.tasks[name]
	return t, ok
}

// Names returns all task names in lexical order.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.tasks))
	for name := range g.tasks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// TaskCount returns the number of tasks in the graph.
func (g *Graph) TaskCount() int {
	return len(g.tasks)
}

// Plan returns the execution order for name: prerequisites depth first,
// left to right as declared, each task at most once, name last.
func (g *Graph) Plan(name string) ([]string, error) {
	if !g.validated {
		return nil, ErrGraphNotValidated
	}
	if _, ok := g.tasks[name]; !ok {
		return nil, Annotate(ErrTaskNotFound, "task", name)
	}

	seen := make(map[string]bool)
	var plan []string
	var visit func(n string)
	visit = func(n string) {
		if seen[n] {
			return
		}
		seen[n] = true
		for _, dep := range g.tasks[n].Dependencies {
			visit(dep)
		}
		plan = append(plan, n)
	}
	visit(name)
	return plan, nil
}
