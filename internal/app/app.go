// Package app implements the application layer for quill.
package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
	"go.trai.ch/quill/internal/engine/scheduler"
	"go.trai.ch/quill/internal/pipeline"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	tracer       ports.Tracer
	renderer     ports.Renderer
	deps         pipeline.Deps
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, tracer ports.Tracer, renderer ports.Renderer, deps pipeline.Deps) *App {
	return &App{
		configLoader: loader,
		tracer:       tracer,
		renderer:     renderer,
		deps:         deps,
	}
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// Production forces production mode regardless of the environment.
	Production bool
	// Chdir is the directory the project is resolved from. Empty means the working directory.
	Chdir string
	// ConfigPath is an explicit config file, relative to Chdir.
	ConfigPath string
	// JSONLog switches the logger to JSON output.
	JSONLog bool
}

type jsonSwitch interface {
	SetJSON(enable bool)
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// interactiveRenderer is a renderer that runs its own view and can ask to stop the build.
type interactiveRenderer interface {
	Start(ctx context.Context) error
	Interrupted() <-chan struct{}
}

// Run executes the given tasks in series. With no targets the default task runs.
func (a *App) Run(ctx context.Context, targetNames []string, opts RunOptions) error {
	if opts.JSONLog {
		if j, ok := a.deps.Logger.(jsonSwitch); ok {
			j.SetJSON(true)
		}
	}
	if len(targetNames) == 0 {
		targetNames = []string{domain.TaskDefault}
	}

	// 1. Load the configuration
	cwd, err := workDir(opts.Chdir)
	if err != nil {
		return err
	}
	cfg, err := a.configLoader.Load(cwd, opts.ConfigPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	// 2. Build the task graph
	graph, err := pipeline.New(cfg, a.deps).Graph()
	if err != nil {
		return err
	}
	sched, err := scheduler.NewScheduler(graph, a.tracer)
	if err != nil {
		return err
	}
	defer a.finish(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := a.startRenderer(ctx, cancel); err != nil {
		return err
	}

	// 3. Run the targets
	runOpts := domain.Options{
		Production: opts.Production || os.Getenv(domain.ModeEnvVar) == domain.ProductionMode,
	}
	if err := sched.RunAll(ctx, targetNames, runOpts); err != nil {
		return errors.Join(domain.ErrBuildExecutionFailed, err)
	}
	return nil
}

// Tasks lists the tasks every project provides.
func (a *App) Tasks() []domain.TaskInfo {
	return domain.StandardTasks()
}

// startRenderer starts an interactive renderer and cancels the build when the user quits it.
func (a *App) startRenderer(ctx context.Context, cancel context.CancelFunc) error {
	r, ok := a.renderer.(interactiveRenderer)
	if !ok {
		return nil
	}
	if err := r.Start(ctx); err != nil {
		return zerr.Wrap(err, "failed to start renderer")
	}
	go func() {
		select {
		case <-r.Interrupted():
			cancel()
		case <-ctx.Done():
		}
	}()
	return nil
}

func (a *App) finish(ctx context.Context) {
	if s, ok := a.tracer.(shutdowner); ok {
		_ = s.Shutdown(context.WithoutCancel(ctx))
	}
	if a.renderer != nil {
		_ = a.renderer.Stop()
	}
}

func workDir(chdir string) (string, error) {
	if chdir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", zerr.Wrap(err, "failed to resolve working directory")
		}
		return wd, nil
	}
	abs, err := filepath.Abs(chdir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve working directory"), domain.MetaPath, chdir)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", domain.Annotate(domain.ErrConfigInvalid, "chdir", chdir)
	}
	return abs, nil
}
