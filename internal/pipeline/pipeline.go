// Package pipeline defines the standard front-end build tasks over a loaded configuration.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
	"go.trai.ch/quill/internal/engine/watch"
)

// Deps are the collaborators behind the standard actions.
type Deps struct {
	Executor   ports.Executor
	Bundler    ports.Bundler
	Stylesheet ports.StylesheetProcessor
	Fetcher    ports.Fetcher
	Globber    ports.Globber
	Watchers   ports.WatcherFactory
	Logger     ports.Logger
}

// Pipeline holds the actions of the standard tasks for one configuration.
type Pipeline struct {
	cfg  *domain.Config
	deps Deps
}

// New creates a Pipeline for cfg.
func New(cfg *domain.Config, deps Deps) *Pipeline {
	return &Pipeline{cfg: cfg, deps: deps}
}

// Graph returns the validated task graph of the pipeline.
func (p *Pipeline) Graph() (*domain.Graph, error) {
	return domain.NewGraph(p.Tasks()...)
}

// Tasks returns the standard tasks in presentation order.
func (p *Pipeline) Tasks() []domain.Task {
	actions := map[string]domain.Action{
		domain.TaskClean:        p.clean,
		domain.TaskTranslations: p.translations,
		domain.TaskCSS:          p.css,
		domain.TaskTemplates:    p.templates,
		domain.TaskOAuth:        p.oauth,
		domain.TaskBuildTests:   p.buildTests,
		domain.TaskBuildApp:     p.buildApp,
		domain.TaskWatch:        p.watch,
		domain.TaskTest:         p.test,
	}
	deps := map[string][]string{
		domain.TaskBuildTests: {domain.TaskTemplates, domain.TaskOAuth},
		domain.TaskBuildApp:   {domain.TaskTemplates, domain.TaskOAuth},
		domain.TaskWatch:      {domain.TaskBuildApp, domain.TaskBuildTests, domain.TaskCSS},
		domain.TaskTest:       {domain.TaskBuildTests},
		domain.TaskBuild:      {domain.TaskBuildTests, domain.TaskBuildApp, domain.TaskCSS},
		domain.TaskProduction: {domain.TaskBuild},
		domain.TaskDefault:    {domain.TaskBuild},
	}

	infos := domain.StandardTasks()
	tasks := make([]domain.Task, 0, len(infos))
	for _, info := range infos {
		t := domain.Task{
			Name:         info.Name,
			Description:  info.Description,
			Dependencies: deps[info.Name],
			Action:       actions[info.Name],
		}
		if info.Name == domain.TaskProduction {
			t.Preset = productionPreset
		}
		tasks = append(tasks, t)
	}
	return tasks
}

func productionPreset(opts domain.Options) domain.Options {
	opts.Production = true
	return opts
}

// Bindings returns the watch bindings: each pattern group and the tasks it re-runs.
func (p *Pipeline) Bindings() []domain.WatchBinding {
	w := p.cfg.Watch
	return []domain.WatchBinding{
		{Patterns: w.App, Tasks: []string{domain.TaskBuildApp, domain.TaskBuildTests}},
		{Patterns: w.Tests, Tasks: []string{domain.TaskBuildTests}},
		{Patterns: w.Templates, Tasks: []string{domain.TaskBuildApp}},
		{Patterns: w.CSS, Tasks: []string{domain.TaskCSS}},
	}
}

func (p *Pipeline) clean(_ context.Context, _ domain.Call) error {
	dir := p.cfg.OutputDir()
	if p.cfg.OutputEnclosesRoot() {
		return domain.Annotate(domain.ErrConfigInvalid, "key", "output", domain.MetaPath, dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return domain.Annotate(errors.Join(domain.ErrCleanFailed, err), domain.MetaPath, dir)
	}
	return nil
}

func (p *Pipeline) translations(ctx context.Context, call domain.Call) error {
	if err := p.ensureOutputDir(); err != nil {
		return err
	}
	if err := p.run(ctx, call, p.cfg.Commands.Translations, "commands.translations"); err != nil {
		return err
	}
	return p.run(ctx, call, p.cfg.Commands.Templates, "commands.templates")
}

func (p *Pipeline) templates(ctx context.Context, call domain.Call) error {
	if err := p.ensureOutputDir(); err != nil {
		return err
	}
	return p.run(ctx, call, p.cfg.Commands.Templates, "commands.templates")
}

func (p *Pipeline) css(ctx context.Context, _ domain.Call) error {
	s := p.cfg.Stylesheet
	data, err := p.deps.Stylesheet.Process(ctx, p.cfg.Path(s.Entry), p.cfg.Path(s.Root))
	if err != nil {
		if s.Strict || ctx.Err() != nil {
			return err
		}
		p.deps.Logger.Error(err)
		p.deps.Logger.Warn("stylesheet not written, continuing")
		return nil
	}
	return writeFile(p.cfg.OutputPath(s.Output), data)
}

func (p *Pipeline) oauth(ctx context.Context, _ domain.Call) error {
	if err := p.ensureOutputDir(); err != nil {
		return err
	}

	path := p.cfg.Path(p.cfg.OAuth.Path)
	if _, err := os.Stat(path); err == nil {
		p.deps.Logger.Info("using existing " + p.cfg.OAuth.Path)
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return domain.Annotate(errors.Join(domain.ErrReadFailed, err), domain.MetaPath, path)
	}

	data, err := p.deps.Fetcher.Fetch(ctx, p.cfg.OAuth.URL)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func (p *Pipeline) buildTests(ctx context.Context, _ domain.Call) error {
	t := p.cfg.Tests
	bundle, err := p.deps.Bundler.Bundle(ctx, domain.BundleRequest{
		Entry:     p.cfg.Path(t.Entry),
		Root:      p.cfg.Root,
		External:  t.External,
		SourceMap: true,
	})
	if err != nil {
		return err
	}

	out, err := p.withVendor(bundle)
	if err != nil {
		return err
	}
	return writeFile(p.cfg.Path(t.Output), out)
}

func (p *Pipeline) buildApp(ctx context.Context, call domain.Call) error {
	a := p.cfg.App
	bundle, err := p.deps.Bundler.Bundle(ctx, domain.BundleRequest{
		Entry:    p.cfg.Path(a.Entry),
		Root:     p.cfg.Root,
		External: a.External,
	})
	if err != nil {
		return err
	}

	out, err := p.withVendor(bundle)
	if err != nil {
		return err
	}
	if call.Options.Production {
		if out, err = p.deps.Bundler.Minify(ctx, out); err != nil {
			return domain.Annotate(err, domain.MetaPath, p.cfg.OutputPath(a.Output))
		}
	}
	return writeFile(p.cfg.OutputPath(a.Output), out)
}

func (p *Pipeline) watch(ctx context.Context, call domain.Call) error {
	w, err := p.deps.Watchers()
	if err != nil {
		return domain.Annotate(errors.Join(domain.ErrWatchFailed, err), domain.MetaPath, p.cfg.Root)
	}

	session, err := watch.NewSession(w, p.deps.Globber, call.Invoker, p.deps.Logger, watch.Config{
		Root:     p.cfg.Root,
		Ignore:   []string{p.cfg.OutputDir()},
		Debounce: p.cfg.Watch.Debounce,
		Bindings: p.Bindings(),
		Options:  call.Options,
	})
	if err != nil {
		return err
	}
	return session.Run(ctx)
}

func (p *Pipeline) test(ctx context.Context, call domain.Call) error {
	return p.run(ctx, call, p.cfg.Commands.Test, "commands.test")
}

// withVendor prepends the vendor scripts to bundle, newline separated, in pattern group order.
func (p *Pipeline) withVendor(bundle []byte) ([]byte, error) {
	files, err := p.deps.Globber.Expand(p.cfg.Root, p.cfg.VendorScripts)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 && !p.cfg.VendorScripts.IsEmpty() {
		p.deps.Logger.Warn("no vendor scripts matched " + p.cfg.VendorScripts.Name() + " patterns")
	}

	parts := make([][]byte, 0, len(files)+1)
	for _, f := range files {
		data, err := os.ReadFile(f) //nolint:gosec // vendor paths come from the project
		if err != nil {
			return nil, domain.Annotate(errors.Join(domain.ErrReadFailed, err), domain.MetaPath, f)
		}
		parts = append(parts, data)
	}
	parts = append(parts, bundle)
	return bytes.Join(parts, []byte("\n")), nil
}

func (p *Pipeline) run(ctx context.Context, call domain.Call, argv []string, key string) error {
	cmd, ok := domain.NewCommand(argv, p.cfg.Root)
	if !ok {
		return domain.Annotate(domain.ErrConfigInvalid, "key", key)
	}
	return p.deps.Executor.Execute(ctx, cmd, call.Output, call.Output)
}

func (p *Pipeline) ensureOutputDir() error {
	dir := p.cfg.OutputDir()
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return domain.Annotate(errors.Join(domain.ErrCreateDirFailed, err), domain.MetaPath, dir)
	}
	return nil
}

// writeFile replaces path with data, creating parent directories.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return domain.Annotate(errors.Join(domain.ErrCreateDirFailed, err), domain.MetaPath, filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, domain.FilePerm); err != nil {
		return domain.Annotate(errors.Join(domain.ErrWriteFailed, err), domain.MetaPath, path)
	}
	return nil
}
