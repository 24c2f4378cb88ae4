package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/quill/internal/app"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
	"go.trai.ch/quill/internal/core/ports/mocks"
	"go.trai.ch/quill/internal/pipeline"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	root     string
	loader   *mocks.MockConfigLoader
	tracer   *mocks.MockTracer
	span     *mocks.MockSpan
	renderer *mocks.MockRenderer
	log      *mocks.MockLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	return &fixture{
		root:     t.TempDir(),
		loader:   mocks.NewMockConfigLoader(ctrl),
		tracer:   mocks.NewMockTracer(ctrl),
		span:     mocks.NewMockSpan(ctrl),
		renderer: mocks.NewMockRenderer(ctrl),
		log:      mocks.NewMockLogger(ctrl),
	}
}

func (f *fixture) app(tracer ports.Tracer, log ports.Logger) *app.App {
	return app.New(f.loader, tracer, f.renderer, pipeline.Deps{Logger: log})
}

func (f *fixture) config() *domain.Config {
	cfg := domain.DefaultConfig(f.root)
	return &cfg
}

// expectClean sets up a single clean run.
func (f *fixture) expectClean() {
	f.loader.EXPECT().Load(f.root, "").Return(f.config(), nil)
	f.tracer.EXPECT().EmitPlan(gomock.Any(), []string{domain.TaskClean}, gomock.Any(), []string{domain.TaskClean})
	f.tracer.EXPECT().Start(gomock.Any(), domain.TaskClean).
		DoAndReturn(func(ctx context.Context, _ string) (context.Context, ports.Span) {
			return ctx, f.span
		})
	f.span.EXPECT().End()
	f.renderer.EXPECT().Stop().Return(nil)
}

func TestApp_Run(t *testing.T) {
	f := newFixture(t)
	dist := filepath.Join(f.root, "dist")
	require.NoError(t, os.MkdirAll(dist, 0o750))
	f.expectClean()

	err := f.app(f.tracer, f.log).Run(context.Background(), []string{domain.TaskClean}, app.RunOptions{Chdir: f.root})
	require.NoError(t, err)
	assert.NoDirExists(t, dist)
}

func TestApp_Run_ExplicitConfig(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(f.root, "ci/quill.yaml").
		Return(nil, domain.Annotate(domain.ErrConfigReadFailed, domain.MetaPath, "ci/quill.yaml"))

	err := f.app(f.tracer, f.log).Run(context.Background(), nil, app.RunOptions{
		Chdir:      f.root,
		ConfigPath: "ci/quill.yaml",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigReadFailed)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestApp_Run_UnknownTask(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(f.root, "").Return(f.config(), nil)
	f.renderer.EXPECT().Stop().Return(nil)

	err := f.app(f.tracer, f.log).Run(context.Background(), []string{"deploy"}, app.RunOptions{Chdir: f.root})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestApp_Run_MissingChdir(t *testing.T) {
	f := newFixture(t)

	err := f.app(f.tracer, f.log).Run(context.Background(), nil, app.RunOptions{
		Chdir: filepath.Join(f.root, "missing"),
	})
	assert.ErrorIs(t, err, domain.ErrConfigInvalid)
}

func TestApp_Run_ProductionMode(t *testing.T) {
	tests := []struct {
		name string
		env  string
		flag bool
		want bool
	}{
		{name: "development by default", want: false},
		{name: "flag", flag: true, want: true},
		{name: "environment", env: domain.ProductionMode, want: true},
		{name: "other environment", env: "staging", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(domain.ModeEnvVar, tt.env)
			f := newFixture(t)
			f.expectClean()
			if tt.want {
				f.span.EXPECT().SetAttribute(domain.AttrProduction, true)
			}

			err := f.app(f.tracer, f.log).Run(context.Background(), []string{domain.TaskClean}, app.RunOptions{
				Chdir:      f.root,
				Production: tt.flag,
			})
			require.NoError(t, err)
		})
	}
}

type jsonLogger struct {
	ports.Logger
	json bool
}

func (l *jsonLogger) SetJSON(enable bool) { l.json = enable }

type shutdownTracer struct {
	ports.Tracer
	shutdown int
}

func (s *shutdownTracer) Shutdown(context.Context) error {
	s.shutdown++
	return nil
}

func TestApp_Run_SwitchesLoggerAndShutsDownTracer(t *testing.T) {
	f := newFixture(t)
	f.expectClean()
	log := &jsonLogger{Logger: f.log}
	tracer := &shutdownTracer{Tracer: f.tracer}

	err := f.app(tracer, log).Run(context.Background(), []string{domain.TaskClean}, app.RunOptions{
		Chdir:   f.root,
		JSONLog: true,
	})
	require.NoError(t, err)
	assert.True(t, log.json)
	assert.Equal(t, 1, tracer.shutdown)
}

func TestApp_Run_TaskFailure(t *testing.T) {
	f := newFixture(t)
	cfg := f.config()
	cfg.Output = "."
	f.loader.EXPECT().Load(f.root, "").Return(cfg, nil)
	f.tracer.EXPECT().EmitPlan(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())
	f.tracer.EXPECT().Start(gomock.Any(), domain.TaskClean).
		DoAndReturn(func(ctx context.Context, _ string) (context.Context, ports.Span) {
			return ctx, f.span
		})
	f.span.EXPECT().RecordError(gomock.Any())
	f.span.EXPECT().End()
	f.renderer.EXPECT().Stop().Return(nil)

	err := f.app(f.tracer, f.log).Run(context.Background(), []string{domain.TaskClean}, app.RunOptions{Chdir: f.root})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.ErrorIs(t, err, domain.ErrTaskExecutionFailed)
	assert.DirExists(t, f.root)
}

type interactiveRenderer struct {
	*mocks.MockRenderer
	started     bool
	interrupted chan struct{}
}

func (r *interactiveRenderer) Start(context.Context) error {
	r.started = true
	return nil
}

func (r *interactiveRenderer) Interrupted() <-chan struct{} {
	return r.interrupted
}

func TestApp_Run_InterruptCancelsBuild(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(f.root, "").Return(f.config(), nil)
	f.tracer.EXPECT().EmitPlan(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(ctx context.Context, _ []string, _ map[string][]string, _ []string) {
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
				t.Error("build was not cancelled")
			}
		}).MaxTimes(1)
	f.renderer.EXPECT().Stop().Return(nil)

	r := &interactiveRenderer{MockRenderer: f.renderer, interrupted: make(chan struct{})}
	close(r.interrupted)
	a := app.New(f.loader, f.tracer, r, pipeline.Deps{Logger: f.log})

	err := a.Run(context.Background(), []string{domain.TaskClean}, app.RunOptions{Chdir: f.root})
	assert.True(t, r.started)
	assert.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestApp_Tasks(t *testing.T) {
	f := newFixture(t)
	tasks := f.app(f.tracer, f.log).Tasks()
	assert.Equal(t, domain.StandardTasks(), tasks)
}
