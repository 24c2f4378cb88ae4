package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/quill/internal/app"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
	"go.trai.ch/quill/internal/core/ports/mocks"
	"go.trai.ch/quill/internal/pipeline"
	"go.uber.org/mock/gomock"
)

type nopSpan struct{}

func (nopSpan) Write(p []byte) (int, error) { return len(p), nil }
func (nopSpan) End() {}
func (nopSpan) RecordError(error) {}
func (nopSpan) SetAttribute(string, any) {}

type nopTracer struct{}

func (nopTracer) Start(ctx context.Context, _ string) (context.Context, ports.Span) {
	return ctx, nopSpan{}
}
func (nopTracer) EmitPlan(context.Context, []string, map[string][]string, []string) {}

type fixture struct {
	loader   *mocks.MockConfigLoader
	executor *mocks.MockExecutor
	renderer *mocks.MockRenderer
	logger   *mocks.MockLogger
	provider ComponentProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		loader:   mocks.NewMockConfigLoader(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
		renderer: mocks.NewMockRenderer(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
	}
	application := app.New(f.loader, nopTracer{}, f.renderer, pipeline.Deps{
		Executor: f.executor,
		Logger:   f.logger,
	})
	f.provider = func(_ context.Context) (*app.Components, error) {
		return &app.Components{App: application, Logger: f.logger}, nil
	}
	return f
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	f := newFixture(t)
	stdout := new(bytes.Buffer)

	exitCode := run(context.Background(), []string{"version"}, stdout, new(bytes.Buffer), f.provider)
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "quill version")
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, error) {
		return nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_SubprocessExitCode verifies that a failed external program sets the exit status.
func TestRun_SubprocessExitCode(t *testing.T) {
	f := newFixture(t)
	root := t.TempDir()
	cfg := domain.DefaultConfig(root)

	f.loader.EXPECT().Load(root, "").Return(&cfg, nil)
	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.Annotate(domain.ErrCommandFailed, domain.MetaExitCode, 3))
	f.renderer.EXPECT().Stop().Return(nil)
	f.logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrCommandFailed)
	})

	exitCode := run(context.Background(), []string{"translations", "-C", root}, new(bytes.Buffer), new(bytes.Buffer), f.provider)
	assert.Equal(t, 3, exitCode)
}

// TestRun_ExecutionError verifies that run returns 1 when the failure carries no exit code.
func TestRun_ExecutionError(t *testing.T) {
	f := newFixture(t)
	root := t.TempDir()

	f.loader.EXPECT().Load(root, "").Return(nil, domain.ErrConfigParseFailed)
	f.logger.EXPECT().Error(gomock.Any())

	exitCode := run(context.Background(), []string{"-C", root}, new(bytes.Buffer), new(bytes.Buffer), f.provider)
	assert.Equal(t, 1, exitCode)
}
