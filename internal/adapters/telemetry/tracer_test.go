package telemetry_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/quill/internal/adapters/telemetry"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type event struct {
	kind   string
	spanID string
	data   string
	err    error
}

type recordingRenderer struct {
	mu     sync.Mutex
	events []event
}

func (r *recordingRenderer) add(e event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingRenderer) OnPlanEmit(tasks []string, _ map[string][]string, _ []string) {
	r.add(event{kind: "plan", data: tasks[len(tasks)-1]})
}

func (r *recordingRenderer) OnTaskStart(spanID, _, name string, _ time.Time) {
	r.add(event{kind: "start", spanID: spanID, data: name})
}

func (r *recordingRenderer) OnTaskLog(spanID string, data []byte) {
	r.add(event{kind: "log", spanID: spanID, data: string(data)})
}

func (r *recordingRenderer) OnTaskComplete(spanID string, _ time.Time, err error) {
	r.add(event{kind: "complete", spanID: spanID, err: err})
}

func (r *recordingRenderer) Stop() error { return nil }

func TestTracer_SpanLifecycle(t *testing.T) {
	renderer := &recordingRenderer{}
	tracer := telemetry.NewTracer(renderer)
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	_, span := tracer.Start(context.Background(), "templates")
	_, err := span.Write([]byte("generated 12 templates\n"))
	require.NoError(t, err)
	span.End()

	require.Len(t, renderer.events, 3)
	start, log, done := renderer.events[0], renderer.events[1], renderer.events[2]

	assert.Equal(t, "start", start.kind)
	assert.Equal(t, "templates", start.data)
	assert.Equal(t, event{kind: "log", spanID: start.spanID, data: "generated 12 templates\n"}, log)
	assert.Equal(t, "complete", done.kind)
	assert.Equal(t, start.spanID, done.spanID)
	assert.NoError(t, done.err)
}

func TestTracer_RecordError(t *testing.T) {
	renderer := &recordingRenderer{}
	tracer := telemetry.NewTracer(renderer)
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	_, span := tracer.Start(context.Background(), "test")
	span.RecordError(errors.New("command failed"))
	span.End()

	require.Len(t, renderer.events, 2)
	assert.EqualError(t, renderer.events[1].err, "command failed")
}

func TestTracer_EmitPlan(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRenderer := mocks.NewMockRenderer(ctrl)

	sr := tracetest.NewSpanRecorder()
	tracer := telemetry.NewTracer(mockRenderer, sdktrace.WithSpanProcessor(sr))
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	plan := []string{"templates", "oauth", "build-app"}
	deps := map[string][]string{"build-app": {"templates", "oauth"}}
	targets := []string{"build-app"}

	mockRenderer.EXPECT().OnPlanEmit(plan, deps, targets).Times(2)
	mockRenderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), "run", gomock.Any())
	mockRenderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil)

	// Without a recording span only the renderer hears about the plan.
	tracer.EmitPlan(context.Background(), plan, deps, targets)

	ctx, span := tracer.Start(context.Background(), "run")
	tracer.EmitPlan(ctx, plan, deps, targets)
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	events := ended[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "plan_emitted", events[0].Name)
}

func TestTracer_NilRenderer(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tracer := telemetry.NewTracer(nil, sdktrace.WithSpanProcessor(sr))
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	_, span := tracer.Start(context.Background(), "css")
	n, err := span.Write([]byte("inlined 3 imports"))
	require.NoError(t, err)
	assert.Equal(t, 17, n)
	span.SetAttribute(domain.AttrProduction, true)
	span.SetAttribute("bytes", 42)
	span.SetAttribute("entry", "style/style.css")
	span.SetAttribute("other", time.Second)
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Contains(t, ended[0].Attributes(), attribute.Bool(domain.AttrProduction, true))
	assert.Contains(t, ended[0].Attributes(), attribute.Int("bytes", 42))
	assert.Contains(t, ended[0].Attributes(), attribute.String("entry", "style/style.css"))
	assert.Contains(t, ended[0].Attributes(), attribute.String("other", "1s"))
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "log", ended[0].Events()[0].Name)
}
