package linear_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/quill/internal/adapters/linear"
	"go.trai.ch/quill/internal/core/domain"
)

func newRenderer() (*linear.Renderer, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return linear.NewRenderer(&stdout, &stderr, termenv.Ascii), &stdout, &stderr
}

func TestRenderer_TaskLifecycle(t *testing.T) {
	r, stdout, stderr := newRenderer()

	r.OnPlanEmit([]string{"templates", "oauth", "build-app"}, map[string][]string{
		"build-app": {"templates", "oauth"},
	}, []string{"build-app"})
	assert.Equal(t, "Running build-app: templates → oauth → build-app\n", stderr.String())
	stderr.Reset()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.OnTaskStart("span1", "", "templates", start)
	r.OnTaskLog("span1", []byte("first line\n"))
	r.OnTaskLog("span1", []byte("second line\n"))
	r.OnTaskComplete("span1", start.Add(120*time.Millisecond), nil)

	assert.Equal(t, "[templates] first line\n[templates] second line\n", stdout.String())
	assert.Equal(t, "[templates] Starting...\n[templates] ✓ Completed in 120ms\n", stderr.String())
	require.NoError(t, r.Stop())
}

func TestRenderer_PartialLines(t *testing.T) {
	r, stdout, _ := newRenderer()

	start := time.Now()
	r.OnTaskStart("span1", "", "css", start)

	r.OnTaskLog("span1", []byte("partial"))
	assert.Empty(t, stdout.String())

	r.OnTaskLog("span1", []byte(" line\r\n"))
	assert.Equal(t, "[css] partial line\n", stdout.String())

	r.OnTaskLog("span1", []byte("unflushed"))
	r.OnTaskComplete("span1", start.Add(50*time.Millisecond), nil)
	assert.Equal(t, "[css] partial line\n[css] unflushed\n", stdout.String())
}

func TestRenderer_TaskError(t *testing.T) {
	r, stdout, stderr := newRenderer()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.OnTaskStart("span1", "", "test", start)
	r.OnTaskLog("span1", []byte("1 failing\n"))
	r.OnTaskComplete("span1", start.Add(2*time.Second), errors.New("command failed"))

	assert.Equal(t, "[test] 1 failing\n", stdout.String())
	assert.Contains(t, stderr.String(), "[test] ✗ Failed after 2s: command failed\n")
}

func TestRenderer_FailureWithExitStatus(t *testing.T) {
	r, _, stderr := newRenderer()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.OnTaskStart("span1", "", "test", start)
	err := domain.Annotate(errors.New("command failed"), domain.MetaExitCode, 3)
	r.OnTaskComplete("span1", start.Add(time.Second), err)

	assert.Equal(t,
		"[test] Starting...\n[test] ✗ Failed after 1s (exit status 3): command failed\n",
		stderr.String(),
	)
}

func TestRenderer_Cancelled(t *testing.T) {
	r, _, stderr := newRenderer()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.OnTaskStart("span1", "", "test", start)
	r.OnTaskComplete("span1", start.Add(1500*time.Millisecond), errors.Join(context.Canceled, errors.New("interrupted")))

	assert.Contains(t, stderr.String(), "[test] ! Cancelled after 1.5s\n")
}

func TestRenderer_WatchRerun(t *testing.T) {
	r, stdout, stderr := newRenderer()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.OnPlanEmit([]string{"watch"}, nil, []string{"watch"})
	r.OnTaskStart("watch", "", "watch", start)
	stderr.Reset()

	r.OnPlanEmit([]string{"css"}, map[string][]string{"css": nil}, []string{"css"})
	r.OnTaskStart("css1", "watch", "css", start.Add(time.Second))
	r.OnTaskLog("css1", []byte("inlined\n"))
	r.OnTaskComplete("css1", start.Add(1200*time.Millisecond), nil)

	assert.Equal(t, "[css] inlined\n", stdout.String())
	assert.Equal(t,
		"Re-running css: css\n[css] Starting (watch)...\n[css] ✓ Completed in 200ms\n",
		stderr.String(),
	)
}

func TestRenderer_UnknownSpan(t *testing.T) {
	r, stdout, stderr := newRenderer()

	r.OnTaskLog("missing", []byte("ignored\n"))
	r.OnTaskComplete("missing", time.Now(), nil)

	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRenderer_StopFlushes(t *testing.T) {
	r, stdout, _ := newRenderer()

	r.OnTaskStart("span1", "", "watch", time.Now())
	r.OnTaskLog("span1", []byte("still running"))

	require.NoError(t, r.Stop())
	assert.Equal(t, "[watch] still running\n", stdout.String())
}

func TestRenderer_ConcurrentTasks(t *testing.T) {
	r, stdout, _ := newRenderer()

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.OnTaskStart(id, "", id, time.Now())
			r.OnTaskLog(id, []byte("line\n"))
			r.OnTaskComplete(id, time.Now(), nil)
		}()
	}
	wg.Wait()

	out := stdout.String()
	for _, id := range []string{"a", "b", "c"} {
		assert.Contains(t, out, "["+id+"] line\n")
	}
}
