package tui_test

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/quill/internal/adapters/tui"
	"go.trai.ch/quill/internal/core/domain"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newModel(t *testing.T) *tui.Model {
	t.Helper()
	m := tui.NewModel(nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	return m
}

func statuses(m *tui.Model) map[string]tui.Status {
	out := make(map[string]tui.Status, len(m.Rows))
	for _, row := range m.Rows {
		out[row.Name] = row.Status
	}
	return out
}

func TestModel_Lifecycle(t *testing.T) {
	m := newModel(t)

	m.Update(tui.PlanMsg{Tasks: []string{"css", "build-app"}, Targets: []string{"build-app"}})
	require.Len(t, m.Rows, 2)
	assert.Equal(t, []string{"build-app"}, m.Targets)
	assert.Equal(t, map[string]tui.Status{"css": tui.StatusPending, "build-app": tui.StatusPending}, statuses(m))

	m.Update(tui.TaskStartMsg{SpanID: "1", Name: "css", Time: t0})
	m.Update(tui.TaskLogMsg{SpanID: "1", Data: []byte("compiled style.css\n")})
	m.Update(tui.TaskCompleteMsg{SpanID: "1", Time: t0.Add(time.Second)})

	m.Update(tui.TaskStartMsg{SpanID: "2", Name: "build-app", Time: t0.Add(time.Second)})
	assert.Equal(t, 1, m.Selected, "selection follows the running task")

	err := domain.Annotate(errors.New("bundle failed"), domain.MetaExitCode, 2)
	m.Update(tui.TaskCompleteMsg{SpanID: "2", Time: t0.Add(3 * time.Second), Err: err})

	assert.Equal(t, map[string]tui.Status{"css": tui.StatusDone, "build-app": tui.StatusFailed}, statuses(m))
	assert.Equal(t, 2, m.Rows[1].ExitCode)
	assert.Contains(t, m.Rows[0].Term.View(), "compiled style.css")
	assert.Contains(t, m.Rows[1].Term.View(), "bundle failed")
	assert.Equal(t, 2*time.Second, m.Rows[1].Ended.Sub(m.Rows[1].Started))
}

func TestModel_Cancelled(t *testing.T) {
	m := newModel(t)
	m.Update(tui.TaskStartMsg{SpanID: "1", Name: "test", Time: t0})
	m.Update(tui.TaskCompleteMsg{SpanID: "1", Time: t0, Err: errors.Join(context.Canceled, errors.New("stopped"))})

	assert.Equal(t, tui.StatusCancelled, m.Rows[0].Status)
	assert.Zero(t, m.Rows[0].ExitCode)
}

func TestModel_WatchRerunReusesRow(t *testing.T) {
	m := newModel(t)
	m.Update(tui.TaskStartMsg{SpanID: "w", Name: "watch", Time: t0})
	m.Update(tui.TaskStartMsg{SpanID: "1", ParentID: "w", Name: "css", Time: t0})
	m.Update(tui.TaskLogMsg{SpanID: "1", Data: []byte("first\n")})
	m.Update(tui.TaskCompleteMsg{SpanID: "1", Time: t0})

	m.Update(tui.PlanMsg{Tasks: []string{"css"}, Targets: []string{"css"}})
	assert.Empty(t, m.Targets, "a plan emitted while tasks run keeps the targets")
	assert.Equal(t, tui.StatusPending, m.Rows[1].Status)
	assert.Equal(t, tui.StatusRunning, m.Rows[0].Status, "a running task stays running on a new plan")

	m.Update(tui.TaskStartMsg{SpanID: "2", ParentID: "w", Name: "css", Time: t0.Add(time.Second)})
	m.Update(tui.TaskLogMsg{SpanID: "2", Data: []byte("second\n")})

	require.Len(t, m.Rows, 2)
	css := m.Rows[1]
	assert.Equal(t, 2, css.Runs)
	assert.Equal(t, "watch", css.Trigger)
	assert.Equal(t, tui.StatusRunning, css.Status)
	assert.Contains(t, css.Term.View(), "first")
	assert.Contains(t, css.Term.View(), "second")
}

func TestModel_IgnoresUnknownSpans(t *testing.T) {
	m := newModel(t)
	m.Update(tui.TaskLogMsg{SpanID: "x", Data: []byte("lost")})
	m.Update(tui.TaskCompleteMsg{SpanID: "x", Time: t0})
	assert.Empty(t, m.Rows)
}

func TestModel_Navigation(t *testing.T) {
	m := newModel(t)
	m.Update(tui.PlanMsg{Tasks: []string{"a", "b", "c"}})
	m.Update(tui.TaskStartMsg{SpanID: "1", Name: "c", Time: t0})
	require.Equal(t, 2, m.Selected)

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, m.Selected)
	assert.False(t, m.Follow)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 0, m.Selected, "selection stops at the first row")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, m.Selected)

	m.Update(tui.TaskCompleteMsg{SpanID: "1", Time: t0})
	m.Update(tui.TaskStartMsg{SpanID: "2", Name: "a", Time: t0})
	assert.Equal(t, 1, m.Selected, "selection stays put while not following")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.Follow)
	assert.Equal(t, 0, m.Selected, "esc jumps to the running task")
}

func TestModel_QuitInterrupts(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyCtrlC},
	} {
		t.Run(key.String(), func(t *testing.T) {
			var interrupted int
			m := tui.NewModel(func() { interrupted++ })

			_, cmd := m.Update(key)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
			assert.Equal(t, 1, interrupted)
		})
	}
}

func TestModel_View(t *testing.T) {
	m := tui.NewModel(nil)
	assert.Equal(t, "Starting...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	assert.Contains(t, m.View(), "waiting for tasks")

	m.Update(tui.PlanMsg{Tasks: []string{"css", "build-app"}, Targets: []string{"build-app"}})
	m.Update(tui.TaskStartMsg{SpanID: "1", Name: "css", Time: t0})
	m.Update(tui.TaskLogMsg{SpanID: "1", Data: []byte("hello from css\n")})

	view := m.View()
	assert.Contains(t, view, "quill")
	assert.Contains(t, view, "build-app")
	assert.Contains(t, view, "hello from css")
}
