package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/quill/internal/core/domain"
)

const (
	listWidthRatio = 0.3
	chromeWidth    = 4
	headerLines    = 2
	tickInterval   = 200 * time.Millisecond
)

// Status is the state of a task row.
type Status int

const (
	// StatusPending marks a planned task that has not started.
	StatusPending Status = iota
	// StatusRunning marks a task in progress.
	StatusRunning
	// StatusDone marks a task that succeeded.
	StatusDone
	// StatusFailed marks a task that failed.
	StatusFailed
	// StatusCancelled marks a task stopped by cancellation.
	StatusCancelled
)

// Row is a task in the list. A row lives across runs: watch re-runs reuse it
// and append to its terminal.
type Row struct {
	Name     string
	Status   Status
	Trigger  string
	Runs     int
	ExitCode int
	Started  time.Time
	Ended    time.Time
	Term     *Vterm
}

// Messages sent by the Renderer.
type (
	// PlanMsg announces the tasks of an invocation in execution order.
	PlanMsg struct {
		Tasks   []string
		Targets []string
	}
	// TaskStartMsg announces a task span.
	TaskStartMsg struct {
		SpanID   string
		ParentID string
		Name     string
		Time     time.Time
	}
	// TaskLogMsg carries output of a task span.
	TaskLogMsg struct {
		SpanID string
		Data   []byte
	}
	// TaskCompleteMsg ends a task span.
	TaskCompleteMsg struct {
		SpanID string
		Time   time.Time
		Err    error
	}

	tickMsg time.Time
)

// Model is the Bubble Tea model of the interactive view.
type Model struct {
	Targets  []string
	Rows     []*Row
	Selected int
	// Follow keeps the selection on the most recently started task.
	Follow bool

	byName map[string]*Row
	bySpan map[string]*Row

	width, height int
	listOffset    int

	interrupt func()
}

// NewModel creates an empty model. interrupt is called when the user asks to stop.
func NewModel(interrupt func()) *Model {
	return &Model{
		Follow:    true,
		byName:    make(map[string]*Row),
		bySpan:    make(map[string]*Row),
		interrupt: interrupt,
	}
}

// Init starts the clock that refreshes running timers.
func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update applies a message to the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.key(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resizeTerms()
		m.ensureVisible()
	case tickMsg:
		return m, tick()
	case PlanMsg:
		m.plan(msg)
	case TaskStartMsg:
		m.start(msg)
	case TaskLogMsg:
		if row, ok := m.bySpan[msg.SpanID]; ok {
			_, _ = row.Term.Write(msg.Data)
		}
	case TaskCompleteMsg:
		m.complete(msg)
	}
	return m, nil
}

func (m *Model) key(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.interrupt != nil {
			m.interrupt()
		}
		return tea.Quit
	case "k", "up":
		m.choose(m.Selected - 1)
	case "j", "down":
		m.choose(m.Selected + 1)
	case "esc":
		m.Follow = true
		for i := len(m.Rows) - 1; i >= 0; i-- {
			if m.Rows[i].Status == StatusRunning {
				m.Selected = i
				break
			}
		}
		m.ensureVisible()
		if row := m.selected(); row != nil {
			row.Term.ScrollToEnd()
		}
	case "pgup":
		m.scroll(-1)
	case "pgdown":
		m.scroll(1)
	}
	return nil
}

func (m *Model) choose(i int) {
	if i < 0 || i >= len(m.Rows) {
		return
	}
	m.Selected = i
	m.Follow = false
	m.ensureVisible()
}

func (m *Model) scroll(pages int) {
	if row := m.selected(); row != nil {
		row.Term.Scroll(pages * row.Term.Height())
	}
}

// plan adds the rows of newly planned tasks and resets the planned rows that are not running.
func (m *Model) plan(msg PlanMsg) {
	if len(m.bySpan) == 0 {
		m.Targets = append([]string(nil), msg.Targets...)
	}
	for _, name := range msg.Tasks {
		row := m.row(name)
		if row.Status != StatusRunning {
			row.Status = StatusPending
		}
	}
}

func (m *Model) start(msg TaskStartMsg) {
	row := m.row(msg.Name)
	if row.Runs > 0 {
		_, _ = row.Term.Write([]byte("\r\n"))
	}
	row.Runs++
	row.Status = StatusRunning
	row.Started, row.Ended = msg.Time, time.Time{}
	row.ExitCode = 0
	row.Trigger = ""
	if parent, ok := m.bySpan[msg.ParentID]; ok {
		row.Trigger = parent.Name
	}
	m.bySpan[msg.SpanID] = row

	if m.Follow {
		for i, r := range m.Rows {
			if r == row {
				m.Selected = i
				break
			}
		}
		m.ensureVisible()
		row.Term.ScrollToEnd()
	}
}

func (m *Model) complete(msg TaskCompleteMsg) {
	row, ok := m.bySpan[msg.SpanID]
	if !ok {
		return
	}
	delete(m.bySpan, msg.SpanID)
	row.Ended = msg.Time

	switch code, hasCode := domain.ExitCode(msg.Err); {
	case msg.Err == nil:
		row.Status = StatusDone
	case errors.Is(msg.Err, context.Canceled):
		row.Status = StatusCancelled
	default:
		row.Status = StatusFailed
		if hasCode {
			row.ExitCode = code
		}
		_, _ = fmt.Fprintf(row.Term, "\r\n%s\r\n", msg.Err)
	}
}

func (m *Model) row(name string) *Row {
	if row, ok := m.byName[name]; ok {
		return row
	}
	row := &Row{Name: name, Term: NewVterm()}
	if m.width > 0 {
		row.Term.Resize(m.logWidth(), m.logHeight())
	}
	m.Rows = append(m.Rows, row)
	m.byName[name] = row
	return row
}

func (m *Model) selected() *Row {
	if m.Selected >= 0 && m.Selected < len(m.Rows) {
		return m.Rows[m.Selected]
	}
	return nil
}

func (m *Model) resizeTerms() {
	for _, row := range m.Rows {
		row.Term.Resize(m.logWidth(), m.logHeight())
	}
}

func (m *Model) listWidth() int {
	return int(float64(m.width) * listWidthRatio)
}

func (m *Model) logWidth() int {
	return max(m.width-m.listWidth()-chromeWidth, 1)
}

func (m *Model) logHeight() int {
	return max(m.height-headerLines-1, 1)
}

func (m *Model) listHeight() int {
	return max(m.height-headerLines, 1)
}

func (m *Model) ensureVisible() {
	h := m.listHeight()
	if m.Selected < m.listOffset {
		m.listOffset = m.Selected
	} else if m.Selected >= m.listOffset+h {
		m.listOffset = m.Selected - h + 1
	}
}
