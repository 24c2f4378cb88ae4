package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/quill/internal/ui/style"
)

// View renders the task list beside the output of the selected task.
func (m *Model) View() string {
	if m.width == 0 {
		return "Starting..."
	}

	header := titleStyle.Render("quill") + " " + strings.Join(m.Targets, ", ")
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		listStyle.Width(m.listWidth()).Render(m.list()),
		logStyle.Render(m.logPane()),
	)
	return header + "\n\n" + body
}

func (m *Model) list() string {
	end := min(m.listOffset+m.listHeight(), len(m.Rows))
	lines := make([]string, 0, end-m.listOffset)
	for i := m.listOffset; i < end; i++ {
		lines = append(lines, m.renderRow(i, m.Rows[i]))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(i int, row *Row) string {
	cursor := "  "
	if i == m.Selected {
		cursor = selectedStyle.Render("> ")
	}
	line := statusStyle(row.Status).Render(icon(row.Status) + " " + row.Name)
	if d := describe(row, time.Now()); d != "" {
		line += " " + detailStyle.Render(d)
	}
	return cursor + line
}

func (m *Model) logPane() string {
	row := m.selected()
	if row == nil {
		return detailStyle.Render("waiting for tasks")
	}

	title := row.Name
	if row.Trigger != "" {
		title += " (" + row.Trigger + ")"
	}
	if !m.Follow {
		title += " [scroll: pgup/pgdown, esc to follow]"
	}
	return detailStyle.Render(title) + "\n" + row.Term.View()
}

func icon(s Status) string {
	switch s {
	case StatusRunning:
		return "●"
	case StatusDone:
		return style.Check
	case StatusFailed:
		return style.Cross
	case StatusCancelled:
		return style.Warning
	default:
		return "○"
	}
}

func statusStyle(s Status) lipgloss.Style {
	switch s {
	case StatusRunning:
		return runningStyle
	case StatusDone:
		return doneStyle
	case StatusFailed:
		return failedStyle
	case StatusCancelled:
		return cancelledStyle
	default:
		return pendingStyle
	}
}

// describe summarizes the timing, exit status and run count of a row.
func describe(row *Row, now time.Time) string {
	var parts []string
	switch row.Status {
	case StatusRunning:
		parts = append(parts, now.Sub(row.Started).Truncate(100*time.Millisecond).String())
	case StatusDone, StatusFailed, StatusCancelled:
		parts = append(parts, row.Ended.Sub(row.Started).Round(time.Millisecond).String())
	}
	if row.ExitCode != 0 {
		parts = append(parts, fmt.Sprintf("exit %d", row.ExitCode))
	}
	if row.Runs > 1 {
		parts = append(parts, fmt.Sprintf("run %d", row.Runs))
	}
	return strings.Join(parts, ", ")
}
