package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/quill/internal/ui/style"
)

var (
	pendingStyle   = lipgloss.NewStyle().Foreground(style.Slate)
	runningStyle   = lipgloss.NewStyle().Foreground(style.Quill).Bold(true)
	doneStyle      = lipgloss.NewStyle().Foreground(style.Green)
	failedStyle    = lipgloss.NewStyle().Foreground(style.Red)
	cancelledStyle = lipgloss.NewStyle().Foreground(style.Yellow)
	selectedStyle  = lipgloss.NewStyle().Foreground(style.Quill).Bold(true)
	detailStyle    = lipgloss.NewStyle().Foreground(style.Slate).Faint(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Quill).
			Foreground(lipgloss.Color("#FFFFFF"))

	listStyle = lipgloss.NewStyle().PaddingRight(2)
	logStyle  = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(style.Slate).
			PaddingLeft(1)
)
