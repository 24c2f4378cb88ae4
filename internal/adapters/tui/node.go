package tui

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grindlemire/graft"
	"github.com/muesli/termenv"
	"go.trai.ch/quill/internal/adapters/detector"
	"go.trai.ch/quill/internal/adapters/linear"
	"go.trai.ch/quill/internal/core/ports"
	"go.trai.ch/quill/internal/ui/output"
)

// NodeID is the unique identifier for the renderer Graft node.
const NodeID graft.ID = "adapter.renderer"

func init() {
	graft.Register(graft.Node[ports.Renderer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Renderer, error) {
			return rendererFor(detector.Mode(), detector.DetectEnvironment()), nil
		},
	})
}

// rendererFor picks the interactive view for terminals and plain lines otherwise.
func rendererFor(mode, detected detector.OutputMode) ports.Renderer {
	if mode == detector.ModeInteractive {
		return NewRenderer(tea.WithOutput(os.Stderr))
	}
	return linear.NewRenderer(nil, nil, linearProfile(detected))
}

// linearProfile keeps colors when linear output was requested on a terminal.
func linearProfile(detected detector.OutputMode) termenv.Profile {
	if detected != detector.ModeInteractive {
		return termenv.Ascii
	}
	return output.ColorProfile()
}
