package tui

import (
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/quill/internal/adapters/detector"
	"go.trai.ch/quill/internal/adapters/linear"
)

func TestRendererFor(t *testing.T) {
	assert.IsType(t, &Renderer{}, rendererFor(detector.ModeInteractive, detector.ModeInteractive))
	assert.IsType(t, &linear.Renderer{}, rendererFor(detector.ModeLinear, detector.ModeLinear))
	assert.IsType(t, &linear.Renderer{}, rendererFor(detector.ModeLinear, detector.ModeInteractive))
}

func TestLinearProfile(t *testing.T) {
	assert.Equal(t, termenv.Ascii, linearProfile(detector.ModeLinear))

	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, linearProfile(detector.ModeInteractive))
}
