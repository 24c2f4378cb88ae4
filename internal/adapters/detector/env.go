// Package detector inspects the environment to choose how output is presented.
package detector

import (
	"os"

	"golang.org/x/term"
)

// OutputMode represents how the application presents task output.
type OutputMode int

// OutputEnvVar overrides the detected output mode: "interactive" or "linear".
const OutputEnvVar = "QUILL_OUTPUT"

const (
	// ModeInteractive targets a terminal: colors and a pseudo terminal for subprocesses.
	ModeInteractive OutputMode = iota
	// ModeLinear targets logs and CI: plain pipes and uncolored output.
	ModeLinear
)

// Mode returns the detected output mode with the OutputEnvVar override applied.
func Mode() OutputMode {
	return ResolveMode(DetectEnvironment(), os.Getenv(OutputEnvVar))
}

// DetectEnvironment returns the output mode suggested by the environment.
// Output is linear when stderr is not a terminal or CI is set.
func DetectEnvironment() OutputMode {
	return detect(term.IsTerminal(int(os.Stderr.Fd())), os.Getenv("CI"))
}

func detect(isTTY bool, ci string) OutputMode {
	if !isTTY || ci == "true" || ci == "1" {
		return ModeLinear
	}
	return ModeInteractive
}

// ResolveMode applies a user override to the detected mode.
// userFlag is one of "auto", "interactive", "linear", "ci", or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "interactive", "tty":
		return ModeInteractive
	case "linear", "ci":
		return ModeLinear
	default:
		return autoDetected
	}
}
