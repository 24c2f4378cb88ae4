// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/quill/internal/core/domain"
)

// Executor defines the interface for running external programs.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the command and waits for it to exit.
	//
	// Output is streamed to stdout and stderr as it is produced.
	// A non-zero exit status is reported as domain.ErrCommandFailed carrying the exit code.
	Execute(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) error
}
