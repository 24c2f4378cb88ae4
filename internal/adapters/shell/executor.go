// Package shell runs external programs for pipeline tasks.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec, optionally behind a pseudo terminal.
type Executor struct {
	logger ports.Logger
	usePTY bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithPTY runs commands inside a pseudo terminal so tools keep their colored output.
// Stdout and stderr are merged in that mode. The option is ignored when no pty can be opened.
func WithPTY(enabled bool) Option {
	return func(e *Executor) {
		e.usePTY = enabled
	}
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger, opts ...Option) *Executor {
	e := &Executor{logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	if e.usePTY && !ptyAvailable() {
		e.usePTY = false
	}
	return e
}

func ptyAvailable() bool {
	ptmx, tty, err := pty.Open()
	if err != nil {
		return false
	}
	_ = tty.Close()
	_ = ptmx.Close()
	return true
}

// Execute runs cmd and waits for it to complete.
// A nil stdout or stderr forwards that stream to the logger line by line.
func (e *Executor) Execute(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) error {
	if stdout == nil {
		lw := &logWriter{logger: e.logger, level: levelInfo}
		defer func() { _ = lw.Close() }()
		stdout = lw
	}
	if stderr == nil {
		lw := &logWriter{logger: e.logger, level: levelWarn}
		defer func() { _ = lw.Close() }()
		stderr = lw
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...) //nolint:gosec // commands come from the project configuration
	c.Dir = cmd.Dir
	c.Env = resolveEnvironment(os.Environ(), cmd.Env)

	var wait func() error
	var err error
	if e.usePTY {
		wait, err = startPTY(c, stdout)
	} else {
		wait, err = startPipes(c, stdout, stderr)
	}
	if err != nil {
		return domain.Annotate(errors.Join(domain.ErrCommandStartFailed, err), domain.MetaCommand, cmd.String())
	}

	if err := wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Join(ctxErr, err)
		}
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return domain.Annotate(
			errors.Join(domain.ErrCommandFailed, err),
			domain.MetaCommand, cmd.String(),
			domain.MetaExitCode, exitCode,
		)
	}
	return nil
}

func startPipes(c *exec.Cmd, stdout, stderr io.Writer) (func() error, error) {
	c.Stdout = stdout
	c.Stderr = stderr
	if err := c.Start(); err != nil {
		return nil, err
	}
	return c.Wait, nil
}

func startPTY(c *exec.Cmd, stdout io.Writer) (func() error, error) {
	ptmx, err := pty.Start(c)
	if err != nil {
		return nil, err
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// Reading the master fails with EIO once the child side is closed.
		_, _ = io.Copy(stdout, ptmx)
	}()

	return func() error {
		err := c.Wait()
		<-ioDone
		_ = ptmx.Close()
		return err
	}, nil
}

type logLevel uint8

const (
	levelInfo logLevel = iota
	levelWarn
)

// logWriter forwards complete lines to a logger.
type logWriter struct {
	logger ports.Logger
	level  logLevel
	buf    []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

// Close flushes a trailing partial line.
func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	// PTYs terminate lines with \r\n.
	msg := strings.TrimSuffix(string(line), "\r")
	if w.logger == nil {
		return
	}
	if w.level == levelWarn {
		w.logger.Warn(msg)
		return
	}
	w.logger.Info(msg)
}

// resolveEnvironment applies the command's variables on top of the inherited environment.
// The result is sorted by key.
func resolveEnvironment(sysEnv []string, extra map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(extra))
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range extra {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for _, k := range slices.Sorted(maps.Keys(envMap)) {
		result = append(result, k+"="+envMap[k])
	}
	return result
}
