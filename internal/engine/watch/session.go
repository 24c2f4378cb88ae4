// Package watch re-runs tasks when files matching their pattern groups change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// Config describes a watch session.
type Config struct {
	// Root is the directory watched recursively.
	Root string
	// Ignore lists absolute directories excluded from watching, such as the output directory.
	Ignore []string
	// Debounce is the quiet period before a binding's tasks re-run.
	Debounce time.Duration
	// Bindings tie pattern groups to the tasks they re-run.
	Bindings []domain.WatchBinding
	// Options are passed to every re-run.
	Options domain.Options
}

// Session observes the file system and re-runs bound tasks through an Invoker.
type Session struct {
	watcher ports.Watcher
	invoker domain.Invoker
	logger  ports.Logger
	cfg     Config

	bindings []*binding

	// slot admits one re-run at a time across all bindings; bindings share tasks and outputs.
	slot chan struct{}

	mu     sync.Mutex
	closed bool
	reruns errgroup.Group
}

type fingerprint struct {
	exists bool
	sum    uint64
}

// binding is the runtime state of one WatchBinding.
// At most one re-run of a binding is in flight; changes seen meanwhile mark it dirty.
type binding struct {
	name    string
	matcher ports.Matcher
	tasks   []string

	debouncer *Debouncer

	mu      sync.Mutex
	running bool
	dirty   bool
	pending []string
	prints  map[string]fingerprint
}

// NewSession compiles the bindings of cfg. Invalid patterns are reported before anything is watched.
func NewSession(
	watcher ports.Watcher,
	globber ports.Globber,
	invoker domain.Invoker,
	logger ports.Logger,
	cfg Config,
) (*Session, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = domain.DefaultDebounce
	}

	s := &Session{
		watcher: watcher,
		invoker: invoker,
		logger:  logger,
		cfg:     cfg,
		slot:    make(chan struct{}, 1),
	}

	for _, wb := range cfg.Bindings {
		matcher, err := globber.Compile(wb.Patterns)
		if err != nil {
			return nil, err
		}
		s.bindings = append(s.bindings, &binding{
			name:    wb.Patterns.Name(),
			matcher: matcher,
			tasks:   append([]string(nil), wb.Tasks...),
			prints:  make(map[string]fingerprint),
		})
	}
	return s, nil
}

// Run watches until ctx is done. Re-run failures are logged and do not end the session.
func (s *Session) Run(ctx context.Context) error {
	if err := s.watcher.Start(ctx, s.cfg.Root, s.cfg.Ignore...); err != nil {
		_ = s.watcher.Stop()
		return domain.Annotate(errors.Join(domain.ErrWatchFailed, err), domain.MetaPath, s.cfg.Root)
	}

	for _, b := range s.bindings {
		b.debouncer = NewDebouncer(s.cfg.Debounce, func(paths []string) {
			s.schedule(ctx, b, paths)
		})
	}

	s.logger.Info("watching " + s.cfg.Root + " for changes")

	for event := range s.watcher.Events() {
		rel, ok := s.relative(event.Path)
		if !ok {
			continue
		}
		for _, b := range s.bindings {
			if b.matcher.Match(rel) {
				b.debouncer.Add(rel)
			}
		}
	}

	s.shutdown()

	if ctx.Err() != nil {
		return nil
	}
	return domain.Annotate(domain.ErrWatchFailed, domain.MetaPath, s.cfg.Root)
}

func (s *Session) shutdown() {
	for _, b := range s.bindings {
		b.debouncer.Stop()
	}
	_ = s.watcher.Stop()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	_ = s.reruns.Wait()
}

// relative converts an absolute event path to a slash-separated path under the root.
func (s *Session) relative(path string) (string, bool) {
	rel, err := filepath.Rel(s.cfg.Root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

// schedule starts a re-run of b, or marks it dirty if one is already in flight.
func (s *Session) schedule(ctx context.Context, b *binding, paths []string) {
	b.mu.Lock()
	if b.running {
		b.dirty = true
		b.pending = append(b.pending, paths...)
		b.mu.Unlock()
		return
	}
	b.running = true
	b.mu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
		return
	}
	s.reruns.Go(func() error {
		s.drain(ctx, b, paths)
		return nil
	})
	s.mu.Unlock()
}

// drain re-runs b until no change arrived during the previous run.
func (s *Session) drain(ctx context.Context, b *binding, paths []string) {
	for {
		if ctx.Err() != nil {
			break
		}
		if prints, diff := s.fingerprints(b, paths); diff && s.rerun(ctx, b, paths) {
			b.commit(prints)
		}

		b.mu.Lock()
		if !b.dirty {
			b.running = false
			b.mu.Unlock()
			return
		}
		paths, b.pending, b.dirty = b.pending, nil, false
		b.mu.Unlock()
	}

	b.mu.Lock()
	b.running, b.dirty, b.pending = false, false, nil
	b.mu.Unlock()
}

// rerun runs the tasks of b in order and reports whether all of them succeeded.
func (s *Session) rerun(ctx context.Context, b *binding, paths []string) bool {
	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return false
	}
	defer func() { <-s.slot }()

	s.logger.Info(fmt.Sprintf("%s changed, running %s", describe(paths), strings.Join(b.tasks, ", ")))

	for _, task := range b.tasks {
		if err := s.invoker.Run(ctx, task, s.cfg.Options); err != nil {
			if ctx.Err() == nil {
				s.logger.Error(err)
			}
			return false
		}
	}
	return true
}

// fingerprints reads the content fingerprints of paths and reports whether any differs
// from the fingerprint recorded at the binding's last successful re-run.
func (s *Session) fingerprints(b *binding, paths []string) (map[string]fingerprint, bool) {
	prints := make(map[string]fingerprint, len(paths))
	for _, rel := range paths {
		fp := fingerprint{}
		if data, err := os.ReadFile(filepath.Join(s.cfg.Root, filepath.FromSlash(rel))); err == nil {
			fp = fingerprint{exists: true, sum: xxhash.Sum64(data)}
		}
		prints[rel] = fp
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for rel, fp := range prints {
		if prev, ok := b.prints[rel]; !ok || prev != fp {
			return prints, true
		}
	}
	return prints, false
}

func (b *binding) commit(prints map[string]fingerprint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	maps.Copy(b.prints, prints)
}

func describe(paths []string) string {
	switch len(paths) {
	case 0:
		return "nothing"
	case 1:
		return paths[0]
	default:
		return fmt.Sprintf("%s and %d more", paths[0], len(paths)-1)
	}
}
