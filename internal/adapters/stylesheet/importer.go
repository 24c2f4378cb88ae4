// Package stylesheet inlines @import rules into a single stylesheet with esbuild.
package stylesheet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
)

var _ ports.StylesheetProcessor = (*Importer)(nil)

// Importer implements ports.StylesheetProcessor on top of the esbuild CSS bundler.
//
// Imports resolve relative to the importing file first and to the root second,
// with an implied .css extension. Conditional imports are wrapped in @media.
// Remote imports and url() references are left untouched.
type Importer struct{}

// New creates a new Importer.
func New() *Importer {
	return &Importer{}
}

// Process returns the contents of entry with its imports inlined.
func (im *Importer) Process(ctx context.Context, entry, root string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(entry)
	if err == nil {
		_, err = os.Stat(abs)
	}
	if err != nil {
		return nil, errors.Join(
			domain.ErrStylesheetFailed,
			domain.Annotate(errors.Join(domain.ErrReadFailed, err), domain.MetaPath, entry),
		)
	}
	if root != "" {
		if root, err = filepath.Abs(root); err != nil {
			return nil, domain.Annotate(errors.Join(domain.ErrStylesheetFailed, err), domain.MetaPath, entry)
		}
	}

	r := &resolver{root: root}
	dir := filepath.Dir(abs)
	result := api.Build(api.BuildOptions{
		EntryPoints:   []string{abs},
		AbsWorkingDir: dir,
		Outfile:       filepath.Join(dir, "inlined.css"),
		Bundle:        true,
		Write:         false,
		LogLevel:      api.LogLevelSilent,
		Plugins:       []api.Plugin{r.plugin()},
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if missing := r.missingImports(); len(missing) > 0 {
		return nil, errors.Join(append([]error{domain.ErrStylesheetFailed}, missing...)...)
	}
	if len(result.Errors) > 0 {
		return nil, domain.Annotate(
			errors.Join(domain.ErrStylesheetFailed, diagnostics(result.Errors)),
			domain.MetaPath, entry,
		)
	}

	for _, out := range result.OutputFiles {
		if strings.HasSuffix(out.Path, ".css") {
			return out.Contents, nil
		}
	}
	return nil, domain.Annotate(
		errors.Join(domain.ErrStylesheetFailed, errors.New("no stylesheet produced")),
		domain.MetaPath, entry,
	)
}

// resolver locates imported stylesheets. esbuild calls it from several goroutines.
type resolver struct {
	root string

	mu      sync.Mutex
	missing []error
}

func (r *resolver) plugin() api.Plugin {
	return api.Plugin{
		Name: "quill-stylesheet",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `.*`}, r.resolve)
		},
	}
}

func (r *resolver) resolve(args api.OnResolveArgs) (api.OnResolveResult, error) {
	switch {
	case args.Kind == api.ResolveEntryPoint:
		return api.OnResolveResult{}, nil
	case args.Kind == api.ResolveCSSURLToken, isRemote(args.Path):
		return api.OnResolveResult{Path: args.Path, External: true}, nil
	}

	dirs := []string{args.ResolveDir}
	if r.root != "" {
		dirs = append(dirs, r.root)
	}
	for _, dir := range dirs {
		if path, ok := lookup(dir, args.Path); ok {
			return api.OnResolveResult{Path: path}, nil
		}
	}

	err := domain.Annotate(domain.ErrImportNotFound, "import", args.Path, domain.MetaPath, args.Importer)
	r.mu.Lock()
	r.missing = append(r.missing, err)
	r.mu.Unlock()
	return api.OnResolveResult{}, err
}

func (r *resolver) missingImports() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.missing
}

// lookup finds target under dir, trying the name as written and then with a .css extension.
func lookup(dir, target string) (string, bool) {
	path := target
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, filepath.FromSlash(target))
	}
	for _, candidate := range []string{path, path + ".css"} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

func isRemote(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "//") ||
		strings.HasPrefix(lower, "data:")
}

// diagnostics flattens esbuild messages into a single error.
func diagnostics(msgs []api.Message) error {
	errs := make([]error, 0, len(msgs))
	for _, m := range msgs {
		if m.Location == nil {
			errs = append(errs, errors.New(m.Text))
			continue
		}
		errs = append(errs, fmt.Errorf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text))
	}
	return errors.Join(errs...)
}
