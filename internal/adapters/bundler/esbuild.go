// Package bundler bundles and compacts scripts with esbuild.
package bundler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
)

var _ ports.Bundler = (*Bundler)(nil)

// Bundler implements ports.Bundler in process.
type Bundler struct{}

// New creates a new Bundler.
func New() *Bundler {
	return &Bundler{}
}

// Bundle resolves the module graph of req.Entry into a single browser script.
func (b *Bundler) Bundle(ctx context.Context, req domain.BundleRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := req.Root
	if root == "" {
		root = filepath.Dir(req.Entry)
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, domain.Annotate(errors.Join(domain.ErrBundleFailed, err), domain.MetaPath, req.Entry)
	}

	opts := api.BuildOptions{
		EntryPoints:   []string{req.Entry},
		AbsWorkingDir: root,
		Outfile:       filepath.Join(root, "bundle.js"),
		Bundle:        true,
		Write:         false,
		Format:        api.FormatIIFE,
		Platform:      api.PlatformBrowser,
		External:      req.External,
		LogLevel:      api.LogLevelSilent,
	}
	if req.SourceMap {
		opts.Sourcemap = api.SourceMapInline
	}

	result := api.Build(opts)
	if len(result.Errors) > 0 {
		return nil, domain.Annotate(
			errors.Join(domain.ErrBundleFailed, messagesError(result.Errors)),
			domain.MetaPath, req.Entry,
		)
	}

	for _, out := range result.OutputFiles {
		if strings.HasSuffix(out.Path, ".js") {
			return out.Contents, nil
		}
	}
	return nil, domain.Annotate(
		errors.Join(domain.ErrBundleFailed, errors.New("no script produced")),
		domain.MetaPath, req.Entry,
	)
}

// Minify compacts whitespace, identifiers and syntax of code.
func (b *Bundler) Minify(ctx context.Context, code []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := api.Transform(string(code), api.TransformOptions{
		Loader:            api.LoaderJS,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		LogLevel:          api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return nil, errors.Join(domain.ErrMinifyFailed, messagesError(result.Errors))
	}
	return result.Code, nil
}

// messagesError flattens esbuild diagnostics into a single error.
func messagesError(msgs []api.Message) error {
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
