package ports

import (
	"context"

	"go.trai.ch/quill/internal/core/domain"
)

// Bundler produces browser script bundles.
//
//go:generate mockgen -source=bundler.go -destination=mocks/mock_bundler.go -package=mocks
type Bundler interface {
	// Bundle resolves the entry script and its module graph into a single script.
	Bundle(ctx context.Context, req domain.BundleRequest) ([]byte, error)
	// Minify compacts an already bundled script.
	Minify(ctx context.Context, src []byte) ([]byte, error)
}
