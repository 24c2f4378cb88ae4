package ports

import "context"

// StylesheetProcessor inlines the imports of a stylesheet.
//
//go:generate mockgen -source=stylesheet.go -destination=mocks/mock_stylesheet.go -package=mocks
type StylesheetProcessor interface {
	// Process reads entry and returns it with every local @import inlined.
	// Imports are resolved relative to the importing file first, then against root.
	Process(ctx context.Context, entry, root string) ([]byte, error)
}
