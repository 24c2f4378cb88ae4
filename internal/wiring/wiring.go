// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/quill/internal/adapters/bundler"
	_ "go.trai.ch/quill/internal/adapters/config"
	_ "go.trai.ch/quill/internal/adapters/fetcher"
	_ "go.trai.ch/quill/internal/adapters/glob"
	_ "go.trai.ch/quill/internal/adapters/logger"
	_ "go.trai.ch/quill/internal/adapters/shell"
	_ "go.trai.ch/quill/internal/adapters/stylesheet"
	_ "go.trai.ch/quill/internal/adapters/telemetry"
	_ "go.trai.ch/quill/internal/adapters/tui"
	_ "go.trai.ch/quill/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/quill/internal/app"
)
