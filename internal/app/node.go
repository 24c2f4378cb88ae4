package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/quill/internal/adapters/bundler"
	"go.trai.ch/quill/internal/adapters/config"
	"go.trai.ch/quill/internal/adapters/fetcher"
	"go.trai.ch/quill/internal/adapters/glob"
	"go.trai.ch/quill/internal/adapters/logger"
	"go.trai.ch/quill/internal/adapters/shell"
	"go.trai.ch/quill/internal/adapters/stylesheet"
	"go.trai.ch/quill/internal/adapters/telemetry"
	"go.trai.ch/quill/internal/adapters/tui"
	"go.trai.ch/quill/internal/adapters/watcher"
	"go.trai.ch/quill/internal/core/ports"
	"go.trai.ch/quill/internal/pipeline"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			telemetry.NodeID,
			tui.NodeID,
			shell.NodeID,
			bundler.NodeID,
			stylesheet.NodeID,
			fetcher.NodeID,
			glob.NodeID,
			watcher.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}
	renderer, err := graft.Dep[ports.Renderer](ctx)
	if err != nil {
		return nil, err
	}

	var deps pipeline.Deps
	if deps.Executor, err = graft.Dep[ports.Executor](ctx); err != nil {
		return nil, err
	}
	if deps.Bundler, err = graft.Dep[ports.Bundler](ctx); err != nil {
		return nil, err
	}
	if deps.Stylesheet, err = graft.Dep[ports.StylesheetProcessor](ctx); err != nil {
		return nil, err
	}
	if deps.Fetcher, err = graft.Dep[ports.Fetcher](ctx); err != nil {
		return nil, err
	}
	if deps.Globber, err = graft.Dep[ports.Globber](ctx); err != nil {
		return nil, err
	}
	if deps.Watchers, err = graft.Dep[ports.WatcherFactory](ctx); err != nil {
		return nil, err
	}
	if deps.Logger, err = graft.Dep[ports.Logger](ctx); err != nil {
		return nil, err
	}

	return New(loader, tracer, renderer, deps), nil
}
