package ports

import "go.trai.ch/quill/internal/core/domain"

// ConfigLoader defines the interface for loading the pipeline configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load resolves the configuration for the project containing cwd.
	// An explicit path takes precedence over discovery. When no file is found the
	// defaults rooted at cwd are returned.
	Load(cwd, path string) (*domain.Config, error)
}
