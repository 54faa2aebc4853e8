package ports

import "github.com/rocmforge/wheelhouse/internal/core/domain"

// ConfigLoader loads the pipeline configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	Load(path string) (*domain.Config, error)
}
