// Package config provides the configuration loader for the wheel pipeline.
package config

import (
	"os"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"github.com/rocmforge/wheelhouse/internal/core/domain"
)

// DefaultFilename is the pipeline configuration file looked up in the
// working directory when no explicit path is given.
const DefaultFilename = "wheelhouse.yaml"

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct{}

// wheelhouseFile mirrors the YAML structure of wheelhouse.yaml.
type wheelhouseFile struct {
	Bucket    string           `yaml:"bucket"`
	Namespace string           `yaml:"namespace"`
	Variant   string           `yaml:"variant"`
	BaseURL   string           `yaml:"baseURL"`
	Packages  []string         `yaml:"packages"`
	Build     domain.BuildArgs `yaml:"build"`
}

// Load reads the configuration from the given path.
func (l *FileConfigLoader) Load(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	var file wheelhouseFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}

	cfg := &domain.Config{
		Bucket:    file.Bucket,
		Namespace: file.Namespace,
		Variant:   file.Variant,
		BaseURL:   file.BaseURL,
		Packages:  file.Packages,
		BuildArgs: file.Build,
	}

	if err := validate(cfg); err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return cfg, nil
}

func validate(cfg *domain.Config) error {
	switch {
	case cfg.Bucket == "":
		return domain.Detail(domain.ErrConfigInvalid, "missing_field", "bucket")
	case cfg.Namespace == "":
		return domain.Detail(domain.ErrConfigInvalid, "missing_field", "namespace")
	case cfg.Variant == "":
		return domain.Detail(domain.ErrConfigInvalid, "missing_field", "variant")
	}
	return nil
}
