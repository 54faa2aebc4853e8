package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rocmforge/wheelhouse/internal/adapters/config"
	"github.com/rocmforge/wheelhouse/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
bucket: wheels-bucket
namespace: rocm
variant: rocm-7.0
baseURL: https://wheels-bucket.s3.amazonaws.com/rocm
packages: [torch, flash-attn]
build:
  python: "3.12"
  architectures: [gfx942, gfx1100]
  pins:
    torch: 2.9.0
`)

	loader := &config.FileConfigLoader{}
	cfg, err := loader.Load(path)
	require.NoError(t, err)
	require.Equal(t, "wheels-bucket", cfg.Bucket)
	require.Equal(t, "rocm", cfg.Namespace)
	require.Equal(t, "rocm-7.0", cfg.Variant)
	require.Equal(t, []string{"torch", "flash-attn"}, cfg.Packages)
	require.Equal(t, "3.12", cfg.BuildArgs.PythonVersion)
	require.Equal(t, map[string]string{"torch": "2.9.0"}, cfg.BuildArgs.Pins)
}

func TestLoad_MissingFile(t *testing.T) {
	loader := &config.FileConfigLoader{}
	_, err := loader.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "no bucket", content: "namespace: rocm\nvariant: rocm-7.0\n"},
		{name: "no namespace", content: "bucket: b\nvariant: rocm-7.0\n"},
		{name: "no variant", content: "bucket: b\nnamespace: rocm\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &config.FileConfigLoader{}
			_, err := loader.Load(writeConfig(t, tt.content))
			require.Error(t, err)
			require.True(t, errors.Is(err, domain.ErrConfigInvalid))
		})
	}
}

func TestLoad_Unparseable(t *testing.T) {
	loader := &config.FileConfigLoader{}
	_, err := loader.Load(writeConfig(t, "bucket: [unterminated"))
	require.Error(t, err)
	require.ErrorContains(t, err, domain.ErrConfigParseFailed.Error())
}
