package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rocmforge/wheelhouse/internal/adapters/telemetry"
	"github.com/rocmforge/wheelhouse/internal/app"
	"github.com/rocmforge/wheelhouse/internal/core/domain"
	"github.com/rocmforge/wheelhouse/internal/core/ports/mocks"
)

const torchWheel = "torch-2.9.0a0+git1c57644-cp312-cp312-linux_x86_64.whl"

func releaseConfig() *domain.Config {
	return &domain.Config{
		Bucket:    "wheels-bucket",
		Namespace: "v2",
		Variant:   "rocm-7.0",
		Packages:  []string{"torch"},
	}
}

type fixture struct {
	app    *app.App
	store  *mocks.MockObjectStore
	loader *mocks.MockConfigLoader
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	store := mocks.NewMockObjectStore(ctrl)
	loader := mocks.NewMockConfigLoader(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	return fixture{
		app:    app.New(loader, store, telemetry.NewNoOpTracer(), logger),
		store:  store,
		loader: loader,
	}
}

// releaseDirs lays out install/custom/wheels directories with one custom
// torch wheel and one externally sourced duplicate.
func releaseDirs(t *testing.T) app.ReleaseOptions {
	t.Helper()
	tmpDir := t.TempDir()

	installDir := filepath.Join(tmpDir, "dist")
	customDir := filepath.Join(tmpDir, "custom")
	wheelsDir := filepath.Join(tmpDir, "wheels")
	for _, dir := range []string{installDir, customDir, wheelsDir} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	require.NoError(t, os.WriteFile(filepath.Join(installDir, torchWheel), []byte("custom"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(customDir, torchWheel), []byte("custom"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(wheelsDir, torchWheel), []byte("custom"), 0o600))
	require.NoError(t, os.WriteFile(
		filepath.Join(wheelsDir, "torch-2.8.0-cp312-cp312-linux_x86_64.whl"),
		[]byte("external"), 0o600))

	requirementsPath := filepath.Join(tmpDir, "requirements.txt")
	require.NoError(t, os.WriteFile(requirementsPath, []byte("torch>=2.8\n"), 0o600))

	return app.ReleaseOptions{
		InstallDir:   installDir,
		Requirements: requirementsPath,
		CustomDir:    customDir,
		WheelsDir:    wheelsDir,
		IndexDir:     filepath.Join(tmpDir, "index"),
		Commit:       "abc123",
		Branch:       "main",
	}
}

func TestReleasePipeline(t *testing.T) {
	f := newFixture(t)
	opts := releaseDirs(t)

	f.loader.EXPECT().Load("wheelhouse.yaml").Return(releaseConfig(), nil)
	f.store.EXPECT().
		PutFile(gomock.Any(), "wheels-bucket", gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	require.NoError(t, f.app.Release(context.Background(), "wheelhouse.yaml", opts))

	// pin rewrote the manifest
	rewritten, err := os.ReadFile(opts.Requirements)
	require.NoError(t, err)
	assert.Contains(t, string(rewritten), "torch==2.9.0a0+git1c57644")

	// dedupe removed the external torch copy
	_, err = os.Stat(filepath.Join(opts.WheelsDir, "torch-2.8.0-cp312-cp312-linux_x86_64.whl"))
	assert.True(t, os.IsNotExist(err))

	// index was generated for the surviving wheel
	page, err := os.ReadFile(filepath.Join(opts.IndexDir, "rocm-7.0", "torch", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "torch-2.9.0a0%2Bgit1c57644")
}

func TestReleaseStopsOnMissingRequirements(t *testing.T) {
	f := newFixture(t)
	opts := releaseDirs(t)
	opts.Requirements = filepath.Join(t.TempDir(), "absent.txt")

	f.loader.EXPECT().Load("wheelhouse.yaml").Return(releaseConfig(), nil)

	err := f.app.Release(context.Background(), "wheelhouse.yaml", opts)
	require.Error(t, err)
	require.ErrorContains(t, err, domain.ErrRequirementsNotFound.Error())
}

func TestReleaseUploadFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	opts := releaseDirs(t)

	f.loader.EXPECT().Load("wheelhouse.yaml").Return(releaseConfig(), nil)
	f.store.EXPECT().
		PutFile(gomock.Any(), "wheels-bucket", gomock.Any(), gomock.Any()).
		Return(os.ErrPermission).
		AnyTimes()

	err := f.app.Release(context.Background(), "wheelhouse.yaml", opts)
	require.Error(t, err)
	require.ErrorContains(t, err, domain.ErrUploadIncomplete.Error())
}

func TestDedupeFallsBackToConfiguredPackages(t *testing.T) {
	f := newFixture(t)
	opts := releaseDirs(t)

	f.loader.EXPECT().Load("wheelhouse.yaml").Return(releaseConfig(), nil)

	report, err := f.app.Dedupe("wheelhouse.yaml", app.DedupeOptions{
		CustomDir: opts.CustomDir,
		AllDir:    opts.WheelsDir,
	})
	require.NoError(t, err)
	assert.Len(t, report.Deleted, 1)
	assert.Contains(t, report.Kept, "torch")
}

func TestCacheKeyFailsOnBadConfig(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load("broken.yaml").Return(nil, domain.ErrConfigInvalid)

	_, err := f.app.CacheKey("broken.yaml", "Dockerfile")
	require.Error(t, err)
	require.ErrorContains(t, err, "failed to load configuration")
}
